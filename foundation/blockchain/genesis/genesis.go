// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Difficulty bounds for the number of leading hex zeros a block hash needs.
const (
	MinDifficulty = 1
	MaxDifficulty = 6
)

// Member represents a participant of the network roster.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date            time.Time       `json:"date"`
	Difficulty      int             `json:"difficulty"`       // How difficult it needs to be to solve the work problem.
	MiningReward    decimal.Decimal `json:"mining_reward"`    // Reward for mining a block.
	StartingBalance decimal.Decimal `json:"starting_balance"` // Issued to every roster member in the genesis block.
	Roster          []Member        `json:"roster"`
}

// Default returns the genesis information for the standard six member
// network.
func Default() Genesis {
	return Genesis{
		Date:            time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:      4,
		MiningReward:    decimal.NewFromInt(50),
		StartingBalance: decimal.NewFromInt(50),
		Roster: []Member{
			{ID: "alice", Name: "Alice", Color: "#6366f1"},
			{ID: "bob", Name: "Bob", Color: "#10b981"},
			{ID: "charlie", Name: "Charlie", Color: "#f59e0b"},
			{ID: "david", Name: "David", Color: "#ef4444"},
			{ID: "eve", Name: "Eve", Color: "#8b5cf6"},
			{ID: "frank", Name: "Frank", Color: "#06b6d4"},
		},
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("genesis file %s: %w", path, err)
	}

	return genesis, nil
}

// Validate checks the genesis information can seed a ledger.
func (g Genesis) Validate() error {
	if len(g.Roster) == 0 {
		return errors.New("roster is empty")
	}

	names := make(map[string]bool, len(g.Roster))
	for _, m := range g.Roster {
		if m.Name == "" {
			return errors.New("roster member has no name")
		}
		if names[m.Name] {
			return fmt.Errorf("roster member %q is listed twice", m.Name)
		}
		names[m.Name] = true
	}

	if g.Difficulty < MinDifficulty || g.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d is outside %d-%d", g.Difficulty, MinDifficulty, MaxDifficulty)
	}

	if g.MiningReward.IsNegative() || g.StartingBalance.IsNegative() {
		return errors.New("mining reward and starting balance can't be negative")
	}

	return nil
}

// Names returns the names of the roster members in roster order.
func (g Genesis) Names() []string {
	names := make([]string, len(g.Roster))
	for i, m := range g.Roster {
		names[i] = m.Name
	}

	return names
}

// ClampDifficulty forces the difficulty into the supported range.
func ClampDifficulty(difficulty int) int {
	switch {
	case difficulty < MinDifficulty:
		return MinDifficulty
	case difficulty > MaxDifficulty:
		return MaxDifficulty
	}

	return difficulty
}
