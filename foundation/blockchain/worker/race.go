package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
)

// RaceState represents where a race is in its lifecycle.
type RaceState int

// Set of race states. A race moves from Racing to either Committed or
// Aborted and never leaves those states.
const (
	StateIdle RaceState = iota
	StateRacing
	StateCommitted
	StateAborted
)

// String implements the fmt.Stringer interface.
func (s RaceState) String() string {
	switch s {
	case StateRacing:
		return "racing"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	}
	return "idle"
}

// MarshalText implements the TextMarshaler interface so states are written
// by name.
func (s RaceState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements the TextUnmarshaler interface.
func (s *RaceState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StateIdle
	case "racing":
		*s = StateRacing
	case "committed":
		*s = StateCommitted
	case "aborted":
		*s = StateAborted
	default:
		return fmt.Errorf("unknown race state %q", text)
	}
	return nil
}

// =============================================================================

// Set of event types sent while a race runs.
const (
	EventStarted  = "started"
	EventProgress = "progress"
	EventSolved   = "solved"
	EventAborted  = "aborted"
)

// Event represents something that happened during a race. Progress events
// carry Attempts and CurrentNonce, the solved event carries the winner's
// solution and the elapsed time.
type Event struct {
	Type         string        `json:"type"`
	RaceID       string        `json:"race_id"`
	MinerID      string        `json:"miner_id,omitempty"`
	Miners       []string      `json:"miners,omitempty"`
	Attempts     uint64        `json:"attempts,omitempty"`
	CurrentNonce uint64        `json:"current_nonce,omitempty"`
	Nonce        uint64        `json:"nonce,omitempty"`
	Hash         string        `json:"hash,omitempty"`
	BlockIndex   uint64        `json:"block_index,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// =============================================================================

// Result represents the outcome of a committed race.
type Result struct {
	Winner   string
	Nonce    uint64
	Hash     string
	Attempts uint64
	Elapsed  time.Duration
	Block    database.Block
}

// Race represents a single mining race. It is handed back from StartRace
// so the caller can wait for the outcome.
type Race struct {
	ID      string
	Miners  []string
	Started time.Time

	done   chan struct{}
	state  RaceState
	result Result
}

// Done returns a channel that is closed when the race has committed a
// block or been aborted and every search has stopped.
func (r *Race) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the race is over or the context is cancelled. An
// aborted race returns ErrRaceAborted.
func (r *Race) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	if r.state == StateAborted {
		return Result{}, ErrRaceAborted
	}

	return r.result, nil
}
