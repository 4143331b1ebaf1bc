package state

import (
	"fmt"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/shopspring/decimal"
)

// SubmitTransaction accepts a transfer between two roster members for
// inclusion in the next block. The sender must be able to cover the amount
// from its committed balance less what it is already sending.
func (s *State) SubmitTransaction(sender string, receiver string, amount decimal.Decimal) (database.Tx, error) {
	if !amount.IsPositive() {
		return database.Tx{}, ErrInvalidAmount
	}

	from, exists := s.names.Lookup(sender)
	if !exists {
		return database.Tx{}, fmt.Errorf("unknown sender %q: %w", sender, ErrInvalidTransaction)
	}

	to, exists := s.names.Lookup(receiver)
	if !exists {
		return database.Tx{}, fmt.Errorf("unknown receiver %q: %w", receiver, ErrInvalidTransaction)
	}

	if from.Name == to.Name {
		return database.Tx{}, fmt.Errorf("sender and receiver are both %s: %w", from.Name, ErrInvalidTransaction)
	}

	// The check and the queue must happen together or two submissions
	// could spend the same balance.
	s.mu.Lock()
	defer s.mu.Unlock()

	available := s.QueryAvailableBalance(from.Name)
	if amount.GreaterThan(available) {
		return database.Tx{}, fmt.Errorf("%s has %s available, needs %s: %w", from.Name, available, amount, ErrInsufficientFunds)
	}

	tx := database.NewTx(from.Name, to.Name, amount)
	s.db.QueueTransaction(tx)

	return tx, nil
}
