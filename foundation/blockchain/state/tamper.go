package state

import (
	"github.com/shopspring/decimal"
)

// Tamper changes the amount of a committed transaction without fixing the
// block. The chain validator reports the damage.
func (s *State) Tamper(blockIndex int, txIndex int, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	return s.db.Tamper(blockIndex, txIndex, amount)
}

// TamperTimestamp changes the timestamp of a committed block without
// fixing its hash.
func (s *State) TamperTimestamp(blockIndex int, timestamp int64) (int64, error) {
	return s.db.TamperTimestamp(blockIndex, timestamp)
}
