package state

import (
	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
)

// StartRace starts a mining race over the pending transactions with
// minerCount miners drawn from the roster.
func (s *State) StartRace(minerCount int) (*worker.Race, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Worker.StartRace(minerCount)
}

// CancelRace aborts the race in progress. It reports whether a race was
// aborted.
func (s *State) CancelRace() bool {
	return s.Worker.CancelRace()
}

// SetDifficulty changes the difficulty for blocks drafted from now on and
// returns the applied value. A race in progress keeps its difficulty.
func (s *State) SetDifficulty(difficulty int) int {
	return s.db.SetDifficulty(difficulty)
}
