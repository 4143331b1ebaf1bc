// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/blockchain/genesis"
	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
	"github.com/ardanlabs/powrace/foundation/nameservice"
)

// Set of error variables for transaction submission.
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger and races.
type EventHandler func(v string, args ...any)

// RaceHandler defines a function that receives race events.
type RaceHandler func(ev worker.Event)

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis     genesis.Genesis
	NonceStride uint64
	EvHandler   EventHandler
	RaceHandler RaceHandler
}

// State manages the blockchain database and the mining races run
// against it.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	evHandler EventHandler
	names     *nameservice.NameService
	db        *database.Database

	Worker *worker.Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Seed the ledger with the starting balances for the roster.
	db, err := database.New(cfg.Genesis, ev)
	if err != nil {
		return nil, err
	}

	w, err := worker.New(worker.Config{
		Ledger:      db,
		Roster:      cfg.Genesis.Names(),
		NonceStride: cfg.NonceStride,
		EvHandler:   ev,
		RaceHandler: cfg.RaceHandler,
	})
	if err != nil {
		return nil, err
	}

	state := State{
		genesis:   cfg.Genesis,
		evHandler: ev,
		names:     nameservice.New(cfg.Genesis.Roster),
		db:        db,
		Worker:    w,
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop any race in progress.
	s.Worker.Shutdown()

	return nil
}

// Reset aborts any race in progress and puts the ledger back to the
// genesis state.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Worker.CancelRace()

	return s.db.Reset()
}
