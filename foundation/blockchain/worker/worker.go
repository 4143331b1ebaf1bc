// Package worker implements the mining race for the blockchain. A race
// runs one proof of work search per selected miner, each over its own
// draft block, and commits the block of the first miner to find a solution.
package worker

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/google/uuid"
)

// DefaultNonceStride is the distance between the starting nonces of the
// miners in a race so they don't search the same space.
const DefaultNonceStride = 5_000_000

// Set of error variables for race operations.
var (
	ErrRaceAlreadyInProgress = errors.New("mining race already in progress")
	ErrRaceAborted           = errors.New("mining race aborted")
	ErrNoMiners              = errors.New("no miners in roster")
)

// Ledger represents the behavior the worker needs from the blockchain
// database to draft and commit blocks.
type Ledger interface {
	DraftBlockFor(miner string) (database.Block, error)
	CommitBlock(block database.Block)
}

// =============================================================================

// Config represents the configuration required to run races.
type Config struct {
	Ledger      Ledger
	Roster      []string
	NonceStride uint64
	EvHandler   func(v string, args ...any)
	RaceHandler func(ev Event) // Receives race events, called from one goroutine at a time.
}

// MinerStatus represents the last progress known for a miner.
type MinerStatus struct {
	Miner        string `json:"miner"`
	Attempts     uint64 `json:"attempts"`
	CurrentNonce uint64 `json:"current_nonce"`
}

// Status represents a snapshot of the current or most recent race.
type Status struct {
	State   RaceState     `json:"state"`
	RaceID  string        `json:"race_id,omitempty"`
	Miners  []MinerStatus `json:"miners"`
	Winner  string        `json:"winner,omitempty"`
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed"`
}

// Worker manages the mining races for the blockchain. Only one race can
// run at a time.
type Worker struct {
	ledger      Ledger
	roster      []string
	nonceStride uint64
	evHandler   func(v string, args ...any)
	raceHandler func(ev Event)

	mu     sync.Mutex
	state  RaceState
	race   *Race
	cancel context.CancelFunc
	status Status
}

// New constructs a worker for running mining races against the ledger.
func New(cfg Config) (*Worker, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if len(cfg.Roster) == 0 {
		return nil, ErrNoMiners
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	raceEv := func(e Event) {
		if cfg.RaceHandler != nil {
			cfg.RaceHandler(e)
		}
	}

	stride := cfg.NonceStride
	if stride == 0 {
		stride = DefaultNonceStride
	}

	w := Worker{
		ledger:      cfg.Ledger,
		roster:      append([]string(nil), cfg.Roster...),
		nonceStride: stride,
		evHandler:   ev,
		raceHandler: raceEv,
		status:      Status{Miners: []MinerStatus{}},
	}

	return &w, nil
}

// State returns the state of the current or most recent race.
func (w *Worker) State() RaceState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// Status returns a snapshot of the current or most recent race.
func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.status
	st.Miners = append([]MinerStatus(nil), w.status.Miners...)
	if st.State == StateRacing {
		st.Elapsed = time.Since(st.Started)
	}

	return st
}

// =============================================================================

// StartRace selects minerCount distinct miners from the roster at random,
// drafts a block for each of them and starts one search per miner. The
// count is clamped to the size of the roster. StartRace returns once the
// searches are running; use the returned race to wait for the outcome.
func (w *Worker) StartRace(minerCount int) (*Race, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateRacing {
		return nil, ErrRaceAlreadyInProgress
	}

	miners := selectMiners(w.roster, minerCount)

	// Every miner works on its own draft that pays the reward to itself.
	drafts := make([]database.Block, len(miners))
	for i, miner := range miners {
		block, err := w.ledger.DraftBlockFor(miner)
		if err != nil {
			return nil, err
		}
		drafts[i] = block
	}

	ctx, cancel := context.WithCancel(context.Background())

	race := Race{
		ID:      uuid.NewString(),
		Miners:  miners,
		Started: time.Now(),
		done:    make(chan struct{}),
		state:   StateRacing,
	}

	w.state = StateRacing
	w.race = &race
	w.cancel = cancel
	w.status = Status{
		State:   StateRacing,
		RaceID:  race.ID,
		Miners:  make([]MinerStatus, len(miners)),
		Started: race.Started,
	}
	for i, miner := range miners {
		w.status.Miners[i] = MinerStatus{Miner: miner}
	}

	w.evHandler("worker: StartRace: RACE: started: id[%s]: miners%v: blk[%d]: difficulty[%d]", race.ID, miners, drafts[0].Index, drafts[0].Difficulty)

	w.raceHandler(Event{
		Type:   EventStarted,
		RaceID: race.ID,
		Miners: miners,
	})

	// Results are buffered so a search never blocks reporting a solution
	// the collector is no longer interested in.
	results := make(chan solved, len(miners))
	progress := make(chan Event, 64*len(miners))

	var searches sync.WaitGroup
	searches.Add(len(miners))

	for i, miner := range miners {
		cfg := SearchConfig{
			Header:     drafts[i].MiningHeader(),
			Difficulty: drafts[i].Difficulty,
			StartNonce: uint64(i) * w.nonceStride,
			Progress: func(attempts, nonce uint64) {
				ev := Event{
					Type:         EventProgress,
					RaceID:       race.ID,
					MinerID:      miner,
					Attempts:     attempts,
					CurrentNonce: nonce,
					Elapsed:      time.Since(race.Started),
				}

				select {
				case progress <- ev:
				default:
				}
			},
		}

		go func(idx int) {
			defer searches.Done()

			sol, err := Search(ctx, cfg)
			if err != nil {
				return
			}

			results <- solved{idx: idx, Solution: sol}
		}(i)
	}

	go w.collect(ctx, cancel, &race, drafts, results, progress, &searches)

	return &race, nil
}

// CancelRace aborts the race in progress and waits for every search to
// stop. It reports whether a race was aborted. A race that already has a
// winner can't be aborted.
func (w *Worker) CancelRace() bool {
	w.mu.Lock()
	if w.state != StateRacing {
		w.mu.Unlock()
		return false
	}
	race := w.race
	cancel := w.cancel
	w.mu.Unlock()

	w.evHandler("worker: CancelRace: RACE: CANCEL: signaled: id[%s]", race.ID)

	cancel()
	<-race.done

	return race.state == StateAborted
}

// Shutdown aborts any race in progress.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.CancelRace()
}

// =============================================================================

// solved ties a solution back to the draft it was found for.
type solved struct {
	idx int
	Solution
}

// collect is the only goroutine allowed to commit a block for the race.
// The first solution to arrive wins. Solutions that arrive after that, or
// after the race was aborted, are dropped.
func (w *Worker) collect(ctx context.Context, cancel context.CancelFunc, race *Race, drafts []database.Block, results <-chan solved, progress <-chan Event, searches *sync.WaitGroup) {
	defer close(race.done)

	finish := func(state RaceState, winner string) {
		cancel()
		searches.Wait()

		w.mu.Lock()
		defer w.mu.Unlock()

		race.state = state
		w.state = state
		w.status.State = state
		w.status.Winner = winner
		w.status.Elapsed = time.Since(race.Started)
	}

	for {
		select {
		case ev := <-progress:
			w.recordProgress(ev)
			w.raceHandler(ev)

		case sol := <-results:

			// The race was aborted while this solution was in flight.
			if ctx.Err() != nil {
				w.abort(race, finish)
				return
			}

			// Stop everyone else before the block is committed.
			cancel()

			miner := race.Miners[sol.idx]
			block := drafts[sol.idx]
			block.ApplyMinedResult(sol.Nonce, sol.Hash, miner)
			w.ledger.CommitBlock(block)

			elapsed := time.Since(race.Started)
			race.result = Result{
				Winner:   miner,
				Nonce:    sol.Nonce,
				Hash:     sol.Hash,
				Attempts: sol.Attempts,
				Elapsed:  elapsed,
				Block:    block,
			}

			w.evHandler("worker: collect: RACE: SOLVED: id[%s]: miner[%s]: blk[%d]: nonce[%d]: hash[%s]: attempts[%d]: duration[%v]", race.ID, miner, block.Index, sol.Nonce, sol.Hash, sol.Attempts, elapsed)

			w.mu.Lock()
			for i := range w.status.Miners {
				if w.status.Miners[i].Miner == miner {
					w.status.Miners[i].Attempts = sol.Attempts
					w.status.Miners[i].CurrentNonce = sol.Nonce
				}
			}
			w.mu.Unlock()

			finish(StateCommitted, miner)

			w.raceHandler(Event{
				Type:       EventSolved,
				RaceID:     race.ID,
				MinerID:    miner,
				Attempts:   sol.Attempts,
				Nonce:      sol.Nonce,
				Hash:       sol.Hash,
				BlockIndex: block.Index,
				Elapsed:    elapsed,
			})
			return

		case <-ctx.Done():
			w.abort(race, finish)
			return
		}
	}
}

// abort finishes the race without a commit.
func (w *Worker) abort(race *Race, finish func(state RaceState, winner string)) {
	finish(StateAborted, "")

	w.evHandler("worker: collect: RACE: CANCEL: complete: id[%s]", race.ID)

	w.raceHandler(Event{
		Type:    EventAborted,
		RaceID:  race.ID,
		Elapsed: time.Since(race.Started),
	})
}

// recordProgress keeps the latest progress per miner for Status.
func (w *Worker) recordProgress(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status.RaceID != ev.RaceID {
		return
	}

	for i := range w.status.Miners {
		if w.status.Miners[i].Miner == ev.MinerID {
			w.status.Miners[i].Attempts = ev.Attempts
			w.status.Miners[i].CurrentNonce = ev.CurrentNonce
			return
		}
	}
}

// selectMiners returns a uniform random sample of count miners from the
// roster without replacement. The count is clamped to [1, len(roster)].
func selectMiners(roster []string, count int) []string {
	count = max(1, min(count, len(roster)))

	miners := make([]string, count)
	for i, idx := range rand.Perm(len(roster))[:count] {
		miners[i] = roster[idx]
	}

	return miners
}
