package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
	"github.com/ardanlabs/powrace/foundation/blockchain/genesis"
	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
	"github.com/shopspring/decimal"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// ledger drafts blocks at a fixed difficulty and counts commits.
type ledger struct {
	difficulty int

	mu      sync.Mutex
	commits []database.Block
}

func (l *ledger) DraftBlockFor(miner string) (database.Block, error) {
	trans := []database.Tx{
		database.NewTx("Alice", "Bob", decimal.NewFromInt(10)),
		database.NewTx(database.Network, miner, decimal.NewFromInt(50)),
	}
	return database.NewDraft(1, trans, digest.ZeroHash, l.difficulty)
}

func (l *ledger) CommitBlock(block database.Block) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.commits = append(l.commits, block)
}

func (l *ledger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.commits)
}

var roster = []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank"}

// =============================================================================

func TestSearch(t *testing.T) {
	t.Log("Given the need to find a nonce for a header.")
	{
		block, err := database.NewDraft(1, []database.Tx{database.NewTx("Alice", "Bob", decimal.NewFromInt(5))}, digest.ZeroHash, 3)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to draft a block: %v", failed, err)
		}

		var reports int
		cfg := worker.SearchConfig{
			Header:      block.MiningHeader(),
			Difficulty:  3,
			StartNonce:  1_000,
			ReportEvery: 100,
			Progress:    func(attempts, nonce uint64) { reports++ },
		}

		sol, err := worker.Search(context.Background(), cfg)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to find a solution: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to find a solution.", success)

		if sol.Nonce <= cfg.StartNonce {
			t.Fatalf("\t%s\tShould search after the start nonce: got %d", failed, sol.Nonce)
		}
		t.Logf("\t%s\tShould search after the start nonce.", success)

		if sol.Hash != block.MiningHeader().Hash(sol.Nonce) {
			t.Fatalf("\t%s\tShould return the hash of the header and nonce.", failed)
		}
		t.Logf("\t%s\tShould return the hash of the header and nonce.", success)

		if !digest.MeetsDifficulty(sol.Hash, 3) {
			t.Fatalf("\t%s\tShould return a hash that meets the difficulty: %s", failed, sol.Hash)
		}
		t.Logf("\t%s\tShould return a hash that meets the difficulty.", success)

		if exp := int(sol.Attempts / 100); reports != exp && reports != exp-1 {
			t.Fatalf("\t%s\tShould report progress every 100 attempts: got %d, exp %d", failed, reports, exp)
		}
		t.Logf("\t%s\tShould report progress every 100 attempts.", success)
	}
}

func TestSearchCancel(t *testing.T) {
	t.Log("Given the need to stop a search that can't be solved.")
	{
		block, err := database.NewDraft(1, []database.Tx{database.NewTx("Alice", "Bob", decimal.NewFromInt(5))}, digest.ZeroHash, 40)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to draft a block: %v", failed, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = worker.Search(ctx, worker.SearchConfig{Header: block.MiningHeader(), Difficulty: 40})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("\t%s\tShould return the context error: %v", failed, err)
		}
		t.Logf("\t%s\tShould return the context error.", success)
	}
}

// =============================================================================

func TestRaceCommitsOnce(t *testing.T) {
	t.Log("Given the need to run a race with several miners.")
	{
		for _, k := range []int{1, 3, 6, 10} {
			t.Logf("\tWhen racing with %d miners.", k)
			{
				l := ledger{difficulty: 2}

				var mu sync.Mutex
				var events []worker.Event
				w, err := worker.New(worker.Config{
					Ledger: &l,
					Roster: roster,
					RaceHandler: func(ev worker.Event) {
						mu.Lock()
						events = append(events, ev)
						mu.Unlock()
					},
				})
				if err != nil {
					t.Fatalf("\t%s\tShould be able to construct a worker: %v", failed, err)
				}

				race, err := w.StartRace(k)
				if err != nil {
					t.Fatalf("\t%s\tShould be able to start a race: %v", failed, err)
				}

				exp := max(1, min(k, len(roster)))
				if len(race.Miners) != exp {
					t.Fatalf("\t%s\tShould select %d miners: got %d", failed, exp, len(race.Miners))
				}
				t.Logf("\t%s\tShould select %d miners.", success, exp)

				seen := make(map[string]bool)
				for _, m := range race.Miners {
					if seen[m] {
						t.Fatalf("\t%s\tShould select distinct miners: %v", failed, race.Miners)
					}
					seen[m] = true
				}
				t.Logf("\t%s\tShould select distinct miners.", success)

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				res, err := race.Wait(ctx)
				cancel()
				if err != nil {
					t.Fatalf("\t%s\tShould be able to wait for a winner: %v", failed, err)
				}
				t.Logf("\t%s\tShould be able to wait for a winner.", success)

				if n := l.count(); n != 1 {
					t.Fatalf("\t%s\tShould commit exactly one block: got %d", failed, n)
				}
				t.Logf("\t%s\tShould commit exactly one block.", success)

				block := l.commits[0]
				if block.MinedBy != res.Winner || !seen[res.Winner] {
					t.Fatalf("\t%s\tShould commit the block of a selected winner: got %s, exp %s", failed, block.MinedBy, res.Winner)
				}
				t.Logf("\t%s\tShould commit the block of a selected winner.", success)

				last := block.Transactions[len(block.Transactions)-1]
				if last.Receiver != res.Winner || !last.IsReward() {
					t.Fatalf("\t%s\tShould pay the reward to the winner: got %s", failed, last.Receiver)
				}
				t.Logf("\t%s\tShould pay the reward to the winner.", success)

				if block.CalculateHash() != block.Hash || !digest.MeetsDifficulty(block.Hash, 2) {
					t.Fatalf("\t%s\tShould commit a solved block: %s", failed, block.Hash)
				}
				t.Logf("\t%s\tShould commit a solved block.", success)

				if w.State() != worker.StateCommitted {
					t.Fatalf("\t%s\tShould end in the committed state: got %s", failed, w.State())
				}
				t.Logf("\t%s\tShould end in the committed state.", success)

				mu.Lock()
				first, final := events[0], events[len(events)-1]
				mu.Unlock()
				if first.Type != worker.EventStarted || final.Type != worker.EventSolved || final.MinerID != res.Winner {
					t.Fatalf("\t%s\tShould emit started first and solved last: got %s, %s", failed, first.Type, final.Type)
				}
				t.Logf("\t%s\tShould emit started first and solved last.", success)

				if w.CancelRace() {
					t.Fatalf("\t%s\tShould not be able to cancel a finished race.", failed)
				}
				t.Logf("\t%s\tShould not be able to cancel a finished race.", success)
			}
		}
	}
}

func TestRaceInProgress(t *testing.T) {
	t.Log("Given the need to run one race at a time.")
	{
		l := ledger{difficulty: 40}

		w, err := worker.New(worker.Config{Ledger: &l, Roster: roster})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a worker: %v", failed, err)
		}

		race, err := w.StartRace(3)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to start a race: %v", failed, err)
		}

		if _, err := w.StartRace(2); !errors.Is(err, worker.ErrRaceAlreadyInProgress) {
			t.Fatalf("\t%s\tShould reject a second race: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a second race.", success)

		st := w.Status()
		if st.State != worker.StateRacing || st.RaceID != race.ID || len(st.Miners) != 3 {
			t.Fatalf("\t%s\tShould report the race in the status: %+v", failed, st)
		}
		t.Logf("\t%s\tShould report the race in the status.", success)

		if !w.CancelRace() {
			t.Fatalf("\t%s\tShould be able to cancel the race.", failed)
		}
		t.Logf("\t%s\tShould be able to cancel the race.", success)

		if _, err := race.Wait(context.Background()); !errors.Is(err, worker.ErrRaceAborted) {
			t.Fatalf("\t%s\tShould report the race as aborted: %v", failed, err)
		}
		t.Logf("\t%s\tShould report the race as aborted.", success)

		if n := l.count(); n != 0 {
			t.Fatalf("\t%s\tShould not commit after an abort: got %d", failed, n)
		}
		t.Logf("\t%s\tShould not commit after an abort.", success)

		if w.State() != worker.StateAborted {
			t.Fatalf("\t%s\tShould end in the aborted state: got %s", failed, w.State())
		}
		t.Logf("\t%s\tShould end in the aborted state.", success)

		l.mu.Lock()
		l.difficulty = 1
		l.mu.Unlock()

		race, err = w.StartRace(2)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to start a race after an abort: %v", failed, err)
		}
		if _, err := race.Wait(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to finish a race after an abort: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to race again after an abort.", success)
	}
}

func TestRaceLedger(t *testing.T) {
	t.Log("Given the need to race against the ledger.")
	{
		gen := genesis.Default()
		gen.Difficulty = 2

		db, err := database.New(gen, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the database: %v", failed, err)
		}

		w, err := worker.New(worker.Config{Ledger: db, Roster: gen.Names()})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a worker: %v", failed, err)
		}

		if _, err := w.StartRace(3); !errors.Is(err, database.ErrEmptyPendingPool) {
			t.Fatalf("\t%s\tShould not race with an empty pending pool: %v", failed, err)
		}
		t.Logf("\t%s\tShould not race with an empty pending pool.", success)

		db.QueueTransaction(database.NewTx("Alice", "Bob", decimal.NewFromInt(20)))
		db.QueueTransaction(database.NewTx("Bob", "Eve", decimal.NewFromInt(5)))

		race, err := w.StartRace(4)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to start a race: %v", failed, err)
		}

		res, err := race.Wait(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to wait for a winner: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to wait for a winner.", success)

		if db.Length() != 2 || db.PendingCount() != 0 {
			t.Fatalf("\t%s\tShould commit the block and clear the pool: length %d, pending %d", failed, db.Length(), db.PendingCount())
		}
		t.Logf("\t%s\tShould commit the block and clear the pool.", success)

		if tip := db.LatestBlock(); tip.Hash != res.Hash || tip.MinedBy != res.Winner {
			t.Fatalf("\t%s\tShould commit the winning block: got %s", failed, tip.Hash)
		}
		t.Logf("\t%s\tShould commit the winning block.", success)

		if v := db.Validate(); !v.Valid {
			t.Fatalf("\t%s\tShould leave a valid chain: %+v", failed, v.Errors)
		}
		t.Logf("\t%s\tShould leave a valid chain.", success)
	}
}
