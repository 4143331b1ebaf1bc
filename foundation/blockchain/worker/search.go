package worker

import (
	"context"
	"encoding/hex"
	"math/rand/v2"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
)

// Bounds for the number of attempts between progress reports. Every search
// picks its own interval so concurrent miners don't report in lockstep.
const (
	minReportInterval = 3_000
	maxReportInterval = 8_000
)

// cancelCheckInterval is the number of attempts between checks of the
// context for cancellation.
const cancelCheckInterval = 1 << 10

// SearchConfig represents the input for a single proof of work search.
type SearchConfig struct {
	Header      database.MiningHeader
	Difficulty  int
	StartNonce  uint64
	ReportEvery uint64                       // Attempts between progress reports, random when zero.
	Progress    func(attempts, nonce uint64) // Must not block.
}

// Solution represents a nonce that solves the header at the difficulty.
type Solution struct {
	Nonce    uint64
	Hash     string
	Attempts uint64
}

// Search looks for a nonce that produces a hash with the number of leading
// zeros the difficulty asks for. It increments the nonce starting after
// StartNonce until it finds a solution or the context is cancelled. The
// search shares no state with anything else.
func Search(ctx context.Context, cfg SearchConfig) (Solution, error) {
	reportEvery := cfg.ReportEvery
	if reportEvery == 0 {
		reportEvery = minReportInterval + rand.Uint64N(maxReportInterval-minReportInterval)
	}

	prefix := cfg.Header.Prefix()
	buf := make([]byte, len(prefix), len(prefix)+24)
	copy(buf, prefix)

	nonce := cfg.StartNonce
	var attempts uint64

	for {
		nonce++
		attempts++

		// Did we get cancelled because someone else won or the race
		// was aborted.
		if attempts%cancelCheckInterval == 0 && ctx.Err() != nil {
			return Solution{}, ctx.Err()
		}

		sum := digest.Sum(database.AppendNonce(buf[:len(prefix)], nonce))
		if digest.HasLeadingZeros(sum, cfg.Difficulty) {

			// Check one more time we were not cancelled before
			// reporting a solution.
			if ctx.Err() != nil {
				return Solution{}, ctx.Err()
			}

			sol := Solution{
				Nonce:    nonce,
				Hash:     hex.EncodeToString(sum[:]),
				Attempts: attempts,
			}

			return sol, nil
		}

		if cfg.Progress != nil && attempts%reportEvery == 0 {
			cfg.Progress(attempts, nonce)
		}
	}
}
