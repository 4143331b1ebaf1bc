// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	v1 "github.com/ardanlabs/powrace/business/web/v1"
	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/blockchain/genesis"
	"github.com/ardanlabs/powrace/foundation/blockchain/state"
	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
	"github.com/ardanlabs/powrace/foundation/events"
	"github.com/ardanlabs/powrace/foundation/nameservice"
	"github.com/ardanlabs/powrace/foundation/validate"
	"github.com/ardanlabs/powrace/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger and race endpoints.
type Handlers struct {
	Log        *zap.SugaredLogger
	State      *state.State
	NS         *nameservice.NameService
	WS         websocket.Upgrader
	Evts       *events.Events
	MinerCount int
}

// Events handles a web socket to provide race events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Balances returns the committed and available balances for every known
// identity, or for the one specified.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var names []string
	switch account {
	case "":
		for name := range h.State.RetrieveBalances() {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return h.rank(names[i], names[j]) })

	default:
		member, exists := h.NS.Lookup(account)
		if !exists {
			return v1.NewRequestError(fmt.Errorf("unknown account %q", account), http.StatusNotFound)
		}
		names = []string{member.Name}
	}

	bals := make([]balance, len(names))
	for i, name := range names {
		member, _ := h.NS.Lookup(name)
		bals[i] = balance{
			Account:   name,
			Color:     member.Color,
			Balance:   h.State.QueryBalance(name),
			Available: h.State.QueryAvailableBalance(name),
		}
	}

	resp := balances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash,
		Uncommitted: len(h.State.RetrieveMempool()),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the chain, or the block at the specified index.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if idx := web.Param(r, "index"); idx != "" {
		index, err := strconv.Atoi(idx)
		if err != nil {
			return v1.NewRequestError(fmt.Errorf("invalid block index %q", idx), http.StatusBadRequest)
		}

		blk, err := h.State.QueryBlock(index)
		if err != nil {
			return v1.NewRequestError(err, http.StatusNotFound)
		}

		return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
	}

	chain := h.State.RetrieveChain()

	blocks := make([]block, len(chain))
	for i, blk := range chain {
		blocks[i] = toBlock(blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.State.RetrieveMempool()), http.StatusOK)
}

// SubmitTransaction adds a new transfer to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx NewTx
	if err := decode(r, &ntx); err != nil {
		return err
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "from", ntx.From, "to", ntx.To, "amount", ntx.Amount)

	tran, err := h.State.SubmitTransaction(ntx.From, ntx.To, ntx.Amount)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, toTx(tran), http.StatusCreated)
}

// TxProof returns the merkle proof for a committed transaction.
func (h Handlers) TxProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blockIndex, err := strconv.Atoi(web.Param(r, "block"))
	if err != nil {
		return v1.NewRequestError(errors.New("invalid block index"), http.StatusBadRequest)
	}

	txIndex, err := strconv.Atoi(web.Param(r, "tx"))
	if err != nil {
		return v1.NewRequestError(errors.New("invalid transaction index"), http.StatusBadRequest)
	}

	proof, err := h.State.QueryTxProof(blockIndex, txIndex)
	if err != nil {
		if errors.Is(err, database.ErrInvalidTarget) {
			return v1.NewRequestError(err, http.StatusNotFound)
		}
		return err
	}

	hashes := make([]string, len(proof.Proof))
	for i, p := range proof.Proof {
		hashes[i] = hexutil.Encode(p)
	}

	resp := txProof{
		Block:      proof.BlockIndex,
		TxIndex:    proof.TxIndex,
		Tx:         toTx(proof.Tx),
		MerkleRoot: proof.MerkleRoot,
		Proof:      hashes,
		Order:      proof.Order,
		Verified:   proof.Verified,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// Difficulty returns the difficulty new blocks are drafted with.
func (h Handlers) Difficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := difficulty{
		Difficulty: h.State.RetrieveDifficulty(),
		Min:        genesis.MinDifficulty,
		Max:        genesis.MaxDifficulty,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SetDifficulty changes the difficulty for blocks drafted from now on. The
// value is clamped to the supported range.
func (h Handlers) SetDifficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var sd SetDifficulty
	if err := decode(r, &sd); err != nil {
		return err
	}

	resp := difficulty{
		Difficulty: h.State.SetDifficulty(sd.Difficulty),
		Min:        genesis.MinDifficulty,
		Max:        genesis.MaxDifficulty,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// StartRace starts a mining race over the pending transactions. The race
// runs in the background; follow it with the events socket or race status.
func (h Handlers) StartRace(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var sr StartRace
	if r.ContentLength != 0 {
		if err := decode(r, &sr); err != nil {
			return err
		}
	}

	miners := sr.Miners
	if miners == 0 {
		miners = h.MinerCount
	}

	race, err := h.State.StartRace(miners)
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrRaceAlreadyInProgress), errors.Is(err, database.ErrEmptyPendingPool):
			return v1.NewRequestError(err, http.StatusConflict)
		}
		return err
	}

	resp := raceStarted{
		RaceID: race.ID,
		Miners: race.Miners,
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// CancelRace aborts the race in progress.
func (h Handlers) CancelRace(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Aborted bool `json:"aborted"`
	}{
		Aborted: h.State.CancelRace(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RaceStatus returns a snapshot of the current or last race.
func (h Handlers) RaceStatus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveRaceStatus(), http.StatusOK)
}

// =============================================================================

// Validate runs the chain validator and returns every error it finds.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.ValidateChain(), http.StatusOK)
}

// Reset aborts any race and puts the ledger back to the genesis state.
func (h Handlers) Reset(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.Reset(); err != nil {
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "ledger reset to genesis",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// TamperTx changes the amount of a committed transaction.
func (h Handlers) TamperTx(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tt TamperTx
	if err := decode(r, &tt); err != nil {
		return err
	}

	old, amount, err := h.State.Tamper(tt.Block, tt.Tx, tt.Amount)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("tamper tran", "traceid", v.TraceID, "block", tt.Block, "tx", tt.Tx, "old", old, "new", amount)

	resp := struct {
		Block int    `json:"block"`
		Tx    int    `json:"tx"`
		Old   string `json:"old"`
		New   string `json:"new"`
	}{
		Block: tt.Block,
		Tx:    tt.Tx,
		Old:   old.String(),
		New:   amount.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// TamperTimestamp changes the timestamp of a committed block.
func (h Handlers) TamperTimestamp(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tt TamperTimestamp
	if err := decode(r, &tt); err != nil {
		return err
	}

	old, err := h.State.TamperTimestamp(tt.Block, tt.Timestamp)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("tamper timestamp", "traceid", v.TraceID, "change", tt, "old", old)

	resp := struct {
		Block int   `json:"block"`
		Old   int64 `json:"old"`
		New   int64 `json:"new"`
	}{
		Block: tt.Block,
		Old:   old,
		New:   tt.Timestamp,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// rank orders roster members first in roster order, then everyone else
// by name.
func (h Handlers) rank(a, b string) bool {
	pos := func(name string) int {
		for i, m := range h.NS.Members() {
			if m.Name == name {
				return i
			}
		}
		return len(h.NS.Members())
	}

	pa, pb := pos(a), pos(b)
	if pa != pb {
		return pa < pb
	}
	return a < b
}

// decode reads the request body into val. Field errors are passed through
// for the error middleware, anything else is a bad request.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return v1.NewRequestError(err, http.StatusBadRequest)
	}
	return nil
}
