// Package database handles the ledger for the blockchain: the chain of
// committed blocks and the pool of transactions waiting to be mined.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
	"github.com/ardanlabs/powrace/foundation/blockchain/genesis"
	"github.com/ardanlabs/powrace/foundation/blockchain/mempool"
	"github.com/shopspring/decimal"
)

// Set of error variables for ledger operations.
var (
	ErrEmptyPendingPool = errors.New("no pending transactions")
	ErrInvalidTarget    = errors.New("invalid target")
)

// =============================================================================

// Database manages the chain of blocks and the pending transactions. The
// chain only grows through CommitBlock and only changes in place through
// the tamper functions.
type Database struct {
	mu sync.RWMutex

	genesis    genesis.Genesis
	difficulty int
	chain      []Block
	mempool    *mempool.Mempool[Tx]
	evHandler  func(v string, args ...any)
}

// New constructs a new database and seeds the genesis block from the
// genesis information.
func New(gen genesis.Genesis, evHandler func(v string, args ...any)) (*Database, error) {
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	db := Database{
		genesis:    gen,
		difficulty: gen.Difficulty,
		mempool:    mempool.New[Tx](),
		evHandler:  ev,
	}

	if err := db.seed(); err != nil {
		return nil, err
	}

	return &db, nil
}

// seed discards the chain and writes a new genesis block that issues the
// starting balance to every roster member.
func (db *Database) seed() error {
	trans := make([]Tx, len(db.genesis.Roster))
	for i, member := range db.genesis.Roster {
		trans[i] = NewTx(Network, member.Name, db.genesis.StartingBalance)
	}

	block, err := NewDraft(0, trans, digest.ZeroHash, 0)
	if err != nil {
		return fmt.Errorf("genesis block: %w", err)
	}
	block.MinedBy = GenesisMiner

	db.chain = []Block{block}
	db.mempool.Truncate()

	db.evHandler("database: seed: genesis: blk[%s]: members[%d]", block.Hash, len(trans))

	return nil
}

// Reset re-initalizes the database back to the genesis state.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.difficulty = db.genesis.Difficulty
	return db.seed()
}

// Genesis returns the genesis information the database was seeded with.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// MiningReward returns the amount paid to the miner of a block.
func (db *Database) MiningReward() decimal.Decimal {
	return db.genesis.MiningReward
}

// Difficulty returns the difficulty new blocks are drafted with.
func (db *Database) Difficulty() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.difficulty
}

// SetDifficulty changes the difficulty for new blocks. The value is clamped
// to the supported range and the applied value is returned. Blocks already
// in the chain keep the difficulty they were mined with.
func (db *Database) SetDifficulty(difficulty int) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.difficulty = genesis.ClampDifficulty(difficulty)
	db.evHandler("database: SetDifficulty: difficulty[%d]", db.difficulty)

	return db.difficulty
}

// =============================================================================

// QueueTransaction adds the transaction to the pending pool. No accounting
// checks are performed; callers decide what they are willing to queue.
func (db *Database) QueueTransaction(tx Tx) int {
	n := db.mempool.Append(tx)
	db.evHandler("database: QueueTransaction: tx[%s]: pending[%d]", tx, n)

	return n
}

// Pending returns a copy of the pending transactions in arrival order.
func (db *Database) Pending() []Tx {
	return db.mempool.Copy()
}

// PendingCount returns the number of pending transactions.
func (db *Database) PendingCount() int {
	return db.mempool.Count()
}

// DraftBlockFor builds the candidate block a miner will work on: the pending
// transactions followed by the miner's reward, linked to the current tip.
// Drafts for different miners differ only in the reward transaction.
func (db *Database) DraftBlockFor(miner string) (Block, error) {
	pending := db.mempool.Copy()
	if len(pending) == 0 {
		return Block{}, ErrEmptyPendingPool
	}

	db.mu.RLock()
	tip := db.chain[len(db.chain)-1]
	difficulty := db.difficulty
	db.mu.RUnlock()

	reward := NewTx(Network, miner, db.genesis.MiningReward)
	trans := append(pending, reward)

	block, err := NewDraft(tip.Index+1, trans, tip.Hash, difficulty)
	if err != nil {
		return Block{}, err
	}

	db.evHandler("database: DraftBlockFor: miner[%s]: blk[%d]: root[%s]", miner, block.Index, block.MerkleRoot)

	return block, nil
}

// CommitBlock appends the block to the chain and removes its transactions
// from the pending pool. The database does not decide winners; the caller
// must commit a block at most once.
func (db *Database) CommitBlock(block Block) {
	block = block.Clone()

	db.mu.Lock()
	db.chain = append(db.chain, block)
	db.mu.Unlock()

	removed := db.mempool.Delete(block.Transactions)

	db.evHandler("database: CommitBlock: blk[%d]: hash[%s]: miner[%s]: cleared[%d]", block.Index, block.Hash, block.MinedBy, removed)
}

// =============================================================================

// LatestBlock returns the block at the tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1].Clone()
}

// Chain returns a copy of the chain. Changes to the copy are not seen by
// the database.
func (db *Database) Chain() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	chain := make([]Block, len(db.chain))
	for i, block := range db.chain {
		chain[i] = block.Clone()
	}

	return chain
}

// Length returns the number of blocks in the chain including genesis.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// GetBlock returns a copy of the block at the specified index.
func (db *Database) GetBlock(index int) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index < 0 || index >= len(db.chain) {
		return Block{}, fmt.Errorf("block %d of %d: %w", index, len(db.chain), ErrInvalidTarget)
	}

	return db.chain[index].Clone(), nil
}

// Validate runs the chain validator over the current chain.
func (db *Database) Validate() Result {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return Validate(db.chain)
}

// =============================================================================

// Tamper changes the amount of a committed transaction in place without
// touching the block's merkle root or hash. It exists to demonstrate that
// the validator catches the change. The genesis block can't be tampered.
func (db *Database) Tamper(blockIndex int, txIndex int, amount decimal.Decimal) (oldAmount decimal.Decimal, newAmount decimal.Decimal, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if blockIndex < 1 || blockIndex >= len(db.chain) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("block %d: %w", blockIndex, ErrInvalidTarget)
	}

	trans := db.chain[blockIndex].Transactions
	if txIndex < 0 || txIndex >= len(trans) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("block %d tx %d: %w", blockIndex, txIndex, ErrInvalidTarget)
	}

	oldAmount = trans[txIndex].Amount
	trans[txIndex].Amount = amount

	db.evHandler("database: Tamper: blk[%d]: tx[%d]: amount[%s->%s]", blockIndex, txIndex, oldAmount, amount)

	return oldAmount, amount, nil
}

// TamperTimestamp changes the timestamp of a committed block in place
// without recomputing its hash. The genesis block can't be tampered.
func (db *Database) TamperTimestamp(blockIndex int, timestamp int64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if blockIndex < 1 || blockIndex >= len(db.chain) {
		return 0, fmt.Errorf("block %d: %w", blockIndex, ErrInvalidTarget)
	}

	old := db.chain[blockIndex].Timestamp
	db.chain[blockIndex].Timestamp = timestamp

	db.evHandler("database: TamperTimestamp: blk[%d]: timestamp[%d->%d]", blockIndex, old, timestamp)

	return old, nil
}
