package public

import (
	"fmt"
	"time"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/validate"
	"github.com/shopspring/decimal"
)

type balance struct {
	Account   string          `json:"account"`
	Color     string          `json:"color,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

type tx struct {
	Sender    string          `json:"sender"`
	Receiver  string          `json:"receiver"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp int64           `json:"timestamp"`
	Reward    bool            `json:"reward"`
}

func toTx(tran database.Tx) tx {
	return tx{
		Sender:    tran.Sender,
		Receiver:  tran.Receiver,
		Amount:    tran.Amount,
		Timestamp: tran.CreatedAt,
		Reward:    tran.IsReward(),
	}
}

func toTxs(trans []database.Tx) []tx {
	txs := make([]tx, len(trans))
	for i, tran := range trans {
		txs[i] = toTx(tran)
	}
	return txs
}

type block struct {
	Index        uint64 `json:"index"`
	Timestamp    int64  `json:"timestamp"`
	Time         string `json:"time"`
	PreviousHash string `json:"previous_hash"`
	MerkleRoot   string `json:"merkle_root"`
	Difficulty   int    `json:"difficulty"`
	Nonce        uint64 `json:"nonce"`
	Hash         string `json:"hash"`
	MinedBy      string `json:"mined_by"`
	Transactions []tx   `json:"transactions"`
}

func toBlock(blk database.Block) block {
	return block{
		Index:        blk.Index,
		Timestamp:    blk.Timestamp,
		Time:         time.UnixMilli(blk.Timestamp).UTC().Format(time.RFC3339),
		PreviousHash: blk.PreviousHash,
		MerkleRoot:   blk.MerkleRoot,
		Difficulty:   blk.Difficulty,
		Nonce:        blk.Nonce,
		Hash:         blk.Hash,
		MinedBy:      blk.MinedBy,
		Transactions: toTxs(blk.Transactions),
	}
}

type txProof struct {
	Block      uint64   `json:"block"`
	TxIndex    int      `json:"tx_index"`
	Tx         tx       `json:"tx"`
	MerkleRoot string   `json:"merkle_root"`
	Proof      []string `json:"proof"`
	Order      []int64  `json:"order"`
	Verified   bool     `json:"verified"`
}

type difficulty struct {
	Difficulty int `json:"difficulty"`
	Min        int `json:"min"`
	Max        int `json:"max"`
}

type raceStarted struct {
	RaceID string   `json:"race_id"`
	Miners []string `json:"miners"`
}

// =============================================================================

// NewTx is what we require from clients to submit a transfer.
type NewTx struct {
	From   string          `json:"from" validate:"required"`
	To     string          `json:"to" validate:"required,nefield=From"`
	Amount decimal.Decimal `json:"amount"`
}

// Validate checks the data in the model is considered clean.
func (ntx NewTx) Validate() error {
	return validate.Check(ntx)
}

// SetDifficulty is what we require from clients to change the difficulty.
type SetDifficulty struct {
	Difficulty int `json:"difficulty"`
}

// StartRace is what we require from clients to start a race.
type StartRace struct {
	Miners int `json:"miners" validate:"omitempty,min=1"`
}

// Validate checks the data in the model is considered clean.
func (sr StartRace) Validate() error {
	return validate.Check(sr)
}

// TamperTx is what we require from clients to change a committed amount.
type TamperTx struct {
	Block  int             `json:"block" validate:"min=1"`
	Tx     int             `json:"tx" validate:"min=0"`
	Amount decimal.Decimal `json:"amount"`
}

// Validate checks the data in the model is considered clean.
func (tt TamperTx) Validate() error {
	return validate.Check(tt)
}

// TamperTimestamp is what we require from clients to change a committed
// block's timestamp.
type TamperTimestamp struct {
	Block     int   `json:"block" validate:"min=1"`
	Timestamp int64 `json:"timestamp" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (tt TamperTimestamp) Validate() error {
	return validate.Check(tt)
}

func (tt TamperTimestamp) String() string {
	return fmt.Sprintf("blk[%d]: timestamp[%d]", tt.Block, tt.Timestamp)
}
