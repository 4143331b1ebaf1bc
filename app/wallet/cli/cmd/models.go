package cmd

import (
	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/shopspring/decimal"
)

type balance struct {
	Account   string          `json:"account"`
	Color     string          `json:"color"`
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

type block struct {
	Index        uint64 `json:"index"`
	Time         string `json:"time"`
	PreviousHash string `json:"previous_hash"`
	MerkleRoot   string `json:"merkle_root"`
	Difficulty   int    `json:"difficulty"`
	Nonce        uint64 `json:"nonce"`
	Hash         string `json:"hash"`
	MinedBy      string `json:"mined_by"`
	Transactions []tx   `json:"transactions"`
}

type difficulty struct {
	Difficulty int `json:"difficulty"`
	Min        int `json:"min"`
	Max        int `json:"max"`
}

type validation = database.Result
