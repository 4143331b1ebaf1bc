package database

import (
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
	"github.com/ardanlabs/powrace/foundation/blockchain/merkle"
)

// MiningHeader represents the fields of a block a miner hashes. The nonce
// is supplied separately for every attempt.
type MiningHeader struct {
	Index        uint64 `json:"index"`         // Ethereum: Block number in the chain.
	Timestamp    int64  `json:"timestamp"`     // Bitcoin: Time the block was drafted, unix milliseconds.
	MerkleRoot   string `json:"merkle_root"`   // Bitcoin/Ethereum: Represents the merkle tree root hash for the transactions in this block.
	PreviousHash string `json:"previous_hash"` // Bitcoin: Hash of the previous block in the chain.
}

// Prefix returns the serialized header up to and including the nonce key.
// Appending a nonce with AppendNonce produces the bytes that are hashed.
func (h MiningHeader) Prefix() []byte {
	data, err := json.Marshal(h)
	if err != nil {
		return nil
	}

	data = data[:len(data)-1]
	return append(data, `,"nonce":`...)
}

// Serialize returns the canonical bytes of the header with the nonce.
func (h MiningHeader) Serialize(nonce uint64) []byte {
	return AppendNonce(h.Prefix(), nonce)
}

// Hash returns the hex encoded digest of the header with the nonce.
func (h MiningHeader) Hash(nonce uint64) string {
	return digest.Hex(h.Serialize(nonce))
}

// AppendNonce completes a header prefix with the nonce.
func AppendNonce(prefix []byte, nonce uint64) []byte {
	b := strconv.AppendUint(prefix, nonce, 10)
	return append(b, '}')
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Index        uint64 `json:"index"`
	Timestamp    int64  `json:"timestamp"`
	Transactions []Tx   `json:"transactions"`
	PreviousHash string `json:"previous_hash"`
	MerkleRoot   string `json:"merkle_root"`
	Difficulty   int    `json:"difficulty"` // Number of 0's needed to solve the hash solution.
	Nonce        uint64 `json:"nonce"`      // Bitcoin: Value identified to solve the hash solution.
	Hash         string `json:"hash"`
	MinedBy      string `json:"mined_by,omitempty"` // Empty until a miner solves the block.
}

// NewDraft constructs a block ready to be mined. The nonce starts at zero
// and the hash reflects that nonce until a miner records a solution.
func NewDraft(index uint64, trans []Tx, previousHash string, difficulty int) (Block, error) {
	trans = slices.Clone(trans)

	root, err := merkle.Root(trans)
	if err != nil {
		return Block{}, err
	}

	b := Block{
		Index:        index,
		Timestamp:    time.Now().UnixMilli(),
		Transactions: trans,
		PreviousHash: previousHash,
		MerkleRoot:   root,
		Difficulty:   difficulty,
		Nonce:        0,
	}
	b.Hash = b.CalculateHash()

	return b, nil
}

// MiningHeader returns the immutable part of the block a miner searches over.
func (b Block) MiningHeader() MiningHeader {
	return MiningHeader{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		MerkleRoot:   b.MerkleRoot,
		PreviousHash: b.PreviousHash,
	}
}

// CalculateHash recomputes the hash from the current header fields and nonce.
func (b Block) CalculateHash() string {
	return b.MiningHeader().Hash(b.Nonce)
}

// ApplyMinedResult records the solution found by a miner. The caller is
// responsible for having verified the hash; the validator checks it later.
func (b *Block) ApplyMinedResult(nonce uint64, hash string, minerName string) {
	b.Nonce = nonce
	b.Hash = hash
	b.MinedBy = minerName
}

// Clone returns a copy of the block that shares no transaction storage.
func (b Block) Clone() Block {
	b.Transactions = slices.Clone(b.Transactions)
	return b
}

// TransactionTree builds the merkle tree for the block's transactions.
func (b Block) TransactionTree() (*merkle.Tree[Tx], error) {
	return merkle.NewTree(b.Transactions)
}
