package database

import (
	"fmt"

	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
	"github.com/ardanlabs/powrace/foundation/blockchain/merkle"
)

// Set of validation error kinds.
const (
	KindHashMismatch  = "HASH_MISMATCH"
	KindBrokenChain   = "BROKEN_CHAIN"
	KindInvalidMerkle = "INVALID_MERKLE"
	KindInvalidPOW    = "INVALID_POW"
)

// ValidationError describes a single problem found in a block.
type ValidationError struct {
	BlockIndex int    `json:"block"`
	Kind       string `json:"type"`
	Message    string `json:"message"`
}

// Result is the outcome of validating a chain.
type Result struct {
	Valid        bool              `json:"valid"`
	Errors       []ValidationError `json:"errors"`
	FirstInvalid int               `json:"first_invalid"` // Lowest block index with an error, -1 when valid.
}

// Validate checks every block after genesis for a hash that matches its
// contents, a link to the previous block, a merkle root that matches its
// transactions, and a hash that solves its difficulty. Every check runs for
// every block so one block can report several kinds. Nothing is repaired.
func Validate(chain []Block) Result {
	res := Result{
		Errors:       []ValidationError{},
		FirstInvalid: -1,
	}

	fail := func(index int, kind string, format string, args ...any) {
		res.Errors = append(res.Errors, ValidationError{
			BlockIndex: index,
			Kind:       kind,
			Message:    fmt.Sprintf(format, args...),
		})
		if res.FirstInvalid == -1 || index < res.FirstInvalid {
			res.FirstInvalid = index
		}
	}

	for i := 1; i < len(chain); i++ {
		current := chain[i]
		previous := chain[i-1]

		// The merkle root is recalculated from the transactions as they
		// exist now. Any change to the block's content changes this value.
		root, err := merkle.Root(current.Transactions)
		if err != nil {
			root = ""
		}

		header := current.MiningHeader()
		header.MerkleRoot = root
		if hash := header.Hash(current.Nonce); hash != current.Hash {
			fail(i, KindHashMismatch, "block data was tampered, hash mismatch, got %s, exp %s", hash, current.Hash)
		}

		if current.PreviousHash != previous.Hash {
			fail(i, KindBrokenChain, "previous hash link broken, got %s, exp %s", current.PreviousHash, previous.Hash)
		}

		if current.MerkleRoot != root {
			fail(i, KindInvalidMerkle, "merkle root mismatch, transactions tampered, got %s, exp %s", root, current.MerkleRoot)
		}

		if !digest.MeetsDifficulty(current.Hash, current.Difficulty) {
			fail(i, KindInvalidPOW, "hash doesn't meet difficulty %d", current.Difficulty)
		}
	}

	res.Valid = len(res.Errors) == 0

	return res
}
