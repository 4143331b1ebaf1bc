package state

import (
	"fmt"

	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/shopspring/decimal"
)

// TxProof represents the merkle proof that a transaction is part of a
// committed block.
type TxProof struct {
	BlockIndex uint64
	TxIndex    int
	Tx         database.Tx
	MerkleRoot string
	Proof      [][]byte
	Order      []int64
	Verified   bool // The proof rebuilds the committed merkle root.
}

// =============================================================================

// QueryBlock returns a copy of the block at the specified index.
func (s *State) QueryBlock(index int) (database.Block, error) {
	return s.db.GetBlock(index)
}

// QueryBalance returns the committed balance for the identity.
func (s *State) QueryBalance(identity string) decimal.Decimal {
	return s.db.BalanceOf(s.names.Name(identity))
}

// QueryAvailableBalance returns the committed balance for the identity less
// the amounts it is already sending in pending transactions.
func (s *State) QueryAvailableBalance(identity string) decimal.Decimal {
	name := s.names.Name(identity)

	available := s.db.BalanceOf(name)
	for _, tx := range s.db.Pending() {
		if tx.Sender == name {
			available = available.Sub(tx.Amount)
		}
	}

	return available
}

// QueryTxProof builds the merkle proof for the transaction at txIndex in
// the block at blockIndex.
func (s *State) QueryTxProof(blockIndex int, txIndex int) (TxProof, error) {
	block, err := s.db.GetBlock(blockIndex)
	if err != nil {
		return TxProof{}, err
	}

	if txIndex < 0 || txIndex >= len(block.Transactions) {
		return TxProof{}, fmt.Errorf("block %d tx %d: %w", blockIndex, txIndex, database.ErrInvalidTarget)
	}

	tree, err := block.TransactionTree()
	if err != nil {
		return TxProof{}, err
	}

	tx := block.Transactions[txIndex]
	proof, order, err := tree.Proof(tx)
	if err != nil {
		return TxProof{}, err
	}

	verified := tree.VerifyProof(tx, proof, order) == nil && tree.RootHex() == block.MerkleRoot

	txp := TxProof{
		BlockIndex: block.Index,
		TxIndex:    txIndex,
		Tx:         tx,
		MerkleRoot: tree.RootHex(),
		Proof:      proof,
		Order:      order,
		Verified:   verified,
	}

	return txp, nil
}

// ValidateChain runs the chain validator over the current chain.
func (s *State) ValidateChain() database.Result {
	result := s.db.Validate()
	s.evHandler("state: ValidateChain: valid[%t]: errors[%d]: first[%d]", result.Valid, len(result.Errors), result.FirstInvalid)

	return result
}
