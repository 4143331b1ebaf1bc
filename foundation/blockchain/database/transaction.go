package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
	"github.com/shopspring/decimal"
)

// Network is the sentinel identity used as the sender of issuance and
// mining reward transactions.
const Network = "Network"

// GenesisMiner is recorded as the miner of the genesis block.
const GenesisMiner = "Genesis"

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	Sender    string          `json:"sender"`    // Identity paying the amount, Network for issuance.
	Receiver  string          `json:"receiver"`  // Identity receiving the amount.
	Amount    decimal.Decimal `json:"amount"`    // Bitcoin: Value transferred by this transaction.
	CreatedAt int64           `json:"timestamp"` // Unix milliseconds the transaction was created.
}

// NewTx constructs a new transaction stamped with the current time.
func NewTx(sender string, receiver string, amount decimal.Decimal) Tx {
	return Tx{
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// Serialize returns the canonical bytes for the transaction. The amount is
// written in its shortest decimal form so 20 and 20.00 hash the same.
func (tx Tx) Serialize() ([]byte, error) {
	return json.Marshal(tx)
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction.
func (tx Tx) Hash() ([]byte, error) {
	data, err := tx.Serialize()
	if err != nil {
		return nil, err
	}

	sum := digest.Sum(data)
	return sum[:], nil
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(other Tx) bool {
	return tx.Sender == other.Sender &&
		tx.Receiver == other.Receiver &&
		tx.Amount.Equal(other.Amount) &&
		tx.CreatedAt == other.CreatedAt
}

// IsReward reports whether the transaction was issued by the network.
func (tx Tx) IsReward() bool {
	return tx.Sender == Network
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%s", tx.Sender, tx.Receiver, tx.Amount)
}
