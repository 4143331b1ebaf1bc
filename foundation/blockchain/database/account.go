package database

import (
	"github.com/shopspring/decimal"
)

// BalanceOf walks the committed chain and returns the balance for the
// identity. Pending transactions are not included. Balances are not
// cached, every call walks every transaction.
func (db *Database) BalanceOf(identity string) decimal.Decimal {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return balanceOf(db.chain, identity)
}

// AllBalances returns the balance for every roster member and every other
// identity that has ever sent or received a transaction. The Network
// sentinel is not an account and is left out.
func (db *Database) AllBalances() map[string]decimal.Decimal {
	db.mu.RLock()
	defer db.mu.RUnlock()

	balances := make(map[string]decimal.Decimal)
	for _, member := range db.genesis.Roster {
		balances[member.Name] = decimal.Zero
	}

	for _, block := range db.chain {
		for _, tx := range block.Transactions {
			for _, identity := range []string{tx.Sender, tx.Receiver} {
				if identity == Network || identity == GenesisMiner {
					continue
				}
				if _, exists := balances[identity]; !exists {
					balances[identity] = decimal.Zero
				}
			}
		}
	}

	for identity := range balances {
		balances[identity] = balanceOf(db.chain, identity)
	}

	return balances
}

// balanceOf sums the amounts received minus the amounts sent.
func balanceOf(chain []Block, identity string) decimal.Decimal {
	balance := decimal.Zero

	for _, block := range chain {
		for _, tx := range block.Transactions {
			if tx.Sender == identity {
				balance = balance.Sub(tx.Amount)
			}
			if tx.Receiver == identity {
				balance = balance.Add(tx.Amount)
			}
		}
	}

	return balance
}
