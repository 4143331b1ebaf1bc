package state

import (
	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/blockchain/genesis"
	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
	"github.com/shopspring/decimal"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns a copy of the entire chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Chain()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the pending transactions.
func (s *State) RetrieveMempool() []database.Tx {
	return s.db.Pending()
}

// RetrieveBalances returns the committed balance of every known identity.
func (s *State) RetrieveBalances() map[string]decimal.Decimal {
	return s.db.AllBalances()
}

// RetrieveDifficulty returns the difficulty new blocks are drafted with.
func (s *State) RetrieveDifficulty() int {
	return s.db.Difficulty()
}

// RetrieveRaceStatus returns a snapshot of the current or last race.
func (s *State) RetrieveRaceStatus() worker.Status {
	return s.Worker.Status()
}
