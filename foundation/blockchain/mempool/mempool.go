// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"slices"
	"sync"
)

// Equaler represents the behavior a transaction must exhibit so committed
// transactions can be matched and removed from the pool.
type Equaler[T any] interface {
	Equals(other T) bool
}

// Mempool represents the ordered set of transactions waiting to be
// committed to a block. Transactions leave the pool in the order they
// arrived.
type Mempool[T Equaler[T]] struct {
	mu   sync.RWMutex
	pool []T
}

// New constructs a new, empty mempool.
func New[T Equaler[T]]() *Mempool[T] {
	return &Mempool[T]{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool[T]) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Append adds a transaction to the end of the pool and returns the new size.
func (mp *Mempool[T]) Append(tx T) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a snapshot of the pool in arrival order. Changes to the
// pool after the call are not reflected in the snapshot.
func (mp *Mempool[T]) Copy() []T {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return slices.Clone(mp.pool)
}

// Delete removes the first transaction in the pool matching each of the
// committed transactions and returns how many were removed. Committed
// transactions not found in the pool, like a mining reward, are ignored.
func (mp *Mempool[T]) Delete(committed []T) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, tx := range committed {
		idx := slices.IndexFunc(mp.pool, func(p T) bool { return p.Equals(tx) })
		if idx == -1 {
			continue
		}

		mp.pool = slices.Delete(mp.pool, idx, idx+1)
		removed++
	}

	return removed
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool[T]) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
