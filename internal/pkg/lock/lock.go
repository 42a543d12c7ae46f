// Package lock provides per-player locking so that read-modify-write
// sequences against the ledger are serialized per player id. Two concurrent
// commands touching different players never contend.
package lock

import (
	"sync"
)

// playerMutex wraps a mutex with reference counting for cleanup.
type playerMutex struct {
	mu       sync.Mutex
	refCount int
}

// PlayerLock provides per-player locking to prevent lost updates during
// balance operations and interactive game sessions.
type PlayerLock struct {
	locks sync.Map // map[int64]*playerMutex
	pool  sync.Pool
}

// NewPlayerLock creates a new PlayerLock instance.
func NewPlayerLock() *PlayerLock {
	return &PlayerLock{
		pool: sync.Pool{
			New: func() any {
				return &playerMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given player ID.
func (pl *PlayerLock) getLock(playerID int64) *playerMutex {
	if v, ok := pl.locks.Load(playerID); ok {
		return v.(*playerMutex)
	}

	newLock := pl.pool.Get().(*playerMutex)
	newLock.refCount = 0

	actual, loaded := pl.locks.LoadOrStore(playerID, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool.
		pl.pool.Put(newLock)
	}
	return actual.(*playerMutex)
}

// Lock acquires the lock for a player. Call before any balance-modifying
// operation that reads the current value first.
func (pl *PlayerLock) Lock(playerID int64) {
	lock := pl.getLock(playerID)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a player.
func (pl *PlayerLock) Unlock(playerID int64) {
	if v, ok := pl.locks.Load(playerID); ok {
		lock := v.(*playerMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (pl *PlayerLock) TryLock(playerID int64) bool {
	lock := pl.getLock(playerID)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// WithLock executes a function while holding the player's lock. The lock is
// released whether or not fn errors.
func (pl *PlayerLock) WithLock(playerID int64, fn func() error) error {
	pl.Lock(playerID)
	defer pl.Unlock(playerID)
	return fn()
}

// LockPair acquires the locks for two players in ascending id order, so that
// two-party operations (steal, duel, transfer) never deadlock against each
// other regardless of argument order.
func (pl *PlayerLock) LockPair(a, b int64) {
	if b < a {
		a, b = b, a
	}
	pl.Lock(a)
	if a != b {
		pl.Lock(b)
	}
}

// TryLockPair attempts to acquire both locks without blocking. On failure
// neither lock is held.
func (pl *PlayerLock) TryLockPair(a, b int64) bool {
	if b < a {
		a, b = b, a
	}
	if !pl.TryLock(a) {
		return false
	}
	if a == b {
		return true
	}
	if !pl.TryLock(b) {
		pl.Unlock(a)
		return false
	}
	return true
}

// UnlockPair releases the locks for two players.
func (pl *PlayerLock) UnlockPair(a, b int64) {
	if b < a {
		a, b = b, a
	}
	if a != b {
		pl.Unlock(b)
	}
	pl.Unlock(a)
}
