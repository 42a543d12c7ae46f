package lock

import (
	"errors"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestConcurrentBalanceSafety checks that for any set of concurrent
// read-modify-write operations on the same player, the final value matches
// sequential execution of all operations.
func TestConcurrentBalanceSafety(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(1000, 100000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		deltas := make([]int64, numOps)
		expected := initial
		for i := range deltas {
			deltas[i] = rapid.Int64Range(-500, 500).Draw(t, "delta")
			expected += deltas[i]
		}

		playerID := rapid.Int64Range(1, 1000000).Draw(t, "playerID")

		pl := NewPlayerLock()
		balance := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, d := range deltas {
			go func(delta int64) {
				defer wg.Done()
				pl.Lock(playerID)
				defer pl.Unlock(playerID)
				balance += delta
			}(d)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("balance mismatch: expected %d, got %d (initial=%d, numOps=%d)",
				expected, balance, initial, numOps)
		}
	})
}

// TestLockPairNoDeadlock runs many two-party operations with both argument
// orders; if pair locking did not order its acquisitions this would deadlock.
func TestLockPairNoDeadlock(t *testing.T) {
	pl := NewPlayerLock()
	const iterations = 500

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			pl.LockPair(1, 2)
			pl.UnlockPair(1, 2)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			pl.LockPair(2, 1)
			pl.UnlockPair(2, 1)
		}
	}()
	wg.Wait()
}

func TestLockPairSameID(t *testing.T) {
	pl := NewPlayerLock()
	pl.LockPair(7, 7)
	if pl.TryLock(7) {
		t.Fatal("lock for id 7 should be held exactly once")
	}
	pl.UnlockPair(7, 7)
	if !pl.TryLock(7) {
		t.Fatal("lock for id 7 should be free after UnlockPair")
	}
	pl.Unlock(7)
}

func TestWithLockReleasesOnError(t *testing.T) {
	pl := NewPlayerLock()
	sentinel := errors.New("boom")

	held := false
	err := pl.WithLock(5, func() error {
		held = !pl.TryLock(5)
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithLock error = %v, want %v", err, sentinel)
	}
	if !held {
		t.Fatal("lock should be held inside fn")
	}
	// The error must not leak the lock.
	if !pl.TryLock(5) {
		t.Fatal("lock 5 leaked after WithLock returned an error")
	}
	pl.Unlock(5)
}

func TestTryLockPairReleasesOnFailure(t *testing.T) {
	pl := NewPlayerLock()
	pl.Lock(2)
	if pl.TryLockPair(1, 2) {
		t.Fatal("TryLockPair should fail while 2 is held")
	}
	// The first lock must have been released on failure.
	if !pl.TryLock(1) {
		t.Fatal("lock 1 leaked after failed TryLockPair")
	}
	pl.Unlock(1)
	pl.Unlock(2)
}
