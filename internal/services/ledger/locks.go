package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "vestra/internal/errors"
)

// lockManager hands out one exclusive lock per entity key (wallet or
// investment). Lock channels are retained for the process lifetime; the key
// space is bounded by the number of wallets and investments.
type lockManager struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	timeout time.Duration
}

func newLockManager(timeout time.Duration) *lockManager {
	return &lockManager{
		locks:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (m *lockManager) lock(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[key] = ch
	}
	return ch
}

// Acquire takes every key's lock, or none. Keys are deduplicated and acquired
// in sorted order so two-wallet operations cannot deadlock against each other.
// Acquisition is bounded by the configured timeout; on expiry the caller gets
// ErrWalletBusy and may retry.
func (m *lockManager) Acquire(ctx context.Context, keys ...string) (release func(), err error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	deadline := time.NewTimer(m.timeout)
	defer deadline.Stop()

	held := make([]chan struct{}, 0, len(sorted))
	releaseHeld := func() {
		// Release in reverse acquisition order.
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range sorted {
		ch := m.lock(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-deadline.C:
			releaseHeld()
			return nil, domain.ErrWalletBusy
		case <-ctx.Done():
			releaseHeld()
			return nil, domain.ErrWalletBusy
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}
