package inventory

import (
	"sort"
	"sync"

	"github.com/horyco/backend/internal/domain/inventory"
)

// KeyedMutex serializes ledger writes per stock line. Two movements against
// the same (warehouse, item) pair take turns; movements against different
// lines run concurrently.
//
// Multi-line batches lock their keys in sorted order so two overlapping
// batches cannot deadlock against each other.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates a new keyed mutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *KeyedMutex) lockFor(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

// Lock acquires the locks for the given line keys and returns the unlock
// function. Duplicate keys are collapsed so a batch touching the same line
// twice does not self-deadlock.
func (m *KeyedMutex) Lock(keys ...inventory.LineKey) func() {
	unique := make(map[string]struct{}, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, key := range keys {
		k := key.String()
		if _, seen := unique[k]; seen {
			continue
		}
		unique[k] = struct{}{}
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, k := range ordered {
		lock := m.lockFor(k)
		lock.Lock()
		held = append(held, lock)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
