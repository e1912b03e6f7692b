package inventory

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	key := inventory.LineKey{WarehouseID: uuid.New(), ItemID: uuid.New()}

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutex_CollapsesDuplicateKeys(t *testing.T) {
	m := NewKeyedMutex()
	key := inventory.LineKey{WarehouseID: uuid.New(), ItemID: uuid.New()}

	// Locking the same key twice in one batch must not self-deadlock.
	unlock := m.Lock(key, key)
	unlock()
}

func TestKeyedMutex_OverlappingBatchesDoNotDeadlock(t *testing.T) {
	m := NewKeyedMutex()
	a := inventory.LineKey{WarehouseID: uuid.New(), ItemID: uuid.New()}
	b := inventory.LineKey{WarehouseID: uuid.New(), ItemID: uuid.New()}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := m.Lock(a, b)
			defer unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := m.Lock(b, a)
			defer unlock()
		}()
	}
	wg.Wait()
}
