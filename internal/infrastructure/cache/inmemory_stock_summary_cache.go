package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
)

// summaryEntry holds a cached summary with its expiration
type summaryEntry struct {
	summary   *invapp.WarehouseStockSummary
	expiresAt time.Time
}

// InMemoryStockSummaryCache implements StockSummaryCache with a map. Suitable
// for single-instance deployments and testing; state is not shared across
// processes.
type InMemoryStockSummaryCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]summaryEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStockSummaryCache creates an in-memory summary cache and starts
// a background goroutine that removes expired entries.
func NewInMemoryStockSummaryCache() *InMemoryStockSummaryCache {
	cache := &InMemoryStockSummaryCache{
		entries:  make(map[uuid.UUID]summaryEntry),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached summary for a warehouse, if present and unexpired
func (c *InMemoryStockSummaryCache) Get(ctx context.Context, warehouseID uuid.UUID) (*invapp.WarehouseStockSummary, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[warehouseID]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.summary, true, nil
}

// Set stores a summary with the given TTL
func (c *InMemoryStockSummaryCache) Set(ctx context.Context, summary *invapp.WarehouseStockSummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[summary.WarehouseID] = summaryEntry{
		summary:   summary,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate drops the cached summary for a warehouse
func (c *InMemoryStockSummaryCache) Invalidate(ctx context.Context, warehouseID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, warehouseID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryStockSummaryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryStockSummaryCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryStockSummaryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for warehouseID, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, warehouseID)
		}
	}
}

var _ invapp.StockSummaryCache = (*InMemoryStockSummaryCache)(nil)
