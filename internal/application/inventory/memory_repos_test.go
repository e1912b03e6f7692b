package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// In-memory repositories backing the service tests. The stock line repository
// checks versions the same way the database implementation does, so the
// optimistic locking paths are exercised for real.

type memStockLineRepo struct {
	mu    sync.Mutex
	lines map[inventory.LineKey]inventory.StockLine
}

func newMemStockLineRepo() *memStockLineRepo {
	return &memStockLineRepo{lines: make(map[inventory.LineKey]inventory.StockLine)}
}

func (r *memStockLineRepo) FindByKey(_ context.Context, key inventory.LineKey) (*inventory.StockLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line, ok := r.lines[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := line
	return &copied, nil
}

func (r *memStockLineRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID, _ shared.Filter) (*shared.Paginated[*inventory.StockLine], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.StockLine, 0)
	for key := range r.lines {
		if key.WarehouseID == warehouseID {
			copied := r.lines[key]
			items = append(items, &copied)
		}
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memStockLineRepo) FindByItem(_ context.Context, itemID uuid.UUID) ([]*inventory.StockLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.StockLine, 0)
	for key := range r.lines {
		if key.ItemID == itemID {
			copied := r.lines[key]
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (r *memStockLineRepo) Save(_ context.Context, line *inventory.StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := line.Key()
	if _, exists := r.lines[key]; exists {
		return shared.ErrAlreadyExists
	}
	r.lines[key] = *line
	return nil
}

func (r *memStockLineRepo) SaveWithLock(_ context.Context, line *inventory.StockLine, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := line.Key()
	stored, ok := r.lines[key]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.GetVersion() != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	r.lines[key] = *line
	return nil
}

type memMovementRepo struct {
	mu        sync.Mutex
	movements []inventory.Movement
}

func newMemMovementRepo() *memMovementRepo {
	return &memMovementRepo{}
}

func (r *memMovementRepo) Append(_ context.Context, m *inventory.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memMovementRepo) AppendBatch(_ context.Context, movements []*inventory.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *memMovementRepo) History(_ context.Context, filter inventory.MovementHistoryFilter) (*shared.Paginated[*inventory.Movement], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.Movement, 0)
	for i := range r.movements {
		m := r.movements[i]
		if m.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.ItemID != nil && m.ItemID != *filter.ItemID {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		copied := m
		items = append(items, &copied)
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, refType inventory.ReferenceType, refID string) ([]*inventory.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.Movement, 0)
	for i := range r.movements {
		if r.movements[i].ReferenceType == refType && r.movements[i].ReferenceID == refID {
			copied := r.movements[i]
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (r *memMovementRepo) SumDeltas(_ context.Context, key inventory.LineKey) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for i := range r.movements {
		if r.movements[i].Key() == key {
			sum = sum.Add(r.movements[i].QuantityDelta)
		}
	}
	return sum, nil
}

type memItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]inventory.Item
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[uuid.UUID]inventory.Item)}
}

func (r *memItemRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := item
	return &copied, nil
}

func (r *memItemRepo) FindBySKU(_ context.Context, sku string) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.items {
		if r.items[id].SKU == sku {
			copied := r.items[id]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memItemRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			copied := item
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (r *memItemRepo) List(_ context.Context, _ shared.Filter) (*shared.Paginated[*inventory.Item], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.Item, 0, len(r.items))
	for id := range r.items {
		copied := r.items[id]
		items = append(items, &copied)
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memItemRepo) Save(_ context.Context, item *inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *memItemRepo) Update(_ context.Context, item *inventory.Item) error {
	return r.Save(context.Background(), item)
}

func (r *memItemRepo) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.items {
		if r.items[id].SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

type memWriteoffRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*inventory.Writeoff
	seq  int
}

func newMemWriteoffRepo() *memWriteoffRepo {
	return &memWriteoffRepo{docs: make(map[uuid.UUID]*inventory.Writeoff)}
}

func (r *memWriteoffRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Writeoff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

func (r *memWriteoffRepo) FindByNumber(_ context.Context, number string) (*inventory.Writeoff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.docs {
		if w.WriteoffNumber == number {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWriteoffRepo) List(_ context.Context, _ shared.Filter) (*shared.Paginated[*inventory.Writeoff], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.Writeoff, 0, len(r.docs))
	for _, w := range r.docs {
		items = append(items, w)
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memWriteoffRepo) Save(_ context.Context, w *inventory.Writeoff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[w.ID] = w
	return nil
}

func (r *memWriteoffRepo) Update(_ context.Context, w *inventory.Writeoff) error {
	return r.Save(context.Background(), w)
}

func (r *memWriteoffRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *memWriteoffRepo) NextNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("WO-%04d", r.seq), nil
}

type memCountRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*inventory.InventoryCount
	seq  int
}

func newMemCountRepo() *memCountRepo {
	return &memCountRepo{docs: make(map[uuid.UUID]*inventory.InventoryCount)}
}

func (r *memCountRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *memCountRepo) FindByNumber(_ context.Context, number string) (*inventory.InventoryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.docs {
		if c.CountNumber == number {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCountRepo) List(_ context.Context, _ shared.Filter) (*shared.Paginated[*inventory.InventoryCount], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.InventoryCount, 0, len(r.docs))
	for _, c := range r.docs {
		items = append(items, c)
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memCountRepo) Save(_ context.Context, c *inventory.InventoryCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[c.ID] = c
	return nil
}

func (r *memCountRepo) Update(_ context.Context, c *inventory.InventoryCount) error {
	return r.Save(context.Background(), c)
}

func (r *memCountRepo) NextNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("IC-%04d", r.seq), nil
}

// fixture wires the in-memory repositories into a no-op transaction scope
type fixture struct {
	stockLines *memStockLineRepo
	movements  *memMovementRepo
	items      *memItemRepo
	writeoffs  *memWriteoffRepo
	counts     *memCountRepo
	scope      *NoOpTransactionScope
	ledger     *LedgerService
}

func newFixture() *fixture {
	f := &fixture{
		stockLines: newMemStockLineRepo(),
		movements:  newMemMovementRepo(),
		items:      newMemItemRepo(),
		writeoffs:  newMemWriteoffRepo(),
		counts:     newMemCountRepo(),
	}
	f.scope = NewNoOpTransactionScope(f.stockLines, f.movements, f.items, f.writeoffs, f.counts)
	f.ledger = NewLedgerService(f.scope, inventory.DefaultNegativeStockPolicy())
	return f
}
