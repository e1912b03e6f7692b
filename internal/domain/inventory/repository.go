package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockLineRepository defines persistence for stock lines
type StockLineRepository interface {
	// FindByKey returns the line for a warehouse-item combination, or
	// shared.ErrNotFound if no stock has ever moved for it
	FindByKey(ctx context.Context, key LineKey) (*StockLine, error)
	// FindByWarehouse returns all lines in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*StockLine], error)
	// FindByItem returns the lines holding an item across warehouses
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]*StockLine, error)
	// Save persists a new line
	Save(ctx context.Context, line *StockLine) error
	// SaveWithLock persists line changes guarded by the expected version and
	// returns shared.ErrConcurrencyConflict when another writer got there first
	SaveWithLock(ctx context.Context, line *StockLine, expectedVersion int) error
}

// MovementHistoryFilter narrows a movement history query
type MovementHistoryFilter struct {
	WarehouseID uuid.UUID
	ItemID      *uuid.UUID
	From        *time.Time
	To          *time.Time
	Type        *MovementType
	Page        int
	PageSize    int
}

// MovementRepository defines persistence for the append-only movement journal.
// There are no update or delete operations; corrections are compensating
// movements.
type MovementRepository interface {
	// Append stores a single movement
	Append(ctx context.Context, movement *Movement) error
	// AppendBatch stores movements together; the caller supplies the
	// transaction boundary
	AppendBatch(ctx context.Context, movements []*Movement) error
	// History returns movements ordered by occurrence time ascending
	History(ctx context.Context, filter MovementHistoryFilter) (*shared.Paginated[*Movement], error)
	// FindByReference returns the movements posted by a document
	FindByReference(ctx context.Context, refType ReferenceType, refID string) ([]*Movement, error)
	// SumDeltas returns the sum of quantity deltas for a line, used to audit
	// the ledger against the stock line
	SumDeltas(ctx context.Context, key LineKey) (decimal.Decimal, error)
}

// ItemRepository defines persistence for catalog items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Item], error)
	Save(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}

// WriteoffRepository defines persistence for writeoff documents
type WriteoffRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Writeoff, error)
	FindByNumber(ctx context.Context, number string) (*Writeoff, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Writeoff], error)
	Save(ctx context.Context, writeoff *Writeoff) error
	Update(ctx context.Context, writeoff *Writeoff) error
	// Delete removes a draft document; callers enforce the draft-only rule
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumber(ctx context.Context) (string, error)
}

// InventoryCountRepository defines persistence for count documents
type InventoryCountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryCount, error)
	FindByNumber(ctx context.Context, number string) (*InventoryCount, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*InventoryCount], error)
	Save(ctx context.Context, count *InventoryCount) error
	Update(ctx context.Context, count *InventoryCount) error
	NextNumber(ctx context.Context) (string, error)
}
