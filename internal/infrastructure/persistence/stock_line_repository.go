package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockLineRepository implements StockLineRepository using GORM
type GormStockLineRepository struct {
	db *gorm.DB
}

// NewGormStockLineRepository creates a new GormStockLineRepository
func NewGormStockLineRepository(db *gorm.DB) *GormStockLineRepository {
	return &GormStockLineRepository{db: db}
}

// FindByKey returns the line for a warehouse-item combination
func (r *GormStockLineRepository) FindByKey(ctx context.Context, key inventory.LineKey) (*inventory.StockLine, error) {
	var line inventory.StockLine
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND item_id = ?", key.WarehouseID, key.ItemID).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// FindByWarehouse returns all lines in a warehouse, paginated
func (r *GormStockLineRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*inventory.StockLine], error) {
	filter = normalizeFilter(filter)
	query := r.db.WithContext(ctx).Model(&inventory.StockLine{}).
		Where("warehouse_id = ?", warehouseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var lines []*inventory.StockLine
	if err := applyPaging(query, filter, StockLineSortFields, "item_id").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(lines, total, filter.Page, filter.PageSize), nil
}

// FindByItem returns the lines holding an item across warehouses
func (r *GormStockLineRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]*inventory.StockLine, error) {
	var lines []*inventory.StockLine
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Save persists a new line
func (r *GormStockLineRepository) Save(ctx context.Context, line *inventory.StockLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// SaveWithLock persists line changes guarded by the expected version.
// A zero row count means another writer advanced the version first.
func (r *GormStockLineRepository) SaveWithLock(ctx context.Context, line *inventory.StockLine, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockLine{}).
		Where("id = ? AND version = ?", line.ID, expectedVersion).
		Updates(map[string]interface{}{
			"quantity_on_hand":  line.QuantityOnHand,
			"reserved_quantity": line.ReservedQuantity,
			"average_cost":      line.AverageCost,
			"last_cost":         line.LastCost,
			"version":           line.Version,
			"updated_at":        line.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ inventory.StockLineRepository = (*GormStockLineRepository)(nil)
