package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/production"
	"github.com/horyco/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductionOrderRepository implements ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// FindByID finds a production order by its ID
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	var order production.ProductionOrder
	if err := r.db.WithContext(ctx).
		Preload("Ingredients").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a production order by order number
func (r *GormProductionOrderRepository) FindByNumber(ctx context.Context, number string) (*production.ProductionOrder, error) {
	var order production.ProductionOrder
	if err := r.db.WithContext(ctx).
		Preload("Ingredients").
		First(&order, "order_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns production orders matching the filter, paginated
func (r *GormProductionOrderRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*production.ProductionOrder], error) {
	filter = normalizeFilter(filter)
	query := r.db.WithContext(ctx).Model(&production.ProductionOrder{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if warehouseID, ok := filter.Filters["warehouse_id"]; ok {
		query = query.Where("warehouse_id = ?", warehouseID)
	}
	if outputItemID, ok := filter.Filters["output_item_id"]; ok {
		query = query.Where("output_item_id = ?", outputItemID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []*production.ProductionOrder
	if err := applyPaging(query, filter, DocumentSortFields, "created_at").
		Preload("Ingredients").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// Save creates a new production order with its ingredients
func (r *GormProductionOrderRepository) Save(ctx context.Context, order *production.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update persists order changes guarded by the version the order was loaded
// at, then replaces the ingredient lines. A zero row count on the header means
// another writer advanced the version first.
func (r *GormProductionOrderRepository) Update(ctx context.Context, order *production.ProductionOrder) error {
	result := r.db.WithContext(ctx).
		Model(&production.ProductionOrder{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"recipe_id":        order.RecipeID,
			"status":           order.Status,
			"planned_quantity": order.PlannedQuantity,
			"actual_quantity":  order.ActualQuantity,
			"yield_unit_cost":  order.YieldUnitCost,
			"notes":            order.Notes,
			"started_at":       order.StartedAt,
			"completed_at":     order.CompletedAt,
			"cancelled_at":     order.CancelledAt,
			"version":          order.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if err := r.db.WithContext(ctx).
		Where("production_order_id = ?", order.ID).
		Delete(&production.ProductionIngredient{}).Error; err != nil {
		return err
	}
	if len(order.Ingredients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&order.Ingredients).Error
}

// NextNumber generates the next order number
func (r *GormProductionOrderRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &production.ProductionOrder{}, "PRD")
}

var _ production.ProductionOrderRepository = (*GormProductionOrderRepository)(nil)
