package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/horyco/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a purchase order by order number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, number string) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "order_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns purchase orders matching the filter, paginated
func (r *GormPurchaseOrderRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*trade.PurchaseOrder], error) {
	filter = normalizeFilter(filter)
	query := r.db.WithContext(ctx).Model(&trade.PurchaseOrder{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if warehouseID, ok := filter.Filters["warehouse_id"]; ok {
		query = query.Where("warehouse_id = ?", warehouseID)
	}
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []*trade.PurchaseOrder
	if err := applyPaging(query, filter, DocumentSortFields, "created_at").
		Preload("Lines").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// FindBySupplier returns a supplier's purchase orders, paginated
func (r *GormPurchaseOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (*shared.Paginated[*trade.PurchaseOrder], error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]interface{})
	}
	filter.Filters["supplier_id"] = supplierID
	return r.List(ctx, filter)
}

// Save creates a new purchase order with its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update persists order changes guarded by the version the order was loaded
// at, then replaces the lines. A zero row count on the header means another
// writer advanced the version first.
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, order *trade.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(&trade.PurchaseOrder{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"notes":        order.Notes,
			"total_amount": order.TotalAmount,
			"submitted_at": order.SubmittedAt,
			"closed_at":    order.ClosedAt,
			"cancelled_at": order.CancelledAt,
			"version":      order.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", order.ID).
		Delete(&trade.PurchaseOrderLine{}).Error; err != nil {
		return err
	}
	if len(order.Lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&order.Lines).Error
}

// Delete removes a draft order
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&trade.PurchaseOrder{}, "id = ?", id).Error
}

// NextNumber generates the next order number
func (r *GormPurchaseOrderRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &trade.PurchaseOrder{}, "PO")
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
