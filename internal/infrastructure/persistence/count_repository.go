package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInventoryCountRepository implements InventoryCountRepository using GORM
type GormInventoryCountRepository struct {
	db *gorm.DB
}

// NewGormInventoryCountRepository creates a new GormInventoryCountRepository
func NewGormInventoryCountRepository(db *gorm.DB) *GormInventoryCountRepository {
	return &GormInventoryCountRepository{db: db}
}

// FindByID finds a count document by its ID
func (r *GormInventoryCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryCount, error) {
	var count inventory.InventoryCount
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&count, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindByNumber finds a count document by document number
func (r *GormInventoryCountRepository) FindByNumber(ctx context.Context, number string) (*inventory.InventoryCount, error) {
	var count inventory.InventoryCount
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&count, "count_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// List returns count documents matching the filter, paginated
func (r *GormInventoryCountRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*inventory.InventoryCount], error) {
	filter = normalizeFilter(filter)
	query := r.db.WithContext(ctx).Model(&inventory.InventoryCount{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if warehouseID, ok := filter.Filters["warehouse_id"]; ok {
		query = query.Where("warehouse_id = ?", warehouseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var counts []*inventory.InventoryCount
	if err := applyPaging(query, filter, DocumentSortFields, "created_at").
		Preload("Lines").
		Find(&counts).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(counts, total, filter.Page, filter.PageSize), nil
}

// Save creates a new count document with its snapshot lines
func (r *GormInventoryCountRepository) Save(ctx context.Context, count *inventory.InventoryCount) error {
	return r.db.WithContext(ctx).Create(count).Error
}

// Update persists count changes guarded by the version the document was
// loaded at, then replaces the lines. A zero row count on the header means
// another writer advanced the version first.
func (r *GormInventoryCountRepository) Update(ctx context.Context, count *inventory.InventoryCount) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.InventoryCount{}).
		Where("id = ? AND version = ?", count.ID, count.Version-1).
		Updates(map[string]interface{}{
			"status":       count.Status,
			"notes":        count.Notes,
			"completed_at": count.CompletedAt,
			"approved_at":  count.ApprovedAt,
			"approved_by":  count.ApprovedBy,
			"cancelled_at": count.CancelledAt,
			"version":      count.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if err := r.db.WithContext(ctx).
		Where("count_id = ?", count.ID).
		Delete(&inventory.InventoryCountLine{}).Error; err != nil {
		return err
	}
	if len(count.Lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&count.Lines).Error
}

// NextNumber generates the next document number
func (r *GormInventoryCountRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &inventory.InventoryCount{}, "IC")
}

var _ inventory.InventoryCountRepository = (*GormInventoryCountRepository)(nil)
