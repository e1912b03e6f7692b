package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormWriteoffRepository implements WriteoffRepository using GORM
type GormWriteoffRepository struct {
	db *gorm.DB
}

// NewGormWriteoffRepository creates a new GormWriteoffRepository
func NewGormWriteoffRepository(db *gorm.DB) *GormWriteoffRepository {
	return &GormWriteoffRepository{db: db}
}

// FindByID finds a writeoff by its ID
func (r *GormWriteoffRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Writeoff, error) {
	var writeoff inventory.Writeoff
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&writeoff, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &writeoff, nil
}

// FindByNumber finds a writeoff by document number
func (r *GormWriteoffRepository) FindByNumber(ctx context.Context, number string) (*inventory.Writeoff, error) {
	var writeoff inventory.Writeoff
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&writeoff, "writeoff_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &writeoff, nil
}

// List returns writeoffs matching the filter, paginated
func (r *GormWriteoffRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*inventory.Writeoff], error) {
	filter = normalizeFilter(filter)
	query := r.db.WithContext(ctx).Model(&inventory.Writeoff{})
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

	var writeoffs []*inventory.Writeoff
	if err := applyPaging(query, filter, DocumentSortFields, "created_at").
		Preload("Lines").
		Find(&writeoffs).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(writeoffs, total, filter.Page, filter.PageSize), nil
}

// Save creates a new writeoff with its lines
func (r *GormWriteoffRepository) Save(ctx context.Context, writeoff *inventory.Writeoff) error {
	return r.db.WithContext(ctx).Create(writeoff).Error
}

// Update persists writeoff changes guarded by the version the document was
// loaded at, then replaces the lines. A zero row count on the header means
// another writer advanced the version first.
func (r *GormWriteoffRepository) Update(ctx context.Context, writeoff *inventory.Writeoff) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.Writeoff{}).
		Where("id = ? AND version = ?", writeoff.ID, writeoff.Version-1).
		Updates(map[string]interface{}{
			"status":           writeoff.Status,
			"reason":           writeoff.Reason,
			"notes":            writeoff.Notes,
			"total_cost":       writeoff.TotalCost,
			"submitted_at":     writeoff.SubmittedAt,
			"approved_at":      writeoff.ApprovedAt,
			"approved_by":      writeoff.ApprovedBy,
			"rejected_at":      writeoff.RejectedAt,
			"rejection_reason": writeoff.RejectionReason,
			"version":          writeoff.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if err := r.db.WithContext(ctx).
		Where("writeoff_id = ?", writeoff.ID).
		Delete(&inventory.WriteoffLine{}).Error; err != nil {
		return err
	}
	if len(writeoff.Lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&writeoff.Lines).Error
}

// Delete removes a draft document
func (r *GormWriteoffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&inventory.Writeoff{}, "id = ?", id).Error
}

// NextNumber generates the next document number
func (r *GormWriteoffRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &inventory.Writeoff{}, "WO")
}

// nextDocumentNumber produces a date-scoped sequential number like WO-20260901-0003
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model interface{}, prefix string) (string, error) {
	today := time.Now().Truncate(24 * time.Hour)
	var count int64
	if err := db.WithContext(ctx).Model(model).
		Where("created_at >= ?", today).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, today.Format("20060102"), count+1), nil
}

var _ inventory.WriteoffRepository = (*GormWriteoffRepository)(nil)
