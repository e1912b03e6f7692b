package persistence

import (
	"context"

	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMovementRepository implements the append-only movement journal using
// GORM. There are deliberately no update or delete methods.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append stores a single movement
func (r *GormMovementRepository) Append(ctx context.Context, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// AppendBatch stores movements together; the caller supplies the transaction boundary
func (r *GormMovementRepository) AppendBatch(ctx context.Context, movements []*inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// History returns movements ordered by occurrence time ascending
func (r *GormMovementRepository) History(ctx context.Context, filter inventory.MovementHistoryFilter) (*shared.Paginated[*inventory.Movement], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 500 {
		filter.PageSize = 50
	}

	query := r.db.WithContext(ctx).Model(&inventory.Movement{}).
		Where("warehouse_id = ?", filter.WarehouseID)
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var movements []*inventory.Movement
	if err := query.
		Order("occurred_at ASC, id ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(movements, total, filter.Page, filter.PageSize), nil
}

// FindByReference returns the movements posted by a document
func (r *GormMovementRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID string) ([]*inventory.Movement, error) {
	var movements []*inventory.Movement
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("occurred_at ASC, id ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumDeltas returns the sum of quantity deltas for a line
func (r *GormMovementRepository) SumDeltas(ctx context.Context, key inventory.LineKey) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&inventory.Movement{}).
		Where("warehouse_id = ? AND item_id = ?", key.WarehouseID, key.ItemID).
		Select("COALESCE(SUM(quantity_delta), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
