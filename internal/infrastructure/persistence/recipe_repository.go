package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/production"
	"github.com/horyco/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRecipeRepository implements RecipeRepository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GormRecipeRepository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

// FindByID finds a recipe by its ID
func (r *GormRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Recipe, error) {
	var recipe production.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// FindByOutputItem returns the recipes producing an item
func (r *GormRecipeRepository) FindByOutputItem(ctx context.Context, outputItemID uuid.UUID) ([]*production.Recipe, error) {
	var recipes []*production.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("output_item_id = ?", outputItemID).
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// List returns recipes matching the filter, paginated
func (r *GormRecipeRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*production.Recipe], error) {
	filter = normalizeFilter(filter)
	query := r.db.WithContext(ctx).Model(&production.Recipe{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var recipes []*production.Recipe
	if err := applyPaging(query, filter, CommonSortFields, "created_at").
		Preload("Lines").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(recipes, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a recipe with its lines
func (r *GormRecipeRepository) Save(ctx context.Context, recipe *production.Recipe) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(recipe).Error
}

var _ production.RecipeRepository = (*GormRecipeRepository)(nil)
