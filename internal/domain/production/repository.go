package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
)

// ProductionOrderRepository defines persistence for production orders
type ProductionOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	FindByNumber(ctx context.Context, number string) (*ProductionOrder, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*ProductionOrder], error)
	Save(ctx context.Context, order *ProductionOrder) error
	Update(ctx context.Context, order *ProductionOrder) error
	NextNumber(ctx context.Context) (string, error)
}

// RecipeRepository defines persistence for recipes
type RecipeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
	FindByOutputItem(ctx context.Context, outputItemID uuid.UUID) ([]*Recipe, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Recipe], error)
	Save(ctx context.Context, recipe *Recipe) error
}
