package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/production"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateRecipe creates a recipe. Lines without an explicit waste factor get
// the neutral factor of one.
func (s *ProductionService) CreateRecipe(ctx context.Context, req CreateRecipeRequest) (*production.Recipe, error) {
	var recipe *production.Recipe
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := s.checkItem(ctx, repos, req.OutputItemID); err != nil {
			return err
		}

		r, err := production.NewRecipe(req.Name, req.OutputItemID, req.OutputQuantity)
		if err != nil {
			return err
		}

		for _, line := range req.Lines {
			if err := s.checkItem(ctx, repos, line.ItemID); err != nil {
				return err
			}
			wasteFactor := line.WasteFactor
			if wasteFactor.IsZero() {
				wasteFactor = decimal.NewFromInt(1)
			}
			if err := r.AddLine(line.ItemID, line.Quantity, wasteFactor); err != nil {
				return err
			}
		}

		if err := repos.RecipeRepo().Save(ctx, r); err != nil {
			return err
		}
		recipe = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetRecipe returns a recipe by id
func (s *ProductionService) GetRecipe(ctx context.Context, id uuid.UUID) (*production.Recipe, error) {
	var recipe *production.Recipe
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		recipe, err = repos.RecipeRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// ListRecipes returns recipes matching the filter
func (s *ProductionService) ListRecipes(ctx context.Context, filter shared.Filter) (*shared.Paginated[*production.Recipe], error) {
	var page *shared.Paginated[*production.Recipe]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.RecipeRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
