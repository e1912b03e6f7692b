package production

import (
	"context"
	"errors"

	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/production"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductionService drives the production order lifecycle. Starting an order
// consumes ingredients, completing yields the output at derived cost, and
// cancelling an order in progress reverses its consumption exactly. Every
// stock-affecting transition posts its movements and the order update in one
// transaction.
type ProductionService struct {
	scope          TransactionScope
	ledger         *invapp.LedgerService
	eventPublisher shared.EventPublisher
}

// NewProductionService creates a new ProductionService
func NewProductionService(scope TransactionScope, ledger *invapp.LedgerService) *ProductionService {
	return &ProductionService{
		scope:  scope,
		ledger: ledger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new planned production order with explicit ingredients
func (s *ProductionService) Create(ctx context.Context, req CreateProductionOrderRequest) (*production.ProductionOrder, error) {
	var order *production.ProductionOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number := req.OrderNumber
		if number == "" {
			var err error
			number, err = repos.ProductionOrderRepo().NextNumber(ctx)
			if err != nil {
				return err
			}
		}

		if err := s.checkItem(ctx, repos, req.OutputItemID); err != nil {
			return err
		}

		o, err := production.NewProductionOrder(number, req.WarehouseID, req.OutputItemID, req.PlannedQuantity, req.CreatedBy)
		if err != nil {
			return err
		}
		o.Notes = req.Notes

		for _, ing := range req.Ingredients {
			if err := s.checkItem(ctx, repos, ing.ItemID); err != nil {
				return err
			}
			if err := o.AddIngredient(ing.ItemID, ing.Quantity); err != nil {
				return err
			}
		}

		if err := repos.ProductionOrderRepo().Save(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateFromRecipe plans a production order from a recipe, scaling every
// ingredient by the requested number of batches
func (s *ProductionService) CreateFromRecipe(ctx context.Context, req CreateFromRecipeRequest) (*production.ProductionOrder, error) {
	var order *production.ProductionOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		recipe, err := repos.RecipeRepo().FindByID(ctx, req.RecipeID)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
				return shared.NewDomainError(shared.ErrReferenceIntegrity.Code, "Referenced recipe does not exist")
			}
			return err
		}

		number := req.OrderNumber
		if number == "" {
			number, err = repos.ProductionOrderRepo().NextNumber(ctx)
			if err != nil {
				return err
			}
		}

		o, err := recipe.PlanOrder(number, req.WarehouseID, req.Batches, req.CreatedBy)
		if err != nil {
			return err
		}
		o.Notes = req.Notes

		if err := repos.ProductionOrderRepo().Save(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns a production order by id
func (s *ProductionService) Get(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	var order *production.ProductionOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.ProductionOrderRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// List returns production orders matching the filter
func (s *ProductionService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*production.ProductionOrder], error) {
	var page *shared.Paginated[*production.ProductionOrder]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.ProductionOrderRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Start begins production, consuming the ingredients from stock
func (s *ProductionService) Start(ctx context.Context, id uuid.UUID, req StartProductionRequest) (*production.ProductionOrder, error) {
	var order *production.ProductionOrder
	var written []*inventory.StockLine

	preliminary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.ledger.LockKeys(ingredientKeys(preliminary))
	defer unlock()

	actuals := make([]production.ActualIngredientQuantity, 0, len(req.Actuals))
	for _, a := range req.Actuals {
		actuals = append(actuals, production.ActualIngredientQuantity{IngredientID: a.IngredientID, Quantity: a.Quantity})
	}

	err = s.ledger.RetryOnConflict(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.ProductionOrderRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}

			intents, err := o.Start(actuals, req.OperatorID)
			if err != nil {
				return err
			}
			movements, lines, err := s.ledger.ApplyIntents(ctx, repos, intents)
			if err != nil {
				return err
			}
			o.RecordConsumption(movements)
			written = lines

			if err := repos.ProductionOrderRepo().Update(ctx, o); err != nil {
				return err
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.ledger.PublishCommitted(ctx, written)
	return order, nil
}

// Complete finishes production, yielding the output item at the derived cost
func (s *ProductionService) Complete(ctx context.Context, id uuid.UUID, req CompleteProductionRequest) (*production.ProductionOrder, error) {
	var order *production.ProductionOrder
	var written []*inventory.StockLine

	preliminary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.ledger.LockKeys([]inventory.LineKey{{WarehouseID: preliminary.WarehouseID, ItemID: preliminary.OutputItemID}})
	defer unlock()

	err = s.ledger.RetryOnConflict(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.ProductionOrderRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}

			yield, err := o.Complete(req.ActualQuantity, req.OperatorID)
			if err != nil {
				return err
			}
			_, lines, err := s.ledger.ApplyIntents(ctx, repos, []inventory.MovementIntent{yield})
			if err != nil {
				return err
			}
			written = lines

			if err := repos.ProductionOrderRepo().Update(ctx, o); err != nil {
				return err
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.ledger.PublishCommitted(ctx, written)
	s.publishEvents(ctx, order)
	return order, nil
}

// Cancel abandons the order, reversing any consumption already posted
func (s *ProductionService) Cancel(ctx context.Context, id uuid.UUID, req CancelProductionRequest) (*production.ProductionOrder, error) {
	var order *production.ProductionOrder
	var written []*inventory.StockLine

	preliminary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.ledger.LockKeys(ingredientKeys(preliminary))
	defer unlock()

	err = s.ledger.RetryOnConflict(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.ProductionOrderRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}

			intents, err := o.Cancel(req.OperatorID)
			if err != nil {
				return err
			}
			if len(intents) > 0 {
				_, lines, err := s.ledger.ApplyIntents(ctx, repos, intents)
				if err != nil {
					return err
				}
				written = lines
			}

			if err := repos.ProductionOrderRepo().Update(ctx, o); err != nil {
				return err
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.ledger.PublishCommitted(ctx, written)
	return order, nil
}

// RecipeCost derives a recipe's batch cost from the current average costs of
// its ingredients in the given warehouse
func (s *ProductionService) RecipeCost(ctx context.Context, recipeID, warehouseID uuid.UUID) (*production.RecipeCost, error) {
	var cost production.RecipeCost
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		recipe, err := repos.RecipeRepo().FindByID(ctx, recipeID)
		if err != nil {
			return err
		}

		unitCosts := make(map[uuid.UUID]decimal.Decimal, len(recipe.Lines))
		for _, line := range recipe.Lines {
			key := inventory.LineKey{WarehouseID: warehouseID, ItemID: line.ItemID}
			stockLine, err := repos.StockLineRepo().FindByKey(ctx, key)
			if err != nil {
				var domainErr *shared.DomainError
				if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
					// Never-stocked ingredients cost zero until first receipt.
					continue
				}
				return err
			}
			unitCosts[line.ItemID] = stockLine.AverageCost
		}

		cost = recipe.CalculateCost(unitCosts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cost, nil
}

func (s *ProductionService) checkItem(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID) error {
	item, err := repos.ItemRepo().FindByID(ctx, itemID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			return shared.NewDomainError(shared.ErrReferenceIntegrity.Code, "Referenced item does not exist")
		}
		return err
	}
	if !item.IsActive {
		return shared.NewDomainError(shared.ErrReferenceIntegrity.Code, "Referenced item is inactive")
	}
	return nil
}

func ingredientKeys(o *production.ProductionOrder) []inventory.LineKey {
	keys := make([]inventory.LineKey, 0, len(o.Ingredients))
	for _, ing := range o.Ingredients {
		keys = append(keys, inventory.LineKey{WarehouseID: o.WarehouseID, ItemID: ing.ItemID})
	}
	return keys
}

func (s *ProductionService) publishEvents(ctx context.Context, o *production.ProductionOrder) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	if events := o.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		o.ClearDomainEvents()
	}
}
