package production

import (
	"context"

	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/production"
)

// TransactionScope provides transactional access to production repositories.
// Starting, completing or cancelling a production order updates the order and
// posts ledger movements in the same database transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a production
// operation needs, all sharing the same database transaction.
type TransactionalRepositories interface {
	invapp.LedgerRepositories
	// ProductionOrderRepo returns the production order repository scoped to the current transaction
	ProductionOrderRepo() production.ProductionOrderRepository
	// RecipeRepo returns the recipe repository scoped to the current transaction
	RecipeRepo() production.RecipeRepository
	// ItemRepo returns the item repository scoped to the current transaction
	ItemRepo() inventory.ItemRepository
}

// NoOpTransactionScope is a transaction scope without real transactions, for testing.
type NoOpTransactionScope struct {
	stockLineRepo       inventory.StockLineRepository
	movementRepo        inventory.MovementRepository
	itemRepo            inventory.ItemRepository
	productionOrderRepo production.ProductionOrderRepository
	recipeRepo          production.RecipeRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockLineRepo inventory.StockLineRepository,
	movementRepo inventory.MovementRepository,
	itemRepo inventory.ItemRepository,
	productionOrderRepo production.ProductionOrderRepository,
	recipeRepo production.RecipeRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockLineRepo:       stockLineRepo,
		movementRepo:        movementRepo,
		itemRepo:            itemRepo,
		productionOrderRepo: productionOrderRepo,
		recipeRepo:          recipeRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockLineRepo returns the stock line repository.
func (s *NoOpTransactionScope) StockLineRepo() inventory.StockLineRepository {
	return s.stockLineRepo
}

// MovementRepo returns the movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// ItemRepo returns the item repository.
func (s *NoOpTransactionScope) ItemRepo() inventory.ItemRepository {
	return s.itemRepo
}

// ProductionOrderRepo returns the production order repository.
func (s *NoOpTransactionScope) ProductionOrderRepo() production.ProductionOrderRepository {
	return s.productionOrderRepo
}

// RecipeRepo returns the recipe repository.
func (s *NoOpTransactionScope) RecipeRepo() production.RecipeRepository {
	return s.recipeRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
