package trade

import (
	"context"

	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to trade repositories.
// Receiving goods updates the purchase order and posts ledger movements in
// the same database transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a trade
// operation needs, all sharing the same database transaction.
type TransactionalRepositories interface {
	invapp.LedgerRepositories
	// PurchaseOrderRepo returns the purchase order repository scoped to the current transaction
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	// ItemRepo returns the item repository scoped to the current transaction
	ItemRepo() inventory.ItemRepository
}

// NoOpTransactionScope is a transaction scope without real transactions, for testing.
type NoOpTransactionScope struct {
	stockLineRepo     inventory.StockLineRepository
	movementRepo      inventory.MovementRepository
	itemRepo          inventory.ItemRepository
	purchaseOrderRepo trade.PurchaseOrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockLineRepo inventory.StockLineRepository,
	movementRepo inventory.MovementRepository,
	itemRepo inventory.ItemRepository,
	purchaseOrderRepo trade.PurchaseOrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockLineRepo:     stockLineRepo,
		movementRepo:      movementRepo,
		itemRepo:          itemRepo,
		purchaseOrderRepo: purchaseOrderRepo,
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

// PurchaseOrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return s.purchaseOrderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
