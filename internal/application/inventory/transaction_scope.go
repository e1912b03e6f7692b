package inventory

import (
	"context"

	"github.com/horyco/backend/internal/domain/inventory"
)

// LedgerRepositories is the minimal repository set a ledger write needs.
// Document services that post movements inside their own transaction pass
// their transactional repositories through this interface.
type LedgerRepositories interface {
	// StockLineRepo returns the stock line repository scoped to the current transaction
	StockLineRepo() inventory.StockLineRepository
	// MovementRepo returns the movement journal repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
}

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. A document approval that posts stock movements uses one
// scope for both the document update and the ledger writes.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all inventory repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	LedgerRepositories
	// ItemRepo returns the item repository scoped to the current transaction
	ItemRepo() inventory.ItemRepository
	// WriteoffRepo returns the writeoff repository scoped to the current transaction
	WriteoffRepo() inventory.WriteoffRepository
	// CountRepo returns the inventory count repository scoped to the current transaction
	CountRepo() inventory.InventoryCountRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	stockLineRepo inventory.StockLineRepository
	movementRepo  inventory.MovementRepository
	itemRepo      inventory.ItemRepository
	writeoffRepo  inventory.WriteoffRepository
	countRepo     inventory.InventoryCountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockLineRepo inventory.StockLineRepository,
	movementRepo inventory.MovementRepository,
	itemRepo inventory.ItemRepository,
	writeoffRepo inventory.WriteoffRepository,
	countRepo inventory.InventoryCountRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockLineRepo: stockLineRepo,
		movementRepo:  movementRepo,
		itemRepo:      itemRepo,
		writeoffRepo:  writeoffRepo,
		countRepo:     countRepo,
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

// WriteoffRepo returns the writeoff repository.
func (s *NoOpTransactionScope) WriteoffRepo() inventory.WriteoffRepository {
	return s.writeoffRepo
}

// CountRepo returns the inventory count repository.
func (s *NoOpTransactionScope) CountRepo() inventory.InventoryCountRepository {
	return s.countRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
