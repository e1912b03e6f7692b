package persistence

import (
	"context"

	invapp "github.com/horyco/backend/internal/application/inventory"
	prodapp "github.com/horyco/backend/internal/application/production"
	tradeapp "github.com/horyco/backend/internal/application/trade"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/production"
	"github.com/horyco/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// gormRepositories exposes every repository bound to one transaction. It
// satisfies the transactional repository interfaces of all application
// packages so a single type backs each scope.
type gormRepositories struct {
	tx *gorm.DB
}

// StockLineRepo returns the stock line repository scoped to the current transaction
func (r *gormRepositories) StockLineRepo() inventory.StockLineRepository {
	return NewGormStockLineRepository(r.tx)
}

// MovementRepo returns the movement journal repository scoped to the current transaction
func (r *gormRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// ItemRepo returns the item repository scoped to the current transaction
func (r *gormRepositories) ItemRepo() inventory.ItemRepository {
	return NewGormItemRepository(r.tx)
}

// WriteoffRepo returns the writeoff repository scoped to the current transaction
func (r *gormRepositories) WriteoffRepo() inventory.WriteoffRepository {
	return NewGormWriteoffRepository(r.tx)
}

// CountRepo returns the inventory count repository scoped to the current transaction
func (r *gormRepositories) CountRepo() inventory.InventoryCountRepository {
	return NewGormInventoryCountRepository(r.tx)
}

// PurchaseOrderRepo returns the purchase order repository scoped to the current transaction
func (r *gormRepositories) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// ProductionOrderRepo returns the production order repository scoped to the current transaction
func (r *gormRepositories) ProductionOrderRepo() production.ProductionOrderRepository {
	return NewGormProductionOrderRepository(r.tx)
}

// RecipeRepo returns the recipe repository scoped to the current transaction
func (r *gormRepositories) RecipeRepo() production.RecipeRepository {
	return NewGormRecipeRepository(r.tx)
}

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos invapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// GormTradeTransactionScope implements the trade TransactionScope using GORM
// transactions.
type GormTradeTransactionScope struct {
	db *gorm.DB
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope
func NewGormTradeTransactionScope(db *gorm.DB) *GormTradeTransactionScope {
	return &GormTradeTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos tradeapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// GormProductionTransactionScope implements the production TransactionScope
// using GORM transactions.
type GormProductionTransactionScope struct {
	db *gorm.DB
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope
func NewGormProductionTransactionScope(db *gorm.DB) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos prodapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

var (
	_ invapp.TransactionScope   = (*GormInventoryTransactionScope)(nil)
	_ tradeapp.TransactionScope = (*GormTradeTransactionScope)(nil)
	_ prodapp.TransactionScope  = (*GormProductionTransactionScope)(nil)

	_ invapp.TransactionalRepositories   = (*gormRepositories)(nil)
	_ tradeapp.TransactionalRepositories = (*gormRepositories)(nil)
	_ prodapp.TransactionalRepositories  = (*gormRepositories)(nil)
)
