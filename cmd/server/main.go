package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	invapp "github.com/horyco/backend/internal/application/inventory"
	prodapp "github.com/horyco/backend/internal/application/production"
	tradeapp "github.com/horyco/backend/internal/application/trade"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/infrastructure/cache"
	"github.com/horyco/backend/internal/infrastructure/config"
	"github.com/horyco/backend/internal/infrastructure/event"
	"github.com/horyco/backend/internal/infrastructure/logger"
	"github.com/horyco/backend/internal/infrastructure/persistence"
	"github.com/horyco/backend/internal/interfaces/http/handler"
	"github.com/horyco/backend/internal/interfaces/http/middleware"
	"github.com/horyco/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting inventory backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Transaction scopes
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	tradeScope := persistence.NewGormTradeTransactionScope(db.DB)
	productionScope := persistence.NewGormProductionTransactionScope(db.DB)

	// Application services
	ledgerService := invapp.NewLedgerService(inventoryScope, negativeStockPolicy(cfg))
	itemService := invapp.NewItemService(inventoryScope)
	writeoffService := invapp.NewWriteoffService(inventoryScope, ledgerService)
	countService := invapp.NewCountService(inventoryScope, ledgerService)
	purchaseOrderService := tradeapp.NewPurchaseOrderService(tradeScope, ledgerService)
	productionService := prodapp.NewProductionService(productionScope, ledgerService)

	// Domain events fan out over an in-process bus once the producing
	// transaction has committed
	eventBus := event.NewBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	eventBus.Subscribe(event.NewLowStockAlertHandler(log))
	ledgerService.SetEventPublisher(eventBus)
	writeoffService.SetEventPublisher(eventBus)
	countService.SetEventPublisher(eventBus)
	purchaseOrderService.SetEventPublisher(eventBus)
	productionService.SetEventPublisher(eventBus)

	// Warehouse valuation cache, Redis when available
	summaryCache, err := cache.NewStockSummaryCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create stock summary cache", zap.Error(err))
	}
	ledgerService.SetSummaryCache(summaryCache, cfg.Inventory.CacheTTL)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		handler.NewStockHandler(ledgerService),
		handler.NewItemHandler(itemService),
		handler.NewWriteoffHandler(writeoffService),
		handler.NewCountHandler(countService),
		handler.NewPurchaseOrderHandler(purchaseOrderService),
		handler.NewProductionHandler(productionService),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// negativeStockPolicy builds the ledger policy from the built-in defaults
// plus any extra movement types the configuration allows to go negative.
func negativeStockPolicy(cfg *config.Config) inventory.NegativeStockPolicy {
	types := []inventory.MovementType{
		inventory.MovementTypeManualAdjustment,
		inventory.MovementTypeCountAdjustment,
	}
	for _, raw := range cfg.Inventory.AllowNegativeTypes {
		t := inventory.MovementType(raw)
		if t.IsValid() {
			types = append(types, t)
		}
	}
	return inventory.NewNegativeStockPolicy(types...)
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
