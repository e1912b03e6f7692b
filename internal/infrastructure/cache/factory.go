package cache

import (
	"fmt"

	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StockSummaryCacheFactory creates summary caches based on configuration
type StockSummaryCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StockSummaryCacheFactoryOption is a functional option for configuring the factory
type StockSummaryCacheFactoryOption func(*StockSummaryCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StockSummaryCacheFactoryOption {
	return func(f *StockSummaryCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StockSummaryCacheFactoryOption {
	return func(f *StockSummaryCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStockSummaryCacheFactory creates a new factory
func NewStockSummaryCacheFactory(cfg config.RedisConfig, opts ...StockSummaryCacheFactoryOption) *StockSummaryCacheFactory {
	f := &StockSummaryCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a summary cache. When Redis is enabled it is tried
// first, falling back to in-memory if allowed. With Redis disabled the
// in-memory cache is used directly.
func (f *StockSummaryCacheFactory) CreateCache() (invapp.StockSummaryCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory stock summary cache")
		return NewInMemoryStockSummaryCache(), nil
	}

	cache, err := NewRedisStockSummaryCache(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis stock summary cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for stock summary cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stock summary cache. "+
		"Cached valuations will not be shared across instances.",
		zap.Error(err),
	)
	return NewInMemoryStockSummaryCache(), nil
}
