package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// WarehouseStockSummary is the aggregated valuation of one warehouse,
// computed from its stock lines.
type WarehouseStockSummary struct {
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	LineCount     int64           `json:"line_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// StockSummaryCache caches warehouse valuation summaries. Implementations
// live in infrastructure; a nil cache disables caching entirely.
type StockSummaryCache interface {
	// Get returns the cached summary and whether it was present.
	Get(ctx context.Context, warehouseID uuid.UUID) (*WarehouseStockSummary, bool, error)
	// Set stores a summary with the given TTL.
	Set(ctx context.Context, summary *WarehouseStockSummary, ttl time.Duration) error
	// Invalidate drops the cached summary for a warehouse.
	Invalidate(ctx context.Context, warehouseID uuid.UUID) error
}

// SetSummaryCache enables summary caching with the given TTL
func (s *LedgerService) SetSummaryCache(cache StockSummaryCache, ttl time.Duration) {
	s.summaryCache = cache
	s.summaryTTL = ttl
}

// WarehouseSummary returns the valuation summary for a warehouse. When a
// cache is configured a fresh enough summary is served from it; cache
// failures degrade to a direct read.
func (s *LedgerService) WarehouseSummary(ctx context.Context, warehouseID uuid.UUID) (*WarehouseStockSummary, error) {
	if s.summaryCache != nil {
		if cached, ok, err := s.summaryCache.Get(ctx, warehouseID); err == nil && ok {
			return cached, nil
		}
	}

	summary, err := s.computeSummary(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	if s.summaryCache != nil {
		// Best effort; the summary is already in hand.
		_ = s.summaryCache.Set(ctx, summary, s.summaryTTL)
	}
	return summary, nil
}

func (s *LedgerService) computeSummary(ctx context.Context, warehouseID uuid.UUID) (*WarehouseStockSummary, error) {
	summary := &WarehouseStockSummary{
		WarehouseID:   warehouseID,
		TotalQuantity: decimal.Zero,
		TotalValue:    decimal.Zero,
		GeneratedAt:   time.Now().UTC(),
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		filter := shared.Filter{Page: 1, PageSize: 500}
		for {
			page, err := repos.StockLineRepo().FindByWarehouse(ctx, warehouseID, filter)
			if err != nil {
				return err
			}
			for _, line := range page.Items {
				summary.TotalQuantity = summary.TotalQuantity.Add(line.QuantityOnHand)
				summary.TotalValue = summary.TotalValue.Add(line.TotalValue())
			}
			summary.LineCount = page.Total
			if len(page.Items) < filter.PageSize || int64(filter.Page*filter.PageSize) >= page.Total {
				return nil
			}
			filter.Page++
		}
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// invalidateSummaries drops cached summaries for every warehouse a committed
// write touched.
func (s *LedgerService) invalidateSummaries(ctx context.Context, lines []*inventory.StockLine) {
	if s.summaryCache == nil {
		return
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if seen[line.WarehouseID] {
			continue
		}
		seen[line.WarehouseID] = true
		_ = s.summaryCache.Invalidate(ctx, line.WarehouseID)
	}
}
