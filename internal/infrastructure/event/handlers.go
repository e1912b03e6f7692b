package event

import (
	"context"

	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes every published domain event to the structured log.
// It subscribes as a catch-all handler.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
	)
	return nil
}

// EventTypes returns an empty list, subscribing the handler to every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// LowStockAlertHandler warns when a stock line drops below its item's minimum
type LowStockAlertHandler struct {
	logger *zap.Logger
}

// NewLowStockAlertHandler creates a low stock alert handler
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger}
}

// Handle warns about the line that went below minimum
func (h *LowStockAlertHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	below, ok := evt.(*inventory.StockBelowMinimumEvent)
	if !ok {
		return nil
	}
	h.logger.Warn("Stock below minimum",
		zap.String("warehouse_id", below.WarehouseID.String()),
		zap.String("item_id", below.ItemID.String()),
		zap.String("on_hand", below.OnHand.String()),
		zap.String("min_quantity", below.MinQuantity.String()),
	)
	return nil
}

// EventTypes subscribes the handler to stock below minimum events only
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowMinimum}
}
