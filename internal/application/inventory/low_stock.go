package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LowStockAlert pairs a stock line with the catalog thresholds it violates.
type LowStockAlert struct {
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	QuantityOnHand  decimal.Decimal `json:"quantity_on_hand"`
	MinQuantity     decimal.Decimal `json:"min_quantity"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// LowStock returns the lines in a warehouse whose on-hand quantity has fallen
// to or below the item's minimum. Items with a zero minimum never alert. Each
// alert is also published as a StockBelowMinimum event when a publisher is
// configured.
func (s *LedgerService) LowStock(ctx context.Context, warehouseID uuid.UUID) ([]LowStockAlert, error) {
	var alerts []LowStockAlert
	var alertLines []*inventory.StockLine
	var alertItems []*inventory.Item

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		filter := shared.Filter{Page: 1, PageSize: 500}
		for {
			page, err := repos.StockLineRepo().FindByWarehouse(ctx, warehouseID, filter)
			if err != nil {
				return err
			}

			if len(page.Items) == 0 {
				return nil
			}
			itemIDs := make([]uuid.UUID, 0, len(page.Items))
			for _, line := range page.Items {
				itemIDs = append(itemIDs, line.ItemID)
			}
			items, err := repos.ItemRepo().FindByIDs(ctx, itemIDs)
			if err != nil {
				return err
			}
			itemByID := make(map[uuid.UUID]*inventory.Item, len(items))
			for _, item := range items {
				itemByID[item.ID] = item
			}

			for _, line := range page.Items {
				item := itemByID[line.ItemID]
				if item == nil || !item.IsActive || item.MinQuantity.IsZero() {
					continue
				}
				if line.QuantityOnHand.GreaterThan(item.MinQuantity) {
					continue
				}
				alerts = append(alerts, LowStockAlert{
					WarehouseID:     line.WarehouseID,
					ItemID:          line.ItemID,
					SKU:             item.SKU,
					Name:            item.Name,
					Unit:            item.Unit,
					QuantityOnHand:  line.QuantityOnHand,
					MinQuantity:     item.MinQuantity,
					ReorderQuantity: item.ReorderQuantity,
				})
				alertLines = append(alertLines, line)
				alertItems = append(alertItems, item)
			}

			if len(page.Items) < filter.PageSize || int64(filter.Page*filter.PageSize) >= page.Total {
				return nil
			}
			filter.Page++
		}
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		for i, line := range alertLines {
			event := inventory.NewStockBelowMinimumEvent(line, alertItems[i].MinQuantity)
			_ = s.eventPublisher.Publish(ctx, event)
		}
	}
	return alerts, nil
}
