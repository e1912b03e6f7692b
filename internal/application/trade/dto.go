package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest creates a draft purchase order
type CreatePurchaseOrderRequest struct {
	OrderNumber string                     `json:"order_number"`
	SupplierID  uuid.UUID                  `json:"supplier_id" binding:"required"`
	WarehouseID uuid.UUID                  `json:"warehouse_id" binding:"required"`
	Notes       string                     `json:"notes"`
	Lines       []PurchaseOrderLineRequest `json:"lines"`
	CreatedBy   uuid.UUID                  `json:"-"`
}

// PurchaseOrderLineRequest is one line of a purchase order request
type PurchaseOrderLineRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost decimal.Decimal `json:"unit_cost" binding:"required"`
}

// ReceiveGoodsRequest books a delivery against a submitted order
type ReceiveGoodsRequest struct {
	Lines      []ReceiveGoodsLine `json:"lines" binding:"required,min=1"`
	OperatorID *uuid.UUID         `json:"operator_id"`
}

// ReceiveGoodsLine is one received line
type ReceiveGoodsLine struct {
	LineID   uuid.UUID       `json:"line_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}
