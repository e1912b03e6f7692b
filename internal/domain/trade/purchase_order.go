package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSubmitted         PurchaseOrderStatus = "SUBMITTED"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusClosed            PurchaseOrderStatus = "CLOSED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

var purchaseOrderWorkflow = shared.NewWorkflow("PurchaseOrder", map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderStatusDraft:             {PurchaseOrderStatusSubmitted, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusSubmitted:         {PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived},
	PurchaseOrderStatusPartiallyReceived: {PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived},
	PurchaseOrderStatusReceived:          {PurchaseOrderStatusClosed},
})

// PurchaseOrder is a document ordering goods from a supplier. Receiving goods
// against a submitted order posts purchase receipt movements valued at the
// ordered unit cost; an order may be received across several deliveries.
type PurchaseOrder struct {
	shared.AuditedAggregateRoot
	OrderNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null;index"`
	Notes       string              `gorm:"type:text"`
	Lines       []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	SubmittedAt *time.Time
	ClosedAt    *time.Time
	CancelledAt *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLine is one ordered item
type PurchaseOrderLine struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// RemainingQuantity returns the quantity still outstanding on the line
func (l *PurchaseOrderLine) RemainingQuantity() decimal.Decimal {
	return l.QuantityOrdered.Sub(l.QuantityReceived)
}

// IsFullyReceived returns true once nothing is outstanding
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.QuantityReceived.GreaterThanOrEqual(l.QuantityOrdered)
}

// LineTotal returns the ordered value of the line
func (l *PurchaseOrderLine) LineTotal() decimal.Decimal {
	return l.QuantityOrdered.Mul(l.UnitCost)
}

// ReceiptLine is one line of a delivery being received against the order
type ReceiptLine struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(orderNumber string, supplierID, warehouseID uuid.UUID, createdBy uuid.UUID) (*PurchaseOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &PurchaseOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		OrderNumber:          orderNumber,
		SupplierID:           supplierID,
		WarehouseID:          warehouseID,
		Status:               PurchaseOrderStatusDraft,
		Lines:                make([]PurchaseOrderLine, 0),
		TotalAmount:          decimal.Zero,
	}, nil
}

// IsEditable returns true while line edits are still allowed
func (o *PurchaseOrder) IsEditable() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// AddLine adds an item to the draft order
func (o *PurchaseOrder) AddLine(itemID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if !o.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft orders can be edited")
	}
	if itemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	for _, line := range o.Lines {
		if line.ItemID == itemID {
			return shared.NewDomainError("DUPLICATE_LINE", "Item already present on this order")
		}
	}

	o.Lines = append(o.Lines, PurchaseOrderLine{
		BaseEntity:       shared.NewBaseEntity(),
		PurchaseOrderID:  o.ID,
		ItemID:           itemID,
		QuantityOrdered:  quantity,
		QuantityReceived: decimal.Zero,
		UnitCost:         unitCost,
	})
	o.recalculateTotal()
	o.IncrementVersion()

	return nil
}

// UpdateLine changes quantity and cost of an existing draft line
func (o *PurchaseOrder) UpdateLine(lineID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if !o.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft orders can be edited")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines[i].QuantityOrdered = quantity
			o.Lines[i].UnitCost = unitCost
			o.Lines[i].UpdatedAt = time.Now()
			o.recalculateTotal()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// RemoveLine removes a line from the draft order
func (o *PurchaseOrder) RemoveLine(lineID uuid.UUID) error {
	if !o.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft orders can be edited")
	}

	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.recalculateTotal()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal())
	}
	o.TotalAmount = total
}

// Submit sends the draft order to the supplier, locking its lines
func (o *PurchaseOrder) Submit() error {
	if err := purchaseOrderWorkflow.Transition(o.Status, PurchaseOrderStatusSubmitted); err != nil {
		return err
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot submit an order without lines")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusSubmitted
	o.SubmittedAt = &now
	o.IncrementVersion()

	return nil
}

// Receive books a delivery against the order and returns the purchase receipt
// intents to post. Each receipt is guarded per line: receiving more than the
// outstanding quantity fails with QUANTITY_EXCEEDED and nothing is booked,
// which makes accidental re-delivery of the same receipt harmless. The order
// moves to PARTIALLY_RECEIVED or RECEIVED depending on what remains.
func (o *PurchaseOrder) Receive(receipts []ReceiptLine, operatorID *uuid.UUID) ([]inventory.MovementIntent, error) {
	switch o.Status {
	case PurchaseOrderStatusSubmitted, PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived:
		// Receiving against a fully received order falls through to the
		// per-line guard, so a re-driven receipt fails with QUANTITY_EXCEEDED
		// rather than being double-applied.
	default:
		return nil, shared.NewDomainError("INVALID_TRANSITION",
			"Goods can only be received against a submitted order")
	}
	if len(receipts) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt must contain at least one line")
	}

	lineByID := make(map[uuid.UUID]*PurchaseOrderLine, len(o.Lines))
	for i := range o.Lines {
		lineByID[o.Lines[i].ID] = &o.Lines[i]
	}

	// Validate the whole receipt before mutating anything.
	for _, r := range receipts {
		line, ok := lineByID[r.LineID]
		if !ok {
			return nil, shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
		}
		if r.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
		}
		if r.Quantity.GreaterThan(line.RemainingQuantity()) {
			return nil, shared.NewDomainError("QUANTITY_EXCEEDED",
				"Received quantity exceeds remaining ordered quantity for line "+line.ID.String())
		}
	}

	intents := make([]inventory.MovementIntent, 0, len(receipts))
	for _, r := range receipts {
		line := lineByID[r.LineID]
		line.QuantityReceived = line.QuantityReceived.Add(r.Quantity)
		line.UpdatedAt = time.Now()

		cost := line.UnitCost
		intents = append(intents, inventory.MovementIntent{
			WarehouseID:   o.WarehouseID,
			ItemID:        line.ItemID,
			QuantityDelta: r.Quantity,
			UnitCost:      &cost,
			Type:          inventory.MovementTypePurchaseReceipt,
			ReferenceType: inventory.ReferenceTypePurchaseOrder,
			ReferenceID:   o.OrderNumber,
			ReferenceLine: line.ID.String(),
			OperatorID:    operatorID,
		})
	}

	next := PurchaseOrderStatusReceived
	for _, line := range o.Lines {
		if !line.IsFullyReceived() {
			next = PurchaseOrderStatusPartiallyReceived
			break
		}
	}
	o.Status = next
	o.IncrementVersion()
	o.AddDomainEvent(NewGoodsReceivedEvent(o, intents))

	return intents, nil
}

// Close finishes a fully received order
func (o *PurchaseOrder) Close() error {
	if err := purchaseOrderWorkflow.Transition(o.Status, PurchaseOrderStatusClosed); err != nil {
		return err
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusClosed
	o.ClosedAt = &now
	o.IncrementVersion()

	return nil
}

// Cancel abandons a draft order. Submitted orders cannot be cancelled once the
// supplier has them.
func (o *PurchaseOrder) Cancel() error {
	if err := purchaseOrderWorkflow.Transition(o.Status, PurchaseOrderStatusCancelled); err != nil {
		return err
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.IncrementVersion()

	return nil
}

// IsFullyReceived returns true once every line is fully received
func (o *PurchaseOrder) IsFullyReceived() bool {
	for _, line := range o.Lines {
		if !line.IsFullyReceived() {
			return false
		}
	}
	return len(o.Lines) > 0
}
