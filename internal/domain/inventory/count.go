package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CountStatus represents the status of an inventory count document
type CountStatus string

const (
	CountStatusInProgress CountStatus = "IN_PROGRESS"
	CountStatusCompleted  CountStatus = "COMPLETED"
	CountStatusApproved   CountStatus = "APPROVED"
	CountStatusCancelled  CountStatus = "CANCELLED"
)

var countWorkflow = shared.NewWorkflow("InventoryCount", map[CountStatus][]CountStatus{
	CountStatusInProgress: {CountStatusCompleted, CountStatusCancelled},
	CountStatusCompleted:  {CountStatusApproved},
})

// InventoryCount is a physical stock-taking document. Expected quantities are
// snapshotted when lines are added; counted quantities are entered while the
// count is in progress. Completing the count freezes the lines and computes
// variances without touching stock; only approval posts the adjustments.
type InventoryCount struct {
	shared.AuditedAggregateRoot
	CountNumber string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	WarehouseID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status      CountStatus          `gorm:"type:varchar(20);not null;index"`
	Notes       string               `gorm:"type:text"`
	Lines       []InventoryCountLine `gorm:"foreignKey:CountID;constraint:OnDelete:CASCADE"`
	CompletedAt *time.Time
	ApprovedAt  *time.Time
	ApprovedBy  *uuid.UUID           `gorm:"type:uuid"`
	CancelledAt *time.Time
}

// TableName returns the table name for GORM
func (InventoryCount) TableName() string {
	return "inventory_counts"
}

// InventoryCountLine is one item being counted
type InventoryCountLine struct {
	shared.BaseEntity
	CountID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID        `gorm:"type:uuid;not null"`
	ExpectedQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // recorded stock when the line was added
	CountedQuantity  *decimal.Decimal `gorm:"type:decimal(18,4)"`          // nil until counted
	UnitCost         decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityVariance decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // set at completion
	ValueVariance    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryCountLine) TableName() string {
	return "inventory_count_lines"
}

// IsCounted returns true once a counted quantity has been entered
func (l *InventoryCountLine) IsCounted() bool {
	return l.CountedQuantity != nil
}

// NewInventoryCount creates a new count document in progress
func NewInventoryCount(countNumber string, warehouseID uuid.UUID, createdBy uuid.UUID) (*InventoryCount, error) {
	countNumber = strings.TrimSpace(countNumber)
	if countNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Count number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &InventoryCount{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		CountNumber:          countNumber,
		WarehouseID:          warehouseID,
		Status:               CountStatusInProgress,
		Lines:                make([]InventoryCountLine, 0),
	}, nil
}

// IsEditable returns true while lines may still be added and counted
func (c *InventoryCount) IsEditable() bool {
	return c.Status == CountStatusInProgress
}

// AddLine adds an item to the count with its expected quantity and current
// unit cost snapshotted from the stock line
func (c *InventoryCount) AddLine(itemID uuid.UUID, expectedQuantity, unitCost decimal.Decimal) error {
	if !c.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only counts in progress can be edited")
	}
	if itemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	for _, line := range c.Lines {
		if line.ItemID == itemID {
			return shared.NewDomainError("DUPLICATE_LINE", "Item already present on this count")
		}
	}

	c.Lines = append(c.Lines, InventoryCountLine{
		BaseEntity:       shared.NewBaseEntity(),
		CountID:          c.ID,
		ItemID:           itemID,
		ExpectedQuantity: expectedQuantity,
		UnitCost:         unitCost,
	})
	c.IncrementVersion()

	return nil
}

// RecordCount enters the physically counted quantity for a line
func (c *InventoryCount) RecordCount(lineID uuid.UUID, counted decimal.Decimal) error {
	if !c.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only counts in progress accept counted quantities")
	}
	if counted.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}

	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].CountedQuantity = &counted
			c.Lines[i].UpdatedAt = time.Now()
			c.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Count line not found")
}

// RemoveLine removes a line while the count is in progress
func (c *InventoryCount) RemoveLine(lineID uuid.UUID) error {
	if !c.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only counts in progress can be edited")
	}

	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Count line not found")
}

// Complete locks the count and computes the variance for every line. Stock is
// not touched; the variances are surfaced for review before approval.
func (c *InventoryCount) Complete() error {
	if err := countWorkflow.Transition(c.Status, CountStatusCompleted); err != nil {
		return err
	}
	if len(c.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot complete a count without lines")
	}
	for _, line := range c.Lines {
		if !line.IsCounted() {
			return shared.NewDomainError("LINE_NOT_COUNTED", "All lines must have a counted quantity before completion")
		}
	}

	for i := range c.Lines {
		v := CalculateVariance(c.WarehouseID, c.Lines[i].ItemID,
			c.Lines[i].ExpectedQuantity, *c.Lines[i].CountedQuantity, c.Lines[i].UnitCost)
		c.Lines[i].QuantityVariance = v.QuantityVariance
		c.Lines[i].ValueVariance = v.ValueVariance
	}

	now := time.Now()
	c.Status = CountStatusCompleted
	c.CompletedAt = &now
	c.IncrementVersion()

	return nil
}

// Approve posts the completed count. The caller applies the adjustment intents
// to the ledger in the same transaction.
func (c *InventoryCount) Approve(approvedBy uuid.UUID) error {
	if err := countWorkflow.Transition(c.Status, CountStatusApproved); err != nil {
		return err
	}

	now := time.Now()
	c.Status = CountStatusApproved
	c.ApprovedAt = &now
	if approvedBy != uuid.Nil {
		c.ApprovedBy = &approvedBy
	}
	c.IncrementVersion()
	c.AddDomainEvent(NewCountApprovedEvent(c))

	return nil
}

// Cancel abandons an in-progress count without touching stock
func (c *InventoryCount) Cancel() error {
	if err := countWorkflow.Transition(c.Status, CountStatusCancelled); err != nil {
		return err
	}

	now := time.Now()
	c.Status = CountStatusCancelled
	c.CancelledAt = &now
	c.IncrementVersion()

	return nil
}

// Variances returns the per-line variances of a completed count
func (c *InventoryCount) Variances() []Variance {
	variances := make([]Variance, 0, len(c.Lines))
	for _, line := range c.Lines {
		counted := line.ExpectedQuantity
		if line.CountedQuantity != nil {
			counted = *line.CountedQuantity
		}
		variances = append(variances, CalculateVariance(c.WarehouseID, line.ItemID,
			line.ExpectedQuantity, counted, line.UnitCost))
	}
	return variances
}

// TotalVarianceValue returns the net value of all line variances
func (c *InventoryCount) TotalVarianceValue() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.ValueVariance)
	}
	return total
}

// AdjustmentIntents builds the count adjustment movements for approval, one
// per line with a non-zero variance. Reconciling to the counted quantity means
// applying exactly the variance as the delta.
func (c *InventoryCount) AdjustmentIntents(operatorID *uuid.UUID) []MovementIntent {
	intents := make([]MovementIntent, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.QuantityVariance.IsZero() {
			continue
		}
		v := Variance{
			WarehouseID:      c.WarehouseID,
			ItemID:           line.ItemID,
			QuantityVariance: line.QuantityVariance,
			UnitCost:         line.UnitCost,
		}
		if intent, ok := v.AdjustmentIntent(c.CountNumber, line.ID.String(), operatorID); ok {
			intents = append(intents, intent)
		}
	}
	return intents
}
