package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// WriteoffStatus represents the status of a writeoff document
type WriteoffStatus string

const (
	WriteoffStatusDraft     WriteoffStatus = "DRAFT"
	WriteoffStatusSubmitted WriteoffStatus = "SUBMITTED"
	WriteoffStatusApproved  WriteoffStatus = "APPROVED"
	WriteoffStatusRejected  WriteoffStatus = "REJECTED"
)

var writeoffWorkflow = shared.NewWorkflow("Writeoff", map[WriteoffStatus][]WriteoffStatus{
	WriteoffStatusDraft:     {WriteoffStatusSubmitted},
	WriteoffStatusSubmitted: {WriteoffStatusApproved, WriteoffStatusRejected},
})

// WriteoffReason classifies why stock is written off
type WriteoffReason string

const (
	WriteoffReasonSpoilage WriteoffReason = "SPOILAGE"
	WriteoffReasonBreakage WriteoffReason = "BREAKAGE"
	WriteoffReasonExpiry   WriteoffReason = "EXPIRY"
	WriteoffReasonLoss     WriteoffReason = "LOSS"
	WriteoffReasonOther    WriteoffReason = "OTHER"
)

// IsValid returns true if the writeoff reason is valid
func (r WriteoffReason) IsValid() bool {
	switch r {
	case WriteoffReasonSpoilage, WriteoffReasonBreakage, WriteoffReasonExpiry, WriteoffReasonLoss, WriteoffReasonOther:
		return true
	}
	return false
}

// Writeoff is a document that removes stock from a warehouse once approved.
// Lines can only be edited while the document is a draft; approval posts one
// negative movement per line atomically.
type Writeoff struct {
	shared.AuditedAggregateRoot
	WriteoffNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status          WriteoffStatus  `gorm:"type:varchar(20);not null;index"`
	Reason          WriteoffReason  `gorm:"type:varchar(20);not null"`
	Notes           string          `gorm:"type:text"`
	Lines           []WriteoffLine  `gorm:"foreignKey:WriteoffID;constraint:OnDelete:CASCADE"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // valued at approval time
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectionReason string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Writeoff) TableName() string {
	return "writeoffs"
}

// WriteoffLine is one item being written off
type WriteoffLine struct {
	shared.BaseEntity
	WriteoffID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // average cost when approved
	LineCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes      string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (WriteoffLine) TableName() string {
	return "writeoff_lines"
}

// NewWriteoff creates a new draft writeoff document
func NewWriteoff(writeoffNumber string, warehouseID uuid.UUID, reason WriteoffReason, createdBy uuid.UUID) (*Writeoff, error) {
	writeoffNumber = strings.TrimSpace(writeoffNumber)
	if writeoffNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Writeoff number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown writeoff reason")
	}

	return &Writeoff{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		WriteoffNumber:       writeoffNumber,
		WarehouseID:          warehouseID,
		Status:               WriteoffStatusDraft,
		Reason:               reason,
		Lines:                make([]WriteoffLine, 0),
		TotalCost:            decimal.Zero,
	}, nil
}

// IsEditable returns true while line edits are still allowed
func (w *Writeoff) IsEditable() bool {
	return w.Status == WriteoffStatusDraft
}

// IsDeletable returns true while the document may be removed entirely
func (w *Writeoff) IsDeletable() bool {
	return w.Status == WriteoffStatusDraft
}

// AddLine adds an item to the draft
func (w *Writeoff) AddLine(itemID uuid.UUID, quantity decimal.Decimal, notes string) error {
	if !w.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft writeoffs can be edited")
	}
	if itemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Writeoff quantity must be positive")
	}
	for _, line := range w.Lines {
		if line.ItemID == itemID {
			return shared.NewDomainError("DUPLICATE_LINE", "Item already present on this writeoff")
		}
	}

	w.Lines = append(w.Lines, WriteoffLine{
		BaseEntity: shared.NewBaseEntity(),
		WriteoffID: w.ID,
		ItemID:     itemID,
		Quantity:   quantity,
		Notes:      notes,
	})
	w.IncrementVersion()

	return nil
}

// UpdateLine changes the quantity of an existing line on the draft
func (w *Writeoff) UpdateLine(lineID uuid.UUID, quantity decimal.Decimal) error {
	if !w.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft writeoffs can be edited")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Writeoff quantity must be positive")
	}

	for i := range w.Lines {
		if w.Lines[i].ID == lineID {
			w.Lines[i].Quantity = quantity
			w.Lines[i].UpdatedAt = time.Now()
			w.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Writeoff line not found")
}

// RemoveLine removes a line from the draft
func (w *Writeoff) RemoveLine(lineID uuid.UUID) error {
	if !w.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft writeoffs can be edited")
	}

	for i := range w.Lines {
		if w.Lines[i].ID == lineID {
			w.Lines = append(w.Lines[:i], w.Lines[i+1:]...)
			w.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Writeoff line not found")
}

// Submit moves the draft to submitted, locking its lines
func (w *Writeoff) Submit() error {
	if err := writeoffWorkflow.Transition(w.Status, WriteoffStatusSubmitted); err != nil {
		return err
	}
	if len(w.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot submit a writeoff without lines")
	}

	now := time.Now()
	w.Status = WriteoffStatusSubmitted
	w.SubmittedAt = &now
	w.IncrementVersion()

	return nil
}

// Approve marks the submitted writeoff approved. The caller posts the ledger
// movements from MovementIntents in the same transaction and then records the
// resulting costs with RecordCosts.
func (w *Writeoff) Approve(approvedBy uuid.UUID) error {
	if err := writeoffWorkflow.Transition(w.Status, WriteoffStatusApproved); err != nil {
		return err
	}

	now := time.Now()
	w.Status = WriteoffStatusApproved
	w.ApprovedAt = &now
	if approvedBy != uuid.Nil {
		w.ApprovedBy = &approvedBy
	}
	w.IncrementVersion()
	w.AddDomainEvent(NewWriteoffApprovedEvent(w))

	return nil
}

// Reject marks the submitted writeoff rejected with a reason. Terminal, no
// stock is affected.
func (w *Writeoff) Reject(reason string) error {
	if err := writeoffWorkflow.Transition(w.Status, WriteoffStatusRejected); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason cannot be empty")
	}

	now := time.Now()
	w.Status = WriteoffStatusRejected
	w.RejectedAt = &now
	w.RejectionReason = reason
	w.IncrementVersion()

	return nil
}

// MovementIntents builds the negative stock movements this writeoff posts on
// approval, one per line. Lines carry no unit cost; the ledger values them at
// the current average.
func (w *Writeoff) MovementIntents(operatorID *uuid.UUID) []MovementIntent {
	intents := make([]MovementIntent, 0, len(w.Lines))
	for _, line := range w.Lines {
		intents = append(intents, MovementIntent{
			WarehouseID:   w.WarehouseID,
			ItemID:        line.ItemID,
			QuantityDelta: line.Quantity.Neg(),
			Type:          MovementTypeWriteoff,
			ReferenceType: ReferenceTypeWriteoff,
			ReferenceID:   w.WriteoffNumber,
			ReferenceLine: line.ID.String(),
			Reason:        fmt.Sprintf("%s: %s", w.Reason, line.Notes),
			OperatorID:    operatorID,
		})
	}
	return intents
}

// RecordCosts copies the unit costs of the posted movements back onto the
// lines and totals them, so the document shows what the writeoff was worth at
// approval time.
func (w *Writeoff) RecordCosts(movements []*Movement) {
	byLine := make(map[string]*Movement, len(movements))
	for _, m := range movements {
		byLine[m.ReferenceLine] = m
	}

	total := decimal.Zero
	for i := range w.Lines {
		if m, ok := byLine[w.Lines[i].ID.String()]; ok {
			w.Lines[i].UnitCost = m.UnitCostAtMovement
			w.Lines[i].LineCost = m.TotalCost().Round(CostScale)
			total = total.Add(w.Lines[i].LineCost)
		}
	}
	w.TotalCost = total
}
