package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/horyco/backend/internal/domain/trade"
)

// PurchaseOrderService drives the purchase order lifecycle. Receiving goods
// books the delivery on the order and posts purchase receipt movements in one
// transaction.
type PurchaseOrderService struct {
	scope          TransactionScope
	ledger         *invapp.LedgerService
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(scope TransactionScope, ledger *invapp.LedgerService) *PurchaseOrderService {
	return &PurchaseOrderService{
		scope:  scope,
		ledger: ledger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new draft purchase order with the given lines
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number := req.OrderNumber
		if number == "" {
			var err error
			number, err = repos.PurchaseOrderRepo().NextNumber(ctx)
			if err != nil {
				return err
			}
		}

		o, err := trade.NewPurchaseOrder(number, req.SupplierID, req.WarehouseID, req.CreatedBy)
		if err != nil {
			return err
		}
		o.Notes = req.Notes

		for _, line := range req.Lines {
			if err := s.checkItem(ctx, repos, line.ItemID); err != nil {
				return err
			}
			if err := o.AddLine(line.ItemID, line.Quantity, line.UnitCost); err != nil {
				return err
			}
		}

		if err := repos.PurchaseOrderRepo().Save(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns a purchase order by id
func (s *PurchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrderRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// List returns purchase orders matching the filter
func (s *PurchaseOrderService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*trade.PurchaseOrder], error) {
	var page *shared.Paginated[*trade.PurchaseOrder]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.PurchaseOrderRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// AddLine adds a line to a draft order
func (s *PurchaseOrderService) AddLine(ctx context.Context, id uuid.UUID, req PurchaseOrderLineRequest) (*trade.PurchaseOrder, error) {
	return s.update(ctx, id, func(repos TransactionalRepositories, o *trade.PurchaseOrder) error {
		if err := s.checkItem(ctx, repos, req.ItemID); err != nil {
			return err
		}
		return o.AddLine(req.ItemID, req.Quantity, req.UnitCost)
	})
}

// UpdateLine changes a draft order line
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, id, lineID uuid.UUID, req PurchaseOrderLineRequest) (*trade.PurchaseOrder, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, o *trade.PurchaseOrder) error {
		return o.UpdateLine(lineID, req.Quantity, req.UnitCost)
	})
}

// RemoveLine removes a line from a draft order
func (s *PurchaseOrderService) RemoveLine(ctx context.Context, id, lineID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, o *trade.PurchaseOrder) error {
		return o.RemoveLine(lineID)
	})
}

// Submit sends the draft order to the supplier
func (s *PurchaseOrderService) Submit(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, o *trade.PurchaseOrder) error {
		return o.Submit()
	})
}

// Close finishes a fully received order
func (s *PurchaseOrderService) Close(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, o *trade.PurchaseOrder) error {
		return o.Close()
	})
}

// Cancel abandons a draft order
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, o *trade.PurchaseOrder) error {
		return o.Cancel()
	})
}

// Delete removes a draft order entirely
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.PurchaseOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !o.IsEditable() {
			return shared.NewDomainError("INVALID_TRANSITION", "Only draft orders can be deleted")
		}
		return repos.PurchaseOrderRepo().Delete(ctx, id)
	})
}

// Receive books a delivery against the order and posts the purchase receipt
// movements. The order update and the ledger writes commit together; if any
// line would be over-received, nothing is booked.
func (s *PurchaseOrderService) Receive(ctx context.Context, id uuid.UUID, req ReceiveGoodsRequest) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder
	var written []*inventory.StockLine

	preliminary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.ledger.LockKeys(receiptKeys(preliminary, req))
	defer unlock()

	err = s.ledger.RetryOnConflict(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.PurchaseOrderRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}

			receipts := make([]trade.ReceiptLine, 0, len(req.Lines))
			for _, line := range req.Lines {
				receipts = append(receipts, trade.ReceiptLine{LineID: line.LineID, Quantity: line.Quantity})
			}

			intents, err := o.Receive(receipts, req.OperatorID)
			if err != nil {
				return err
			}
			_, lines, err := s.ledger.ApplyIntents(ctx, repos, intents)
			if err != nil {
				return err
			}
			written = lines

			if err := repos.PurchaseOrderRepo().Update(ctx, o); err != nil {
				return err
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.ledger.PublishCommitted(ctx, written)
	s.publishEvents(ctx, order)
	return order, nil
}

// receiptKeys resolves the stock line keys a receipt will touch so the locks
// can be taken before the transaction starts.
func receiptKeys(o *trade.PurchaseOrder, req ReceiveGoodsRequest) []inventory.LineKey {
	keys := make([]inventory.LineKey, 0, len(req.Lines))
	for _, r := range req.Lines {
		for _, line := range o.Lines {
			if line.ID == r.LineID {
				keys = append(keys, inventory.LineKey{WarehouseID: o.WarehouseID, ItemID: line.ItemID})
			}
		}
	}
	return keys
}

func (s *PurchaseOrderService) update(ctx context.Context, id uuid.UUID, fn func(TransactionalRepositories, *trade.PurchaseOrder) error) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.PurchaseOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, o); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().Update(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PurchaseOrderService) checkItem(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID) error {
	item, err := repos.ItemRepo().FindByID(ctx, itemID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			return shared.NewDomainError(shared.ErrReferenceIntegrity.Code, "Referenced item does not exist")
		}
		return err
	}
	if !item.IsActive {
		return shared.NewDomainError(shared.ErrReferenceIntegrity.Code, "Referenced item is inactive")
	}
	return nil
}

func (s *PurchaseOrderService) publishEvents(ctx context.Context, o *trade.PurchaseOrder) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	if events := o.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		o.ClearDomainEvents()
	}
}
