package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
)

// CountService drives the inventory count lifecycle. Expected quantities and
// unit costs are snapshotted from the ledger when lines are added; approval
// posts the adjustments and the document update in one transaction.
type CountService struct {
	scope          TransactionScope
	ledger         *LedgerService
	eventPublisher shared.EventPublisher
}

// NewCountService creates a new CountService
func NewCountService(scope TransactionScope, ledger *LedgerService) *CountService {
	return &CountService{
		scope:  scope,
		ledger: ledger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create starts a new inventory count for a warehouse. Item IDs passed in the
// request get a line each, with expected quantity and cost snapshotted from
// their current stock lines.
func (s *CountService) Create(ctx context.Context, req CreateCountRequest) (*inventory.InventoryCount, error) {
	var count *inventory.InventoryCount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number := req.CountNumber
		if number == "" {
			var err error
			number, err = repos.CountRepo().NextNumber(ctx)
			if err != nil {
				return err
			}
		}

		c, err := inventory.NewInventoryCount(number, req.WarehouseID, req.CreatedBy)
		if err != nil {
			return err
		}
		c.Notes = req.Notes

		for _, itemID := range req.ItemIDs {
			if err := s.addSnapshotLine(ctx, repos, c, itemID); err != nil {
				return err
			}
		}

		if err := repos.CountRepo().Save(ctx, c); err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// Get returns a count by id
func (s *CountService) Get(ctx context.Context, id uuid.UUID) (*inventory.InventoryCount, error) {
	var count *inventory.InventoryCount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		count, err = repos.CountRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// List returns counts matching the filter
func (s *CountService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*inventory.InventoryCount], error) {
	var page *shared.Paginated[*inventory.InventoryCount]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.CountRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// AddLine adds an item to an in-progress count, snapshotting its expectation
func (s *CountService) AddLine(ctx context.Context, id, itemID uuid.UUID) (*inventory.InventoryCount, error) {
	return s.update(ctx, id, func(repos TransactionalRepositories, c *inventory.InventoryCount) error {
		return s.addSnapshotLine(ctx, repos, c, itemID)
	})
}

// RecordCount enters the physically counted quantity for a line
func (s *CountService) RecordCount(ctx context.Context, id, lineID uuid.UUID, req RecordCountRequest) (*inventory.InventoryCount, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, c *inventory.InventoryCount) error {
		return c.RecordCount(lineID, req.CountedQuantity)
	})
}

// RemoveLine removes a line from an in-progress count
func (s *CountService) RemoveLine(ctx context.Context, id, lineID uuid.UUID) (*inventory.InventoryCount, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, c *inventory.InventoryCount) error {
		return c.RemoveLine(lineID)
	})
}

// Complete locks the count and computes variances. Stock is untouched; the
// variances are surfaced for review before approval.
func (s *CountService) Complete(ctx context.Context, id uuid.UUID) (*inventory.InventoryCount, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, c *inventory.InventoryCount) error {
		return c.Complete()
	})
}

// Cancel abandons an in-progress count
func (s *CountService) Cancel(ctx context.Context, id uuid.UUID) (*inventory.InventoryCount, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, c *inventory.InventoryCount) error {
		return c.Cancel()
	})
}

// Variances returns the variance preview of a count
func (s *CountService) Variances(ctx context.Context, id uuid.UUID) ([]inventory.Variance, inventory.VarianceSummary, error) {
	count, err := s.Get(ctx, id)
	if err != nil {
		return nil, inventory.VarianceSummary{}, err
	}
	variances := count.Variances()
	return variances, inventory.SummarizeVariances(variances), nil
}

// Approve approves a completed count and posts its adjustments, reconciling
// recorded stock to the physical count.
func (s *CountService) Approve(ctx context.Context, id uuid.UUID, approvedBy uuid.UUID) (*inventory.InventoryCount, error) {
	var count *inventory.InventoryCount
	var written []*inventory.StockLine

	preliminary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	operator := approvedBy
	intents := preliminary.AdjustmentIntents(&operator)
	unlock := s.ledger.LockLines(intents)
	defer unlock()

	err = s.ledger.RetryOnConflict(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			c, err := repos.CountRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if err := c.Approve(approvedBy); err != nil {
				return err
			}

			if adjustments := c.AdjustmentIntents(&operator); len(adjustments) > 0 {
				_, lines, err := s.ledger.ApplyIntents(ctx, repos, adjustments)
				if err != nil {
					return err
				}
				written = lines
			}

			if err := repos.CountRepo().Update(ctx, c); err != nil {
				return err
			}
			count = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.ledger.PublishCommitted(ctx, written)
	s.publishEvents(ctx, count)
	return count, nil
}

func (s *CountService) update(ctx context.Context, id uuid.UUID, fn func(TransactionalRepositories, *inventory.InventoryCount) error) (*inventory.InventoryCount, error) {
	var count *inventory.InventoryCount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CountRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, c); err != nil {
			return err
		}
		if err := repos.CountRepo().Update(ctx, c); err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// addSnapshotLine adds a count line with expectation and cost taken from the
// item's current stock line. Items that never moved count against zero.
func (s *CountService) addSnapshotLine(ctx context.Context, repos TransactionalRepositories, c *inventory.InventoryCount, itemID uuid.UUID) error {
	if _, err := repos.ItemRepo().FindByID(ctx, itemID); err != nil {
		return shared.NewDomainError(shared.ErrReferenceIntegrity.Code, "Referenced item does not exist")
	}

	key := inventory.LineKey{WarehouseID: c.WarehouseID, ItemID: itemID}
	line, err := repos.StockLineRepo().FindByKey(ctx, key)
	if err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != shared.ErrNotFound.Code {
			return err
		}
		line, err = inventory.NewStockLine(c.WarehouseID, itemID)
		if err != nil {
			return err
		}
	}
	return c.AddLine(itemID, line.QuantityOnHand, line.AverageCost)
}

func (s *CountService) publishEvents(ctx context.Context, c *inventory.InventoryCount) {
	if s.eventPublisher == nil || c == nil {
		return
	}
	if events := c.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		c.ClearDomainEvents()
	}
}
