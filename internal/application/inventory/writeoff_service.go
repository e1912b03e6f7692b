package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
)

// WriteoffService drives the writeoff document lifecycle. Approval posts the
// stock deductions and the document update in one transaction.
type WriteoffService struct {
	scope          TransactionScope
	ledger         *LedgerService
	eventPublisher shared.EventPublisher
}

// NewWriteoffService creates a new WriteoffService
func NewWriteoffService(scope TransactionScope, ledger *LedgerService) *WriteoffService {
	return &WriteoffService{
		scope:  scope,
		ledger: ledger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WriteoffService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new draft writeoff with the given lines
func (s *WriteoffService) Create(ctx context.Context, req CreateWriteoffRequest) (*inventory.Writeoff, error) {
	var writeoff *inventory.Writeoff
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number := req.WriteoffNumber
		if number == "" {
			var err error
			number, err = repos.WriteoffRepo().NextNumber(ctx)
			if err != nil {
				return err
			}
		}

		w, err := inventory.NewWriteoff(number, req.WarehouseID, req.Reason, req.CreatedBy)
		if err != nil {
			return err
		}
		w.Notes = req.Notes

		for _, line := range req.Lines {
			if err := s.checkItem(ctx, repos, line.ItemID); err != nil {
				return err
			}
			if err := w.AddLine(line.ItemID, line.Quantity, line.Notes); err != nil {
				return err
			}
		}

		if err := repos.WriteoffRepo().Save(ctx, w); err != nil {
			return err
		}
		writeoff = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return writeoff, nil
}

// Get returns a writeoff by id
func (s *WriteoffService) Get(ctx context.Context, id uuid.UUID) (*inventory.Writeoff, error) {
	var writeoff *inventory.Writeoff
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		writeoff, err = repos.WriteoffRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return writeoff, nil
}

// List returns writeoffs matching the filter
func (s *WriteoffService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*inventory.Writeoff], error) {
	var page *shared.Paginated[*inventory.Writeoff]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.WriteoffRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// AddLine adds a line to a draft writeoff
func (s *WriteoffService) AddLine(ctx context.Context, id uuid.UUID, req WriteoffLineRequest) (*inventory.Writeoff, error) {
	return s.update(ctx, id, func(repos TransactionalRepositories, w *inventory.Writeoff) error {
		if err := s.checkItem(ctx, repos, req.ItemID); err != nil {
			return err
		}
		return w.AddLine(req.ItemID, req.Quantity, req.Notes)
	})
}

// UpdateLine changes a draft writeoff line's quantity
func (s *WriteoffService) UpdateLine(ctx context.Context, id, lineID uuid.UUID, req WriteoffLineRequest) (*inventory.Writeoff, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, w *inventory.Writeoff) error {
		return w.UpdateLine(lineID, req.Quantity)
	})
}

// RemoveLine removes a line from a draft writeoff
func (s *WriteoffService) RemoveLine(ctx context.Context, id, lineID uuid.UUID) (*inventory.Writeoff, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, w *inventory.Writeoff) error {
		return w.RemoveLine(lineID)
	})
}

// Submit moves a draft writeoff to submitted
func (s *WriteoffService) Submit(ctx context.Context, id uuid.UUID) (*inventory.Writeoff, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, w *inventory.Writeoff) error {
		return w.Submit()
	})
}

// Reject rejects a submitted writeoff with a reason
func (s *WriteoffService) Reject(ctx context.Context, id uuid.UUID, reason string) (*inventory.Writeoff, error) {
	return s.update(ctx, id, func(_ TransactionalRepositories, w *inventory.Writeoff) error {
		return w.Reject(reason)
	})
}

// Delete removes a draft writeoff entirely
func (s *WriteoffService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		w, err := repos.WriteoffRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !w.IsDeletable() {
			return shared.NewDomainError("INVALID_TRANSITION", "Only draft writeoffs can be deleted")
		}
		return repos.WriteoffRepo().Delete(ctx, id)
	})
}

// Approve approves a submitted writeoff and posts its stock deductions. The
// document transition and the ledger batch commit together; if any line lacks
// stock, nothing is written.
func (s *WriteoffService) Approve(ctx context.Context, id uuid.UUID, approvedBy uuid.UUID) (*inventory.Writeoff, error) {
	var writeoff *inventory.Writeoff
	var written []*inventory.StockLine

	// The intents are known only after loading the document, so the line
	// locks are taken inside the retry loop based on a preliminary read.
	preliminary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	operator := approvedBy
	intents := preliminary.MovementIntents(&operator)
	unlock := s.ledger.LockLines(intents)
	defer unlock()

	err = s.ledger.RetryOnConflict(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			w, err := repos.WriteoffRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if err := w.Approve(approvedBy); err != nil {
				return err
			}

			movements, lines, err := s.ledger.ApplyIntents(ctx, repos, w.MovementIntents(&operator))
			if err != nil {
				return err
			}
			w.RecordCosts(movements)
			written = lines

			if err := repos.WriteoffRepo().Update(ctx, w); err != nil {
				return err
			}
			writeoff = w
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.ledger.PublishCommitted(ctx, written)
	s.publishEvents(ctx, writeoff)
	return writeoff, nil
}

func (s *WriteoffService) update(ctx context.Context, id uuid.UUID, fn func(TransactionalRepositories, *inventory.Writeoff) error) (*inventory.Writeoff, error) {
	var writeoff *inventory.Writeoff
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		w, err := repos.WriteoffRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, w); err != nil {
			return err
		}
		if err := repos.WriteoffRepo().Update(ctx, w); err != nil {
			return err
		}
		writeoff = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return writeoff, nil
}

// checkItem verifies the referenced item exists and is active
func (s *WriteoffService) checkItem(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID) error {
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

func (s *WriteoffService) publishEvents(ctx context.Context, w *inventory.Writeoff) {
	if s.eventPublisher == nil || w == nil {
		return
	}
	if events := w.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		w.ClearDomainEvents()
	}
}
