package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
)

// conflictRetries is how many times a ledger write is re-driven after an
// optimistic lock conflict before the error is surfaced to the caller.
// Line-level guards make re-driving the same intent safe.
const conflictRetries = 3

// LedgerService is the single entry point for stock mutations. Every write
// loads the stock line under a per-line lock, applies the movement through the
// domain, and persists the line update together with the journal append in one
// transaction.
type LedgerService struct {
	scope          TransactionScope
	locks          *KeyedMutex
	policy         inventory.NegativeStockPolicy
	eventPublisher shared.EventPublisher
	summaryCache   StockSummaryCache
	summaryTTL     time.Duration
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope, policy inventory.NegativeStockPolicy) *LedgerService {
	return &LedgerService{
		scope:  scope,
		locks:  NewKeyedMutex(),
		policy: policy,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Policy returns the negative stock policy the ledger enforces
func (s *LedgerService) Policy() inventory.NegativeStockPolicy {
	return s.policy
}

// GetLine returns the stock line for a warehouse-item combination. A line
// that has never moved is returned zero-valued rather than as an error.
func (s *LedgerService) GetLine(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockLine, error) {
	var line *inventory.StockLine
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.StockLineRepo().FindByKey(ctx, inventory.LineKey{WarehouseID: warehouseID, ItemID: itemID})
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
				line, err = inventory.NewStockLine(warehouseID, itemID)
				return err
			}
			return err
		}
		line = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// History returns the movement journal for a line, ordered by occurrence time
// ascending.
func (s *LedgerService) History(ctx context.Context, filter inventory.MovementHistoryFilter) (*shared.Paginated[*inventory.Movement], error) {
	var page *shared.Paginated[*inventory.Movement]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.MovementRepo().History(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ApplyMovement applies a single movement intent and returns the committed
// movement. Conflict errors from concurrent writers are retried with the
// intent re-submitted verbatim.
func (s *LedgerService) ApplyMovement(ctx context.Context, intent inventory.MovementIntent) (*inventory.Movement, error) {
	movements, err := s.ApplyBatch(ctx, []inventory.MovementIntent{intent})
	if err != nil {
		return nil, err
	}
	return movements[0], nil
}

// ApplyBatch applies movement intents atomically: either every intent commits
// or none do. Per-line locks are taken for all touched lines up front, in
// deterministic order.
func (s *LedgerService) ApplyBatch(ctx context.Context, intents []inventory.MovementIntent) ([]*inventory.Movement, error) {
	if len(intents) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement batch cannot be empty")
	}
	for _, intent := range intents {
		if err := intent.Validate(); err != nil {
			return nil, err
		}
	}

	keys := make([]inventory.LineKey, 0, len(intents))
	for _, intent := range intents {
		keys = append(keys, intent.Key())
	}
	unlock := s.locks.Lock(keys...)
	defer unlock()

	var movements []*inventory.Movement
	var lines []*inventory.StockLine
	err := s.retryOnConflict(func() error {
		movements = nil
		lines = nil
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			movements, lines, err = s.applyIntents(ctx, repos, intents)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.PublishCommitted(ctx, lines)
	return movements, nil
}

// ApplyIntents posts movement intents using the caller's transactional
// repositories, so a document update and its ledger writes share one
// transaction. The caller must hold the line locks (see LockLines), retry the
// whole transaction on CONCURRENCY_CONFLICT, and pass the returned lines to
// PublishCommitted once its scope has committed.
func (s *LedgerService) ApplyIntents(ctx context.Context, repos LedgerRepositories, intents []inventory.MovementIntent) ([]*inventory.Movement, []*inventory.StockLine, error) {
	return s.applyIntents(ctx, repos, intents)
}

// PublishCommitted fires the post-commit side effects for committed line
// updates: domain event publication and summary cache invalidation. It must
// not be called while the writing transaction is still open.
func (s *LedgerService) PublishCommitted(ctx context.Context, lines []*inventory.StockLine) {
	s.publishEvents(ctx, lines)
	s.invalidateSummaries(ctx, lines)
}

// LockLines takes the per-line locks for the given intents and returns the
// unlock function. Used by document services posting through ApplyIntents.
func (s *LedgerService) LockLines(intents []inventory.MovementIntent) func() {
	keys := make([]inventory.LineKey, 0, len(intents))
	for _, intent := range intents {
		keys = append(keys, intent.Key())
	}
	return s.locks.Lock(keys...)
}

// LockKeys takes the per-line locks for the given keys directly
func (s *LedgerService) LockKeys(keys []inventory.LineKey) func() {
	return s.locks.Lock(keys...)
}

// RetryOnConflict re-runs fn when it fails with CONCURRENCY_CONFLICT. Exposed
// for document services whose transactions include ledger writes.
func (s *LedgerService) RetryOnConflict(fn func() error) error {
	return s.retryOnConflict(fn)
}

func (s *LedgerService) retryOnConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != shared.ErrConcurrencyConflict.Code {
			return err
		}
	}
	return err
}

// applyIntents is the transactional core: load or create each line, apply the
// intents in order, save lines with version checks and append the movements.
func (s *LedgerService) applyIntents(ctx context.Context, repos LedgerRepositories, intents []inventory.MovementIntent) ([]*inventory.Movement, []*inventory.StockLine, error) {
	lineRepo := repos.StockLineRepo()

	// One line per key even when a batch carries several intents for it.
	lineByKey := make(map[inventory.LineKey]*inventory.StockLine)
	freshLines := make(map[inventory.LineKey]bool)
	baseVersions := make(map[inventory.LineKey]int)

	for _, intent := range intents {
		key := intent.Key()
		if _, loaded := lineByKey[key]; loaded {
			continue
		}
		line, err := lineRepo.FindByKey(ctx, key)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
				line, err = inventory.NewStockLine(key.WarehouseID, key.ItemID)
				if err != nil {
					return nil, nil, err
				}
				freshLines[key] = true
			} else {
				return nil, nil, err
			}
		}
		lineByKey[key] = line
		baseVersions[key] = line.GetVersion()
	}

	movements := make([]*inventory.Movement, 0, len(intents))
	for _, intent := range intents {
		movement, err := lineByKey[intent.Key()].Apply(intent, s.policy)
		if err != nil {
			return nil, nil, err
		}
		movements = append(movements, movement)
	}

	lines := make([]*inventory.StockLine, 0, len(lineByKey))
	for key, line := range lineByKey {
		if freshLines[key] {
			if err := lineRepo.Save(ctx, line); err != nil {
				return nil, nil, err
			}
		} else {
			if err := lineRepo.SaveWithLock(ctx, line, baseVersions[key]); err != nil {
				return nil, nil, err
			}
		}
		lines = append(lines, line)
	}

	if err := repos.MovementRepo().AppendBatch(ctx, movements); err != nil {
		return nil, nil, err
	}
	return movements, lines, nil
}

func (s *LedgerService) publishEvents(ctx context.Context, lines []*inventory.StockLine) {
	if s.eventPublisher == nil {
		return
	}
	for _, line := range lines {
		events := line.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		// Event delivery is best effort; the ledger write already committed.
		_ = s.eventPublisher.Publish(ctx, events...)
		line.ClearDomainEvents()
	}
}

// AuditLine checks the ledger-sum invariant for a line: the sum of all
// movement deltas must equal the current quantity on hand.
func (s *LedgerService) AuditLine(ctx context.Context, warehouseID, itemID uuid.UUID) (bool, error) {
	key := inventory.LineKey{WarehouseID: warehouseID, ItemID: itemID}
	ok := false
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, err := repos.StockLineRepo().FindByKey(ctx, key)
		if err != nil {
			return err
		}
		sum, err := repos.MovementRepo().SumDeltas(ctx, key)
		if err != nil {
			return err
		}
		ok = sum.Equal(line.QuantityOnHand)
		return nil
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}
