package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
)

// ItemService manages the item catalog
type ItemService struct {
	scope TransactionScope
}

// NewItemService creates a new ItemService
func NewItemService(scope TransactionScope) *ItemService {
	return &ItemService{scope: scope}
}

// Create creates a new catalog item
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*inventory.Item, error) {
	var item *inventory.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.ItemRepo().ExistsBySKU(ctx, req.SKU)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.ErrAlreadyExists.Code, "An item with this SKU already exists")
		}

		i, err := inventory.NewItem(req.SKU, req.Name, req.Type, req.Unit)
		if err != nil {
			return err
		}
		if req.CreatedBy != uuid.Nil {
			i.SetCreatedBy(req.CreatedBy)
		}
		if err := i.SetThresholds(req.MinQuantity, req.MaxQuantity, req.ReorderQuantity); err != nil {
			return err
		}

		if err := repos.ItemRepo().Save(ctx, i); err != nil {
			return err
		}
		item = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns an item by id
func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	var item *inventory.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = repos.ItemRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns items matching the filter
func (s *ItemService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*inventory.Item], error) {
	var page *shared.Paginated[*inventory.Item]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.ItemRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Update applies partial changes to an item
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*inventory.Item, error) {
	var item *inventory.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		i, err := repos.ItemRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			if err := i.Rename(*req.Name); err != nil {
				return err
			}
		}
		if req.MinQuantity != nil || req.MaxQuantity != nil || req.ReorderQuantity != nil {
			min, max, reorder := i.MinQuantity, i.MaxQuantity, i.ReorderQuantity
			if req.MinQuantity != nil {
				min = *req.MinQuantity
			}
			if req.MaxQuantity != nil {
				max = *req.MaxQuantity
			}
			if req.ReorderQuantity != nil {
				reorder = *req.ReorderQuantity
			}
			if err := i.SetThresholds(min, max, reorder); err != nil {
				return err
			}
		}
		if req.IsActive != nil {
			if *req.IsActive {
				i.Activate()
			} else {
				i.Deactivate()
			}
		}

		if err := repos.ItemRepo().Update(ctx, i); err != nil {
			return err
		}
		item = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
