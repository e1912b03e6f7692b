package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByNumber(ctx context.Context, number string) (*PurchaseOrder, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*PurchaseOrder], error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (*shared.Paginated[*PurchaseOrder], error)
	Save(ctx context.Context, order *PurchaseOrder) error
	Update(ctx context.Context, order *PurchaseOrder) error
	// Delete removes a draft order; callers enforce the draft-only rule
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumber(ctx context.Context) (string, error)
}
