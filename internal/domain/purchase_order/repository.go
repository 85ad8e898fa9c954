package purchase_order

import (
	"context"

	"procura/internal/core/id"
	"procura/internal/core/types"
)

// Repository defines persistence operations for purchase orders and
// their line items.
type Repository interface {
	// Header operations
	Create(ctx context.Context, po *PurchaseOrder) error
	GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error)
	List(ctx context.Context, filter ListFilter) ([]*PurchaseOrder, error)

	// SetStatus updates the status and stamps updated_at.
	SetStatus(ctx context.Context, poID id.ID, status Status) error

	// Line item operations
	InsertItem(ctx context.Context, item *LineItem) error
	GetItem(ctx context.Context, itemID id.ID) (*LineItem, error)
	GetItems(ctx context.Context, poID id.ID) ([]LineItem, error)
	UpdateItem(ctx context.Context, item *LineItem) error
	DeleteItem(ctx context.Context, itemID id.ID) error

	// RecomputeTotal sets purchase_orders.total_amount to the sum of the
	// remaining line totals (0 when none remain) and returns the new total.
	// Must run on the same transaction as the write that triggered it.
	RecomputeTotal(ctx context.Context, poID id.ID) (types.Money, error)
}

// ListFilter narrows the purchase order listing.
type ListFilter struct {
	Status    *Status
	CreatedBy string
	Limit     int
}
