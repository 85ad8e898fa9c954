package goods_receipt

import (
	"context"

	"procura/internal/core/id"
	"procura/internal/core/types"
)

// Repository defines persistence operations for goods receipts and their
// line items. The total-recompute methods also serve the reconciliation
// orchestrator.
type Repository interface {
	// Header operations
	Create(ctx context.Context, gr *GoodsReceipt) error
	GetByID(ctx context.Context, grID id.ID) (*GoodsReceipt, error)

	// SetStatus updates the status and stamps updated_at.
	SetStatus(ctx context.Context, grID id.ID, status Status) error

	// Line item operations
	InsertItems(ctx context.Context, items []LineItem) error
	GetItem(ctx context.Context, itemID id.ID) (*LineItem, error)
	GetItems(ctx context.Context, grID id.ID) ([]LineItem, error)
	UpdateItem(ctx context.Context, item *LineItem) error

	// List operations
	ListByPO(ctx context.Context, poID id.ID) ([]Summary, error)
	ListRecent(ctx context.Context, limit int) ([]Summary, error)

	// RecomputeTotal sets the receipt's total_received_amount to the sum
	// of its item line totals (0 when none) and returns the new total.
	RecomputeTotal(ctx context.Context, grID id.ID) (types.Money, error)

	// SumReceivedByPO sums line totals across all items of all receipts
	// of the purchase order.
	SumReceivedByPO(ctx context.Context, poID id.ID) (types.Money, error)
}
