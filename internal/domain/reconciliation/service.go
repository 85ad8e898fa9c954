// Package reconciliation coordinates derived state across a purchase order
// and its goods receipts: receipt totals, the order's received-vs-ordered
// status, and the three-way-match report.
//
// Recomputation is always from scratch and idempotent; invoking it twice
// with no intervening writes yields identical totals and status.
package reconciliation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"procura/internal/core/id"
	"procura/internal/core/tx"
	"procura/internal/core/types"
	"procura/internal/domain/purchase_order"
	"procura/pkg/logger"
)

// Match report statuses.
const (
	MatchStatusMatched = "matched"
	MatchStatusPartial = "partial"
	MatchStatusOpen    = "open"
	// MatchStatusIndeterminate is reported when the order total is zero
	// and the match percentage is therefore undefined.
	MatchStatusIndeterminate = "indeterminate"
)

// ThreeWayMatch is the derived PO-vs-GR reconciliation report.
// It is computed on demand and never persisted.
type ThreeWayMatch struct {
	POAmount       types.Money      `json:"poAmount"`
	ReceivedAmount types.Money      `json:"receivedAmount"`
	// MatchPercentage is nil when the report status is indeterminate.
	MatchPercentage *decimal.Decimal `json:"matchPercentage"`
	Status          string           `json:"status"`
}

// ReceiptTotals is the slice of goods-receipt persistence the orchestrator
// needs. Implemented by the goods receipt repository.
type ReceiptTotals interface {
	// RecomputeTotal sets the receipt's total_received_amount to the sum
	// of its item line totals and returns the new total.
	RecomputeTotal(ctx context.Context, grID id.ID) (types.Money, error)

	// SumReceivedByPO sums line totals across all items of all receipts
	// of the purchase order.
	SumReceivedByPO(ctx context.Context, poID id.ID) (types.Money, error)
}

// Orders is the slice of purchase-order persistence the orchestrator needs.
type Orders interface {
	GetByID(ctx context.Context, poID id.ID) (*purchase_order.PurchaseOrder, error)
	SetStatus(ctx context.Context, poID id.ID, status purchase_order.Status) error
}

// Service recomputes derived totals and statuses bottom-up.
type Service struct {
	receipts ReceiptTotals
	orders   Orders
	txm      tx.Manager
}

// NewService creates a reconciliation service.
func NewService(receipts ReceiptTotals, orders Orders, txm tx.Manager) *Service {
	return &Service{receipts: receipts, orders: orders, txm: txm}
}

// Reconcile recomputes the receipt total (when grID is non-nil), the
// purchase order's received total across all of its receipts, and the
// order status, persisting both inside one transaction. Nested calls
// reuse the caller's transaction, so receipt creation and reconciliation
// commit or roll back together.
func (s *Service) Reconcile(ctx context.Context, poID id.ID, grID *id.ID) (*ThreeWayMatch, error) {
	var report *ThreeWayMatch

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if grID != nil {
			if _, err := s.receipts.RecomputeTotal(ctx, *grID); err != nil {
				return fmt.Errorf("recompute receipt total: %w", err)
			}
		}

		received, err := s.receipts.SumReceivedByPO(ctx, poID)
		if err != nil {
			return fmt.Errorf("sum received for order: %w", err)
		}

		po, err := s.orders.GetByID(ctx, poID)
		if err != nil {
			return err
		}

		derived := purchase_order.DeriveStatus(po.Status, received, po.TotalAmount)
		if derived != po.Status {
			if err := s.orders.SetStatus(ctx, poID, derived); err != nil {
				return fmt.Errorf("set order status: %w", err)
			}
			logger.Info(ctx, "purchase order status derived",
				"po_id", poID,
				"from", po.Status,
				"to", derived)
		}

		report = BuildMatch(po.TotalAmount, received)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// BuildMatch computes the three-way-match report for the given amounts.
// A zero order total yields an indeterminate report instead of an
// arithmetic fault.
func BuildMatch(poAmount, receivedAmount types.Money) *ThreeWayMatch {
	pct, ok := types.ReceivedPercentage(receivedAmount, poAmount)
	if !ok {
		return &ThreeWayMatch{
			POAmount:       poAmount,
			ReceivedAmount: receivedAmount,
			Status:         MatchStatusIndeterminate,
		}
	}

	status := MatchStatusOpen
	hundred := decimal.NewFromInt(100)
	switch {
	case pct.GreaterThanOrEqual(hundred):
		status = MatchStatusMatched
	case pct.IsPositive():
		status = MatchStatusPartial
	}

	return &ThreeWayMatch{
		POAmount:        poAmount,
		ReceivedAmount:  receivedAmount,
		MatchPercentage: &pct,
		Status:          status,
	}
}
