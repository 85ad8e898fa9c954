package goods_receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/tx"
	"procura/internal/domain/activity"
	"procura/internal/domain/purchase_order"
	"procura/internal/domain/reconciliation"
	"procura/pkg/docnum"
	"procura/pkg/logger"
)

// MaxListLimit caps unbounded list queries.
const MaxListLimit = 100

// Service provides business operations for goods receipts.
type Service struct {
	repo       Repository
	orders     purchase_order.Repository
	reconciler *reconciliation.Service
	txm        tx.Manager
	numbers    *docnum.Generator
	activity   activity.Recorder
}

// NewService creates a new goods receipt service.
func NewService(
	repo Repository,
	orders purchase_order.Repository,
	reconciler *reconciliation.Service,
	txm tx.Manager,
	numbers *docnum.Generator,
	rec activity.Recorder,
) *Service {
	return &Service{
		repo:       repo,
		orders:     orders,
		reconciler: reconciler,
		txm:        txm,
		numbers:    numbers,
		activity:   rec,
	}
}

// ItemInput is one received line as reported by the receiver.
// The referenced order line supplies quantity ordered and unit price;
// line totals are never taken from the caller.
type ItemInput struct {
	POItemID         id.ID
	QuantityReceived decimal.Decimal
	InspectionStatus string
	ConditionNotes   string
}

// Create persists a goods receipt with its lines and reconciles the
// parent purchase order, all in one transaction. The returned report is
// the three-way match evaluated after the receipt is applied.
func (s *Service) Create(ctx context.Context, gr *GoodsReceipt, items []ItemInput) (*reconciliation.ThreeWayMatch, error) {
	po, err := s.orders.GetByID(ctx, gr.POID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase order", gr.POID.String())
		}
		return nil, err
	}

	orderItems, err := s.orders.GetItems(ctx, po.ID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	byID := make(map[id.ID]*purchase_order.LineItem, len(orderItems))
	for i := range orderItems {
		byID[orderItems[i].ID] = &orderItems[i]
	}

	gr.GRNumber = s.numbers.Next(docnum.PrefixGoodsReceipt)

	for i, in := range items {
		poItem, ok := byID[in.POItemID]
		if !ok {
			return nil, apperror.NewNotFound("purchase order line item", in.POItemID.String()).
				WithDetail("lineNo", i+1)
		}
		gr.AddLine(poItem.ID, poItem.AssetName, poItem.Quantity, in.QuantityReceived,
			poItem.UnitPrice, in.InspectionStatus, in.ConditionNotes)
	}

	if err := gr.Validate(ctx); err != nil {
		return nil, err
	}

	var report *reconciliation.ThreeWayMatch
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, gr); err != nil {
			return fmt.Errorf("create goods receipt: %w", err)
		}
		if err := s.repo.InsertItems(ctx, gr.Items); err != nil {
			return fmt.Errorf("insert receipt lines: %w", err)
		}

		// The receipt total persisted here equals the in-memory sum from
		// AddLine; reconciliation re-derives it from the database and the
		// match report reflects all receipts of the order.
		report, err = s.reconciler.Reconcile(ctx, gr.POID, &gr.ID)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, gr.ID, "created", gr.ReceivedBy, gr.ReceivedByName, map[string]any{
		"grNumber":    gr.GRNumber,
		"poId":        gr.POID.String(),
		"matchStatus": report.Status,
	})
	logger.Info(ctx, "goods receipt created",
		"id", gr.ID,
		"number", gr.GRNumber,
		"po_id", gr.POID,
		"match_status", report.Status)
	return report, nil
}

// GetByID retrieves a receipt with its lines and denormalized order fields.
func (s *Service) GetByID(ctx context.Context, grID id.ID) (*GoodsReceipt, error) {
	gr, err := s.repo.GetByID(ctx, grID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, grID)
	if err != nil {
		return nil, fmt.Errorf("get receipt lines: %w", err)
	}
	gr.Items = items
	if gr.Items == nil {
		gr.Items = make([]LineItem, 0)
	}
	return gr, nil
}

// ListByPO retrieves receipt summaries for one purchase order, newest first.
func (s *Service) ListByPO(ctx context.Context, poID id.ID) ([]Summary, error) {
	return s.repo.ListByPO(ctx, poID)
}

// ListRecent retrieves the latest receipts across all purchase orders.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

// UpdateStatus performs a manual status transition after enum validation.
func (s *Service) UpdateStatus(ctx context.Context, grID id.ID, status Status) error {
	if !status.Valid() {
		return apperror.NewValidation("invalid status value").
			WithDetail("field", "status").
			WithDetail("value", string(status))
	}

	gr, err := s.repo.GetByID(ctx, grID)
	if err != nil {
		return err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetStatus(ctx, grID, status)
	})
	if err != nil {
		return err
	}

	s.record(ctx, grID, "status:"+string(status), "", "", map[string]any{
		"from": string(gr.Status),
		"to":   string(status),
	})
	return nil
}

// ItemUpdate carries optional changes to a received line.
type ItemUpdate struct {
	QuantityReceived *decimal.Decimal
	InspectionStatus *string
	ConditionNotes   *string
}

// UpdateItem applies a partial update to a received line. A change to the
// received quantity recomputes accepted, rejected and the line total
// together, then re-derives the receipt total and order status from
// scratch in the same transaction.
func (s *Service) UpdateItem(ctx context.Context, itemID id.ID, upd ItemUpdate) (*LineItem, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if upd.QuantityReceived != nil {
		if upd.QuantityReceived.IsNegative() {
			return nil, apperror.NewValidation("received quantity must not be negative").
				WithDetail("field", "quantityReceived")
		}
		item.ApplyReceived(*upd.QuantityReceived)
	}
	if upd.InspectionStatus != nil {
		item.InspectionStatus = *upd.InspectionStatus
	}
	if upd.ConditionNotes != nil {
		item.ConditionNotes = *upd.ConditionNotes
	}
	item.UpdatedAt = time.Now().UTC()

	gr, err := s.repo.GetByID(ctx, item.GRID)
	if err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("update receipt line: %w", err)
		}
		if _, err := s.reconciler.Reconcile(ctx, gr.POID, &gr.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, gr.ID, "item_updated", "", "", map[string]any{
		"itemId":           item.ID.String(),
		"quantityReceived": item.QuantityReceived,
		"quantityAccepted": item.QuantityAccepted,
		"quantityRejected": item.QuantityRejected,
		"lineTotal":        item.LineTotal,
	})
	return item, nil
}

func (s *Service) record(ctx context.Context, entityID id.ID, action, actorID, actorName string, details map[string]any) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, activity.Entry{
		EntityType: "goods_receipt",
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		ActorName:  actorName,
		Details:    details,
	})
	if err != nil {
		logger.Warn(ctx, "activity record failed", "error", err)
	}
}
