package purchase_order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/tx"
	"procura/internal/core/types"
	"procura/internal/domain/activity"
	"procura/internal/domain/requests"
	"procura/pkg/docnum"
	"procura/pkg/logger"
)

// MaxListLimit caps unbounded list queries.
const MaxListLimit = 100

// Service provides business operations for purchase orders.
type Service struct {
	repo     Repository
	requests requests.Repository
	txm      tx.Manager
	numbers  *docnum.Generator
	activity activity.Recorder
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	reqs requests.Repository,
	txm tx.Manager,
	numbers *docnum.Generator,
	rec activity.Recorder,
) *Service {
	return &Service{
		repo:     repo,
		requests: reqs,
		txm:      txm,
		numbers:  numbers,
		activity: rec,
	}
}

// ItemInput carries the accepted fields for a new line item.
// LineTotal is always computed here, never taken from the caller.
type ItemInput struct {
	AssetName     string
	AssetCategory string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     types.Money
	UOM           string
	DeliveryDate  *time.Time
}

// Create persists a new draft purchase order with optional line items and
// marks the originating asset request fulfilled, all in one transaction.
func (s *Service) Create(ctx context.Context, po *PurchaseOrder, items []ItemInput) error {
	req, err := s.requests.GetByID(ctx, po.RequestID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("asset request", po.RequestID.String())
		}
		return err
	}

	po.PONumber = s.numbers.Next(docnum.PrefixPurchaseOrder)
	if po.Department == "" {
		po.Department = req.Department
	}

	for _, in := range items {
		po.Items = append(po.Items, newLineItem(po.ID, in))
	}

	if err := po.Validate(ctx); err != nil {
		return err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		for i := range po.Items {
			if err := s.repo.InsertItem(ctx, &po.Items[i]); err != nil {
				return fmt.Errorf("insert line item: %w", err)
			}
		}
		total, err := s.repo.RecomputeTotal(ctx, po.ID)
		if err != nil {
			return fmt.Errorf("recompute total: %w", err)
		}
		po.TotalAmount = total

		if err := s.requests.SetStatus(ctx, po.RequestID, requests.StatusFulfilled); err != nil {
			return fmt.Errorf("mark request fulfilled: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, po.ID, "created", po.CreatedBy, po.CreatedByName, map[string]any{
		"poNumber":    po.PONumber,
		"items":       len(po.Items),
		"totalAmount": po.TotalAmount,
	})
	logger.Info(ctx, "purchase order created",
		"id", po.ID,
		"number", po.PONumber,
		"items", len(po.Items))
	return nil
}

// GetByID retrieves a purchase order with its line items.
// Items is an empty slice when none exist, never nil.
func (s *Service) GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	po, err := s.repo.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, poID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	po.Items = items
	if po.Items == nil {
		po.Items = make([]LineItem, 0)
	}
	return po, nil
}

// List retrieves purchase order summaries, newest first, without items.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*PurchaseOrder, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus performs a manual status transition after enum validation.
// Nothing is written when the value is not a member of the status enum.
func (s *Service) UpdateStatus(ctx context.Context, poID id.ID, status Status) error {
	if !status.Valid() {
		return apperror.NewValidation("invalid status value").
			WithDetail("field", "status").
			WithDetail("value", string(status))
	}

	po, err := s.repo.GetByID(ctx, poID)
	if err != nil {
		return err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetStatus(ctx, poID, status)
	})
	if err != nil {
		return err
	}

	s.record(ctx, poID, "status:"+string(status), "", "", map[string]any{
		"from": string(po.Status),
		"to":   string(status),
	})
	return nil
}

// AddItem creates a line item and recomputes the order total atomically.
func (s *Service) AddItem(ctx context.Context, poID id.ID, in ItemInput) (*LineItem, error) {
	if _, err := s.repo.GetByID(ctx, poID); err != nil {
		return nil, err
	}

	item := newLineItem(poID, in)
	if err := item.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertItem(ctx, &item); err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
		if _, err := s.repo.RecomputeTotal(ctx, poID); err != nil {
			return fmt.Errorf("recompute total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, poID, "item_added", "", "", itemDetails(&item))
	return &item, nil
}

// ItemUpdate carries optional changes to a line item.
type ItemUpdate struct {
	AssetName     *string
	AssetCategory *string
	Description   *string
	Quantity      *decimal.Decimal
	UnitPrice     *types.Money
	UOM           *string
	DeliveryDate  *time.Time
}

// UpdateItem applies a partial update. When quantity or unit price changes,
// the missing counterpart keeps its stored value and the line total is
// recomputed from the effective pair.
func (s *Service) UpdateItem(ctx context.Context, itemID id.ID, upd ItemUpdate) (*LineItem, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if upd.AssetName != nil {
		item.AssetName = *upd.AssetName
	}
	if upd.AssetCategory != nil {
		item.AssetCategory = *upd.AssetCategory
	}
	if upd.Description != nil {
		item.Description = *upd.Description
	}
	if upd.Quantity != nil {
		item.Quantity = *upd.Quantity
	}
	if upd.UnitPrice != nil {
		item.UnitPrice = *upd.UnitPrice
	}
	if upd.UOM != nil {
		item.UOM = *upd.UOM
	}
	if upd.DeliveryDate != nil {
		item.DeliveryDate = upd.DeliveryDate
	}

	item.Recalculate()
	item.UpdatedAt = time.Now().UTC()

	if err := item.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("update line item: %w", err)
		}
		if _, err := s.repo.RecomputeTotal(ctx, item.POID); err != nil {
			return fmt.Errorf("recompute total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, item.POID, "item_updated", "", "", itemDetails(item))
	return item, nil
}

// DeleteItem removes a line item and recomputes the order total from the
// remaining items (0 when none remain).
func (s *Service) DeleteItem(ctx context.Context, itemID id.ID) error {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteItem(ctx, itemID); err != nil {
			return fmt.Errorf("delete line item: %w", err)
		}
		if _, err := s.repo.RecomputeTotal(ctx, item.POID); err != nil {
			return fmt.Errorf("recompute total: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, item.POID, "item_deleted", "", "", itemDetails(item))
	return nil
}

func newLineItem(poID id.ID, in ItemInput) LineItem {
	uom := in.UOM
	if uom == "" {
		uom = DefaultUOM
	}
	now := time.Now().UTC()
	item := LineItem{
		ID:            id.New(),
		POID:          poID,
		AssetName:     in.AssetName,
		AssetCategory: in.AssetCategory,
		Description:   in.Description,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		UOM:           uom,
		DeliveryDate:  in.DeliveryDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	item.Recalculate()
	return item
}

func itemDetails(item *LineItem) map[string]any {
	return map[string]any{
		"itemId":    item.ID.String(),
		"assetName": item.AssetName,
		"quantity":  item.Quantity,
		"unitPrice": item.UnitPrice,
		"lineTotal": item.LineTotal,
	}
}

func (s *Service) record(ctx context.Context, entityID id.ID, action, actorID, actorName string, details map[string]any) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, activity.Entry{
		EntityType: "purchase_order",
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
