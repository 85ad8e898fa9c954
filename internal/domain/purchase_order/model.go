// Package purchase_order provides the PurchaseOrder aggregate: the order
// header, its line items, and the status derivation used by goods-receipt
// reconciliation.
package purchase_order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/types"
)

// Status is the purchase order lifecycle state.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusGenerated    Status = "generated"
	StatusSent         Status = "sent"
	StatusAcknowledged Status = "acknowledged"
	StatusPartial      Status = "partial"
	StatusReceived     Status = "received"
	StatusCancelled    Status = "cancelled"
)

// Valid reports whether s is a member of the status enum.
// Ordering between states is intentionally not enforced here; the manual
// update operation accepts any member. A transition table is the extension
// point if stricter rules are ever needed.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerated, StatusSent, StatusAcknowledged,
		StatusPartial, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder is a commitment to buy line items from a supplier,
// derived from an approved asset request.
type PurchaseOrder struct {
	ID       id.ID  `db:"id" json:"id"`
	PONumber string `db:"po_number" json:"poNumber"`

	RequestID id.ID `db:"request_id" json:"requestId"`

	SupplierName  string `db:"supplier_name" json:"supplierName"`
	SupplierEmail string `db:"supplier_email" json:"supplierEmail,omitempty"`

	CreatedBy     string `db:"created_by" json:"createdBy"`
	CreatedByName string `db:"created_by_name" json:"createdByName"`
	Department    string `db:"department" json:"department,omitempty"`

	ExpectedDelivery *time.Time `db:"expected_delivery" json:"expectedDelivery,omitempty"`

	// TotalAmount is derived from line items; zero while no items exist.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	PaymentTerms    string `db:"payment_terms" json:"paymentTerms,omitempty"`
	DeliveryAddress string `db:"delivery_address" json:"deliveryAddress,omitempty"`
	Notes           string `db:"notes" json:"notes,omitempty"`

	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Table part: ordered line items. Never nil on reads.
	Items []LineItem `db:"-" json:"items"`
}

// LineItem is one ordered position of a purchase order.
type LineItem struct {
	ID   id.ID `db:"id" json:"id"`
	POID id.ID `db:"po_id" json:"poId"`

	AssetName     string `db:"asset_name" json:"assetName"`
	AssetCategory string `db:"asset_category" json:"assetCategory,omitempty"`
	Description   string `db:"description" json:"description,omitempty"`

	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice types.Money     `db:"unit_price" json:"unitPrice"`

	// LineTotal = Quantity * UnitPrice, recomputed server-side on every write.
	LineTotal types.Money `db:"line_total" json:"lineTotal"`

	UOM          string     `db:"uom" json:"uom"`
	DeliveryDate *time.Time `db:"delivery_date" json:"deliveryDate,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultUOM is used when the caller omits the unit of measure.
const DefaultUOM = "Unit"

// NewPurchaseOrder creates a draft purchase order for an asset request.
func NewPurchaseOrder(requestID id.ID, supplierName, createdBy, createdByName string) *PurchaseOrder {
	now := time.Now().UTC()
	return &PurchaseOrder{
		ID:            id.New(),
		RequestID:     requestID,
		SupplierName:  supplierName,
		CreatedBy:     createdBy,
		CreatedByName: createdByName,
		TotalAmount:   types.Zero(),
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]LineItem, 0),
	}
}

// Validate checks header invariants.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if id.IsNil(p.RequestID) {
		return apperror.NewValidation("asset request reference is required").
			WithDetail("field", "requestId")
	}
	if p.SupplierName == "" {
		return apperror.NewValidation("supplier name is required").
			WithDetail("field", "supplierName")
	}
	if p.CreatedBy == "" {
		return apperror.NewValidation("creator is required").
			WithDetail("field", "createdBy")
	}
	for i := range p.Items {
		if err := p.Items[i].Validate(ctx); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("lineNo", i+1)
			}
			return err
		}
	}
	return nil
}

// Validate checks line item invariants.
func (l *LineItem) Validate(ctx context.Context) error {
	if l.AssetName == "" {
		return apperror.NewValidation("asset name is required").
			WithDetail("field", "assetName")
	}
	if l.Quantity.IsNegative() {
		return apperror.NewValidation("quantity must not be negative").
			WithDetail("field", "quantity")
	}
	if l.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}
	return nil
}

// Recalculate recomputes the line total from quantity and unit price.
func (l *LineItem) Recalculate() {
	l.LineTotal = types.LineTotal(l.Quantity, l.UnitPrice)
}

// DeriveStatus applies the reconciliation status rule: received at 100% or
// more, partial when anything has been received, otherwise the current
// status is kept. The same fallback applies on every reconciliation path.
func DeriveStatus(current Status, receivedAmount, totalAmount types.Money) Status {
	pct, ok := types.ReceivedPercentage(receivedAmount, totalAmount)
	if !ok {
		return current
	}
	hundred := decimal.NewFromInt(100)
	switch {
	case pct.GreaterThanOrEqual(hundred):
		return StatusReceived
	case pct.IsPositive():
		return StatusPartial
	default:
		return current
	}
}
