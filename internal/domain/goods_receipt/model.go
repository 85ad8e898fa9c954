// Package goods_receipt provides the GoodsReceipt aggregate: a record of
// goods physically received against a purchase order, with a per-line
// accepted/rejected breakdown.
package goods_receipt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/types"
)

// Status is the goods receipt lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPartial  Status = "partial"
	StatusComplete Status = "complete"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusComplete, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// DefaultInspectionStatus is applied when the receiver reports nothing.
const DefaultInspectionStatus = "pass"

// GoodsReceipt records received goods against a purchase order.
type GoodsReceipt struct {
	ID       id.ID  `db:"id" json:"id"`
	GRNumber string `db:"gr_number" json:"grNumber"`

	POID id.ID `db:"po_id" json:"poId"`

	ReceivedBy     string `db:"received_by" json:"receivedBy"`
	ReceivedByName string `db:"received_by_name" json:"receivedByName"`

	Status Status `db:"status" json:"status"`

	// TotalReceivedAmount is derived from item line totals.
	TotalReceivedAmount types.Money `db:"total_received_amount" json:"totalReceivedAmount"`

	Notes       string    `db:"notes" json:"notes,omitempty"`
	ReceiptDate time.Time `db:"receipt_date" json:"receiptDate"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Denormalized order fields, populated on reads only.
	PONumber      string      `db:"po_number" json:"poNumber,omitempty"`
	SupplierName  string      `db:"supplier_name" json:"supplierName,omitempty"`
	POTotalAmount types.Money `db:"po_total_amount" json:"poTotalAmount,omitempty"`

	// Table part: received lines. Never nil on reads.
	Items []LineItem `db:"-" json:"items"`
}

// LineItem is one received position, snapshotted against the ordered line.
type LineItem struct {
	ID   id.ID `db:"id" json:"id"`
	GRID id.ID `db:"gr_id" json:"grId"`

	// POItemID references the originating purchase order line.
	POItemID id.ID `db:"po_item_id" json:"poItemId"`

	AssetName string `db:"asset_name" json:"assetName"`

	// QuantityOrdered is copied from the order line at receipt time.
	QuantityOrdered  decimal.Decimal `db:"quantity_ordered" json:"quantityOrdered"`
	QuantityReceived decimal.Decimal `db:"quantity_received" json:"quantityReceived"`
	QuantityAccepted decimal.Decimal `db:"quantity_accepted" json:"quantityAccepted"`

	// QuantityRejected = ordered - accepted, recomputed together with
	// accepted on every write. Negative values signal over-receipt.
	QuantityRejected decimal.Decimal `db:"quantity_rejected" json:"quantityRejected"`

	// UnitPrice is copied from the order line at receipt time.
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// LineTotal = QuantityAccepted * UnitPrice.
	LineTotal types.Money `db:"line_total" json:"lineTotal"`

	InspectionStatus string `db:"inspection_status" json:"inspectionStatus"`
	ConditionNotes   string `db:"condition_notes" json:"conditionNotes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Summary is a listing row without nested items.
type Summary struct {
	ID                  id.ID       `db:"id" json:"id"`
	GRNumber            string      `db:"gr_number" json:"grNumber"`
	POID                id.ID       `db:"po_id" json:"poId"`
	Status              Status      `db:"status" json:"status"`
	ReceiptDate         time.Time   `db:"receipt_date" json:"receiptDate"`
	TotalReceivedAmount types.Money `db:"total_received_amount" json:"totalReceivedAmount"`
	ItemCount           int         `db:"item_count" json:"itemCount"`
	PONumber            string      `db:"po_number" json:"poNumber,omitempty"`
	SupplierName        string      `db:"supplier_name" json:"supplierName,omitempty"`
}

// NewGoodsReceipt creates a pending goods receipt for a purchase order.
func NewGoodsReceipt(poID id.ID, receivedBy, receivedByName string) *GoodsReceipt {
	now := time.Now().UTC()
	return &GoodsReceipt{
		ID:                  id.New(),
		POID:                poID,
		ReceivedBy:          receivedBy,
		ReceivedByName:      receivedByName,
		Status:              StatusPending,
		TotalReceivedAmount: types.Zero(),
		ReceiptDate:         now,
		CreatedAt:           now,
		UpdatedAt:           now,
		Items:               make([]LineItem, 0),
	}
}

// AddLine appends a received line, applying the acceptance policy and
// recomputing the receipt total.
func (g *GoodsReceipt) AddLine(poItemID id.ID, assetName string, ordered, received decimal.Decimal, unitPrice types.Money, inspection, notes string) {
	if inspection == "" {
		inspection = DefaultInspectionStatus
	}
	now := time.Now().UTC()
	line := LineItem{
		ID:               id.New(),
		GRID:             g.ID,
		POItemID:         poItemID,
		AssetName:        assetName,
		QuantityOrdered:  ordered,
		UnitPrice:        unitPrice,
		InspectionStatus: inspection,
		ConditionNotes:   notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	line.ApplyReceived(received)
	g.Items = append(g.Items, line)
	g.RecalculateTotal()
}

// RecalculateTotal recomputes the receipt total from its lines.
func (g *GoodsReceipt) RecalculateTotal() {
	totals := make([]types.Money, len(g.Items))
	for i := range g.Items {
		totals[i] = g.Items[i].LineTotal
	}
	g.TotalReceivedAmount = types.SumLineTotals(totals)
}

// Validate checks aggregate invariants.
func (g *GoodsReceipt) Validate(ctx context.Context) error {
	if id.IsNil(g.POID) {
		return apperror.NewValidation("purchase order reference is required").
			WithDetail("field", "poId")
	}
	if g.ReceivedBy == "" {
		return apperror.NewValidation("receiver is required").
			WithDetail("field", "receivedBy")
	}
	if len(g.Items) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "items")
	}
	for i := range g.Items {
		if g.Items[i].QuantityReceived.IsNegative() {
			return apperror.NewValidation("received quantity must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// ApplyReceived sets the received quantity and recomputes the dependent
// fields together: accepted = received (full-acceptance policy),
// rejected = ordered - accepted, line total = accepted * unit price.
// Rejected going negative is the over-receipt signal and is not clamped.
func (l *LineItem) ApplyReceived(received decimal.Decimal) {
	l.QuantityReceived = received
	l.QuantityAccepted = received
	l.QuantityRejected = l.QuantityOrdered.Sub(l.QuantityAccepted)
	l.LineTotal = types.LineTotal(l.QuantityAccepted, l.UnitPrice)
}
