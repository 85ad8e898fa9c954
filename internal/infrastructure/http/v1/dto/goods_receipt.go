package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/core/id"
	"procura/internal/domain/goods_receipt"
	"procura/internal/domain/reconciliation"
)

// --- Request DTOs ---

// CreateGoodsReceiptRequest represents a request to create a goods receipt.
type CreateGoodsReceiptRequest struct {
	POID           string     `json:"poId" binding:"required"`
	ReceivedBy     string     `json:"receivedBy" binding:"required"`
	ReceivedByName string     `json:"receivedByName,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	ReceiptDate    *time.Time `json:"receiptDate,omitempty"`

	Items []GoodsReceiptItemRequest `json:"items" binding:"required,min=1,dive"`
}

// GoodsReceiptItemRequest represents a received line in create requests.
type GoodsReceiptItemRequest struct {
	POItemID         string          `json:"poItemId" binding:"required"`
	QuantityReceived decimal.Decimal `json:"quantityReceived" binding:"required"`
	InspectionStatus string          `json:"inspectionStatus,omitempty"`
	ConditionNotes   string          `json:"conditionNotes,omitempty"`
}

// ToEntity converts request to a receipt header plus service line inputs.
func (r *CreateGoodsReceiptRequest) ToEntity() (*goods_receipt.GoodsReceipt, []goods_receipt.ItemInput, error) {
	poID, err := id.Parse(r.POID)
	if err != nil {
		return nil, nil, err
	}

	gr := goods_receipt.NewGoodsReceipt(poID, r.ReceivedBy, r.ReceivedByName)
	gr.Notes = r.Notes
	if r.ReceiptDate != nil {
		gr.ReceiptDate = *r.ReceiptDate
	}

	items := make([]goods_receipt.ItemInput, 0, len(r.Items))
	for _, line := range r.Items {
		poItemID, err := id.Parse(line.POItemID)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, goods_receipt.ItemInput{
			POItemID:         poItemID,
			QuantityReceived: line.QuantityReceived,
			InspectionStatus: line.InspectionStatus,
			ConditionNotes:   line.ConditionNotes,
		})
	}

	return gr, items, nil
}

// UpdateGoodsReceiptItemRequest represents a partial received-line update.
type UpdateGoodsReceiptItemRequest struct {
	QuantityReceived *decimal.Decimal `json:"quantityReceived,omitempty"`
	InspectionStatus *string          `json:"inspectionStatus,omitempty"`
	ConditionNotes   *string          `json:"conditionNotes,omitempty"`
}

// ToUpdate converts the request to a service update.
func (r *UpdateGoodsReceiptItemRequest) ToUpdate() goods_receipt.ItemUpdate {
	return goods_receipt.ItemUpdate{
		QuantityReceived: r.QuantityReceived,
		InspectionStatus: r.InspectionStatus,
		ConditionNotes:   r.ConditionNotes,
	}
}

// --- Response DTOs ---

// CreateGoodsReceiptResponse pairs the created receipt with its
// three-way-match report.
type CreateGoodsReceiptResponse struct {
	Receipt *goods_receipt.GoodsReceipt   `json:"receipt"`
	Match   *reconciliation.ThreeWayMatch `json:"match"`
}
