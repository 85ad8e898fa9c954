package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/core/id"
	"procura/internal/domain/purchase_order"
)

// --- Request DTOs ---

// CreatePurchaseOrderRequest represents a request to create a purchase order.
type CreatePurchaseOrderRequest struct {
	RequestID     string `json:"requestId" binding:"required"`
	SupplierName  string `json:"supplierName" binding:"required"`
	SupplierEmail string `json:"supplierEmail,omitempty"`

	CreatedBy     string `json:"createdBy" binding:"required"`
	CreatedByName string `json:"createdByName,omitempty"`
	Department    string `json:"department,omitempty"`

	ExpectedDelivery *time.Time `json:"expectedDelivery,omitempty"`
	PaymentTerms     string     `json:"paymentTerms,omitempty"`
	DeliveryAddress  string     `json:"deliveryAddress,omitempty"`
	Notes            string     `json:"notes,omitempty"`

	Items []PurchaseOrderItemRequest `json:"items,omitempty" binding:"dive"`
}

// PurchaseOrderItemRequest represents a line in create/add-item requests.
type PurchaseOrderItemRequest struct {
	AssetName     string          `json:"assetName" binding:"required"`
	AssetCategory string          `json:"assetCategory,omitempty"`
	Description   string          `json:"description,omitempty"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice     decimal.Decimal `json:"unitPrice" binding:"required"`
	UOM           string          `json:"uom,omitempty"`
	DeliveryDate  *time.Time      `json:"deliveryDate,omitempty"`
}

// ToInput converts the line request to a service input.
func (r *PurchaseOrderItemRequest) ToInput() purchase_order.ItemInput {
	return purchase_order.ItemInput{
		AssetName:     r.AssetName,
		AssetCategory: r.AssetCategory,
		Description:   r.Description,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		UOM:           r.UOM,
		DeliveryDate:  r.DeliveryDate,
	}
}

// ToEntity converts request to a draft order header. Line items are
// passed to the service separately.
func (r *CreatePurchaseOrderRequest) ToEntity() (*purchase_order.PurchaseOrder, []purchase_order.ItemInput, error) {
	requestID, err := id.Parse(r.RequestID)
	if err != nil {
		return nil, nil, err
	}

	po := purchase_order.NewPurchaseOrder(requestID, r.SupplierName, r.CreatedBy, r.CreatedByName)
	po.SupplierEmail = r.SupplierEmail
	po.Department = r.Department
	po.ExpectedDelivery = r.ExpectedDelivery
	po.PaymentTerms = r.PaymentTerms
	po.DeliveryAddress = r.DeliveryAddress
	po.Notes = r.Notes

	items := make([]purchase_order.ItemInput, len(r.Items))
	for i := range r.Items {
		items[i] = r.Items[i].ToInput()
	}

	return po, items, nil
}

// UpdatePurchaseOrderItemRequest represents a partial line item update.
type UpdatePurchaseOrderItemRequest struct {
	AssetName     *string          `json:"assetName,omitempty"`
	AssetCategory *string          `json:"assetCategory,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unitPrice,omitempty"`
	UOM           *string          `json:"uom,omitempty"`
	DeliveryDate  *time.Time       `json:"deliveryDate,omitempty"`
}

// ToUpdate converts the request to a service update.
func (r *UpdatePurchaseOrderItemRequest) ToUpdate() purchase_order.ItemUpdate {
	return purchase_order.ItemUpdate{
		AssetName:     r.AssetName,
		AssetCategory: r.AssetCategory,
		Description:   r.Description,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		UOM:           r.UOM,
		DeliveryDate:  r.DeliveryDate,
	}
}
