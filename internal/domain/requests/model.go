// Package requests provides the AssetRequest entity, the upstream
// requisition that approved procurement converts into purchase orders.
package requests

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
)

// Status is the asset request lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusFulfilled Status = "fulfilled"
)

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFulfilled:
		return true
	}
	return false
}

// AssetRequest is a departmental requisition for an asset.
type AssetRequest struct {
	ID            id.ID           `db:"id" json:"id"`
	RequestNumber string          `db:"request_number" json:"requestNumber"`
	AssetName     string          `db:"asset_name" json:"assetName"`
	AssetCategory string          `db:"asset_category" json:"assetCategory,omitempty"`
	Description   string          `db:"description" json:"description,omitempty"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	Justification string          `db:"justification" json:"justification,omitempty"`

	RequestedBy     string `db:"requested_by" json:"requestedBy"`
	RequestedByName string `db:"requested_by_name" json:"requestedByName"`
	Department      string `db:"department" json:"department,omitempty"`

	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks entity invariants.
func (r *AssetRequest) Validate(ctx context.Context) error {
	if r.AssetName == "" {
		return apperror.NewValidation("asset name is required").
			WithDetail("field", "assetName")
	}
	if r.RequestedBy == "" {
		return apperror.NewValidation("requester is required").
			WithDetail("field", "requestedBy")
	}
	if r.Quantity.IsNegative() || r.Quantity.IsZero() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	return nil
}
