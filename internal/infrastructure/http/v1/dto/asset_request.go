package dto

import (
	"github.com/shopspring/decimal"

	"procura/internal/domain/requests"
)

// CreateAssetRequestRequest represents a request to create an asset request.
type CreateAssetRequestRequest struct {
	AssetName     string          `json:"assetName" binding:"required"`
	AssetCategory string          `json:"assetCategory,omitempty"`
	Description   string          `json:"description,omitempty"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Justification string          `json:"justification,omitempty"`

	RequestedBy     string `json:"requestedBy" binding:"required"`
	RequestedByName string `json:"requestedByName,omitempty"`
	Department      string `json:"department,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateAssetRequestRequest) ToEntity() *requests.AssetRequest {
	return &requests.AssetRequest{
		AssetName:       r.AssetName,
		AssetCategory:   r.AssetCategory,
		Description:     r.Description,
		Quantity:        r.Quantity,
		Justification:   r.Justification,
		RequestedBy:     r.RequestedBy,
		RequestedByName: r.RequestedByName,
		Department:      r.Department,
	}
}
