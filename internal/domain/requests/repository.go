package requests

import (
	"context"

	"procura/internal/core/id"
)

// Repository defines persistence operations for asset requests.
type Repository interface {
	Create(ctx context.Context, req *AssetRequest) error
	GetByID(ctx context.Context, reqID id.ID) (*AssetRequest, error)
	List(ctx context.Context, filter ListFilter) ([]*AssetRequest, error)

	// SetStatus updates the status and stamps updated_at.
	SetStatus(ctx context.Context, reqID id.ID, status Status) error
}

// ListFilter narrows the request listing.
type ListFilter struct {
	Status      *Status
	RequestedBy string
	Department  string
	Limit       int
}
