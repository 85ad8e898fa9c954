// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- List Response ---

// ListResponse wraps list results.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// --- Status Update ---

// UpdateStatusRequest carries a manual status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
