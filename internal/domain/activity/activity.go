// Package activity defines the activity-log port consumed by domain services.
// Recording is fire-and-forget: services log a warning on failure and
// never fail the business operation because of it.
package activity

import (
	"context"

	"procura/internal/core/id"
)

// Entry describes a single recorded mutation.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     string
	ActorID    string
	ActorName  string

	// Details is an optional structured payload (serialized by the store).
	Details any
}

// Recorder persists activity entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
