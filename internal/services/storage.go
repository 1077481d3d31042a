package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/route-agent/pkg/milestone"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for progress persistence. It satisfies
// milestone.ProgressStore so the engine can persist on every advancement.
type Storage interface {
	HealthChecker
	Closer

	// SaveProgress writes a progress record keyed by its run ID.
	SaveProgress(ctx context.Context, ps *milestone.ProgressState) error

	// LoadProgress retrieves a progress record by run ID.
	// Returns nil if no record exists.
	LoadProgress(ctx context.Context, runID uuid.UUID) (*milestone.ProgressState, error)

	// DeleteProgress removes a progress record by run ID.
	DeleteProgress(ctx context.Context, runID uuid.UUID) error
}
