package repositories

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// WaypointRepository defines the interface for waypoint data access
type WaypointRepository interface {
	// Create persists a new waypoint
	Create(ctx context.Context, waypoint *entities.Waypoint) error

	// GetByID retrieves a waypoint by ID
	GetByID(ctx context.Context, id string) (*entities.Waypoint, error)

	// Update persists a waypoint row
	Update(ctx context.Context, waypoint *entities.Waypoint) error

	// ListByAssignment retrieves waypoints for an assignment by ascending
	// order; activeOnly excludes soft-removed waypoints
	ListByAssignment(ctx context.Context, ambulanceCallID string, activeOnly bool) ([]*entities.Waypoint, error)
}
