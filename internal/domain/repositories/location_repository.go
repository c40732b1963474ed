package repositories

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// LocationFilter narrows location listings
type LocationFilter struct {
	Type   entities.LocationType
	Limit  int
	Offset int
}

// LocationRepository defines the interface for location data access
type LocationRepository interface {
	// Create persists a new location
	Create(ctx context.Context, location *entities.Location) error

	// GetByID retrieves a location by ID
	GetByID(ctx context.Context, id string) (*entities.Location, error)

	// Update persists a location row
	Update(ctx context.Context, location *entities.Location) error

	// List retrieves locations matching the filter
	List(ctx context.Context, filter LocationFilter) ([]*entities.Location, error)
}
