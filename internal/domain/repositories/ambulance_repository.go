package repositories

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// AmbulanceRepository defines the interface for ambulance data access.
// Methods taking both the row and a history snapshot persist the two in a
// single transaction so a qualifying save appends exactly one history row.
type AmbulanceRepository interface {
	// Create persists a new ambulance together with its first history snapshot
	Create(ctx context.Context, ambulance *entities.Ambulance, update *entities.AmbulanceUpdate) error

	// GetByID retrieves an ambulance by ID
	GetByID(ctx context.Context, id string) (*entities.Ambulance, error)

	// GetByIdentifier retrieves an ambulance by its unique identifier
	GetByIdentifier(ctx context.Context, identifier string) (*entities.Ambulance, error)

	// Update persists the ambulance row only
	Update(ctx context.Context, ambulance *entities.Ambulance) error

	// UpdateWithHistory persists the row and appends one history snapshot
	UpdateWithHistory(ctx context.Context, ambulance *entities.Ambulance, update *entities.AmbulanceUpdate) error

	// Delete removes an ambulance; history rows cascade
	Delete(ctx context.Context, id string) error

	// List retrieves all ambulances
	List(ctx context.Context) ([]*entities.Ambulance, error)

	// ListUpdates retrieves history snapshots ordered by timestamp
	ListUpdates(ctx context.Context, ambulanceID string) ([]*entities.AmbulanceUpdate, error)
}
