package repositories

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// HospitalRepository defines the interface for hospital data access
type HospitalRepository interface {
	// Create persists a new hospital
	Create(ctx context.Context, hospital *entities.Hospital) error

	// GetByID retrieves a hospital by ID
	GetByID(ctx context.Context, id string) (*entities.Hospital, error)

	// Delete removes a hospital
	Delete(ctx context.Context, id string) error

	// List retrieves all hospitals
	List(ctx context.Context) ([]*entities.Hospital, error)
}
