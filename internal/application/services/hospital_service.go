package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/pkg/errors"
)

// CreateHospitalInput carries the caller-supplied fields for a new hospital.
type CreateHospitalInput struct {
	Name      string
	Location  entities.Point
	Comment   string
	UpdatedBy string
}

// HospitalService manages hospitals. Hospitals are grantable objects, so
// creating or deleting one invalidates the permission cache the same way
// ambulances do.
type HospitalService struct {
	repo        repositories.HospitalRepository
	permissions PermissionInvalidator
}

// NewHospitalService creates a new hospital service
func NewHospitalService(repo repositories.HospitalRepository, permissions PermissionInvalidator) *HospitalService {
	return &HospitalService{repo: repo, permissions: permissions}
}

// Create registers a new hospital and invalidates the permission cache.
func (s *HospitalService) Create(ctx context.Context, in CreateHospitalInput) (*entities.Hospital, error) {
	if in.Name == "" {
		return nil, errors.NewValidationError("name is required")
	}

	hospital := &entities.Hospital{
		ID:                uuid.New().String(),
		Name:              in.Name,
		Location:          in.Location,
		EquipmentHolderID: uuid.New().String(),
		Comment:           in.Comment,
		UpdatedBy:         in.UpdatedBy,
		UpdatedAt:         time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, hospital); err != nil {
		return nil, err
	}

	s.permissions.InvalidateAll()
	return hospital, nil
}

// Get returns the hospital with the given id.
func (s *HospitalService) Get(ctx context.Context, id string) (*entities.Hospital, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all hospitals.
func (s *HospitalService) List(ctx context.Context) ([]*entities.Hospital, error) {
	return s.repo.List(ctx)
}

// Delete removes a hospital and invalidates the permission cache.
func (s *HospitalService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	s.permissions.InvalidateAll()
	return s.repo.Delete(ctx, id)
}
