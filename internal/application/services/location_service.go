package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/pkg/errors"
)

// CreateLocationInput carries the caller-supplied fields for a new location.
type CreateLocationInput struct {
	Name      string
	Type      entities.LocationType
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	Point     entities.Point
	Comment   string
	UpdatedBy string
}

// LocationService manages named places waypoints can target.
type LocationService struct {
	repo repositories.LocationRepository
}

// NewLocationService creates a new location service
func NewLocationService(repo repositories.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// Create registers a named location.
func (s *LocationService) Create(ctx context.Context, in CreateLocationInput) (*entities.Location, error) {
	if in.Name == "" {
		return nil, errors.NewValidationError("name is required")
	}
	if in.Type == "" {
		in.Type = entities.LocationTypeOther
	}
	if !in.Type.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid location type: %s", in.Type))
	}

	location := &entities.Location{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Type:      in.Type,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Country:   in.Country,
		Point:     in.Point,
		Comment:   in.Comment,
		UpdatedBy: in.UpdatedBy,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// Get returns the location with the given id.
func (s *LocationService) Get(ctx context.Context, id string) (*entities.Location, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns locations matching the filter.
func (s *LocationService) List(ctx context.Context, filter repositories.LocationFilter) ([]*entities.Location, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid location type: %s", filter.Type))
	}
	return s.repo.List(ctx, filter)
}
