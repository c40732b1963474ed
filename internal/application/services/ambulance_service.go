package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/pkg/errors"
	"github.com/rescuenet/dispatch/pkg/geo"
)

// PermissionInvalidator drops every cached permission snapshot. Implemented
// by PermissionService; structural mutations of the grantable object set
// (ambulance or hospital create/delete) must invalidate wholesale.
type PermissionInvalidator interface {
	InvalidateAll()
}

// CreateAmbulanceInput carries the caller-supplied fields for a new ambulance.
type CreateAmbulanceInput struct {
	Identifier string
	Capability entities.AmbulanceCapability
	Status     entities.AmbulanceStatus
	Location   entities.Point
	Comment    string
	UpdatedBy  string
}

// UpdateAmbulanceInput carries a partial update. Nil pointers mean the
// caller did not touch the field.
type UpdateAmbulanceInput struct {
	Identifier          *string
	Capability          *entities.AmbulanceCapability
	Status              *entities.AmbulanceStatus
	Orientation         *float64
	Location            *entities.Point
	Timestamp           *time.Time
	LocationClientID    *string
	ClearLocationClient bool
	Comment             *string
	UpdatedBy           string
}

// AmbulanceService implements the ambulance transition engine: it decides
// which updates are position-significant, recomputes orientation from
// movement, and records history for primary changes only.
type AmbulanceService struct {
	repo             repositories.AmbulanceRepository
	dispatcher       *Dispatcher
	permissions      PermissionInvalidator
	stationaryRadius float64
}

// NewAmbulanceService creates a new ambulance service
func NewAmbulanceService(
	repo repositories.AmbulanceRepository,
	dispatcher *Dispatcher,
	permissions PermissionInvalidator,
	stationaryRadius float64,
) *AmbulanceService {
	return &AmbulanceService{
		repo:             repo,
		dispatcher:       dispatcher,
		permissions:      permissions,
		stationaryRadius: stationaryRadius,
	}
}

// Create registers a new ambulance, records its first history entry in the
// same transaction, publishes the retained state and invalidates the
// permission cache.
func (s *AmbulanceService) Create(ctx context.Context, in CreateAmbulanceInput) (*entities.Ambulance, error) {
	if in.Identifier == "" {
		return nil, errors.NewValidationError("identifier is required")
	}
	if in.Capability == "" {
		in.Capability = entities.AmbulanceCapabilityBasic
	}
	if !in.Capability.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid capability: %s", in.Capability))
	}
	if in.Status == "" {
		in.Status = entities.AmbulanceStatusUnknown
	}
	if !in.Status.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid status: %s", in.Status))
	}

	now := time.Now().UTC()
	ambulance := &entities.Ambulance{
		ID:                uuid.New().String(),
		Identifier:        in.Identifier,
		Capability:        in.Capability,
		Status:            in.Status,
		Orientation:       0,
		Location:          in.Location,
		Timestamp:         now,
		EquipmentHolderID: uuid.New().String(),
		Comment:           in.Comment,
		UpdatedBy:         in.UpdatedBy,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, ambulance, snapshotUpdate(ambulance)); err != nil {
		return nil, err
	}

	s.dispatcher.PublishAmbulance(ctx, ambulance)
	s.permissions.InvalidateAll()
	return ambulance, nil
}

// Get returns the ambulance with the given id.
func (s *AmbulanceService) Get(ctx context.Context, id string) (*entities.Ambulance, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all ambulances ordered by identifier.
func (s *AmbulanceService) List(ctx context.Context) ([]*entities.Ambulance, error) {
	return s.repo.List(ctx)
}

// History returns the ambulance's recorded updates in chronological order.
func (s *AmbulanceService) History(ctx context.Context, id string) ([]*entities.AmbulanceUpdate, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, id)
}

// Update applies a partial update. Movement beyond the stationary radius,
// status changes and comment changes are primary and append a history
// entry; identifier, capability and location-client changes persist without
// history. An update that changes nothing is rejected.
func (s *AmbulanceService) Update(ctx context.Context, id string, in UpdateAmbulanceInput) (*entities.Ambulance, error) {
	prior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ambulance := *prior
	orientationSet := false

	if in.Identifier != nil {
		if *in.Identifier == "" {
			return nil, errors.NewValidationError("identifier cannot be empty")
		}
		ambulance.Identifier = *in.Identifier
	}
	if in.Capability != nil {
		if !in.Capability.Valid() {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid capability: %s", *in.Capability))
		}
		ambulance.Capability = *in.Capability
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid status: %s", *in.Status))
		}
		ambulance.Status = *in.Status
	}
	if in.Orientation != nil {
		ambulance.Orientation = *in.Orientation
		orientationSet = true
	}
	if in.Location != nil {
		ambulance.Location = *in.Location
	}
	if in.Comment != nil {
		ambulance.Comment = *in.Comment
	}
	if in.ClearLocationClient {
		ambulance.LocationClientID = nil
	} else if in.LocationClientID != nil {
		ambulance.LocationClientID = in.LocationClientID
	}

	moved := false
	if in.Location != nil {
		moved = !geoStationary(prior.Location, ambulance.Location, s.stationaryRadius)
	}

	// Movement derives a fresh bearing from the previous position unless
	// the caller supplied an explicit orientation in the same update.
	if moved && !orientationSet {
		ambulance.Orientation = geoBearing(prior.Location, ambulance.Location)
	}

	statusChanged := ambulance.Status != prior.Status
	commentChanged := ambulance.Comment != prior.Comment
	identifierChanged := ambulance.Identifier != prior.Identifier
	capabilityChanged := ambulance.Capability != prior.Capability
	clientChanged := !stringPtrEqual(ambulance.LocationClientID, prior.LocationClientID)

	primary := moved || statusChanged || commentChanged
	secondary := identifierChanged || capabilityChanged || clientChanged

	if !primary && !secondary {
		return nil, errors.NewValidationError("update changes nothing")
	}

	now := time.Now().UTC()
	if in.Timestamp != nil {
		ambulance.Timestamp = in.Timestamp.UTC()
	} else if primary {
		ambulance.Timestamp = now
	}
	ambulance.UpdatedBy = in.UpdatedBy
	ambulance.UpdatedAt = now

	if primary {
		err = s.repo.UpdateWithHistory(ctx, &ambulance, snapshotUpdate(&ambulance))
	} else {
		err = s.repo.Update(ctx, &ambulance)
	}
	if err != nil {
		return nil, err
	}

	s.dispatcher.PublishAmbulance(ctx, &ambulance)
	return &ambulance, nil
}

// Delete retracts the ambulance's retained notification, invalidates the
// permission cache and removes the row with its history.
func (s *AmbulanceService) Delete(ctx context.Context, id string, updatedBy string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	s.dispatcher.RemoveAmbulance(ctx, id)
	s.permissions.InvalidateAll()
	return s.repo.Delete(ctx, id)
}

func snapshotUpdate(a *entities.Ambulance) *entities.AmbulanceUpdate {
	return &entities.AmbulanceUpdate{
		ID:          uuid.New().String(),
		AmbulanceID: a.ID,
		Status:      a.Status,
		Orientation: a.Orientation,
		Location:    a.Location,
		Timestamp:   a.Timestamp,
		Comment:     a.Comment,
		UpdatedBy:   a.UpdatedBy,
		UpdatedAt:   a.UpdatedAt,
	}
}

func geoStationary(from, to entities.Point, radius float64) bool {
	return geo.IsStationary(from.Latitude, from.Longitude, to.Latitude, to.Longitude, radius)
}

func geoBearing(from, to entities.Point) float64 {
	return geo.Bearing(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
