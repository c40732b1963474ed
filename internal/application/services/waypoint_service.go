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

// CreateWaypointInput carries the caller-supplied fields for a new waypoint.
type CreateWaypointInput struct {
	AmbulanceCallID string
	Order           int
	Status          entities.WaypointStatus
	LocationID      *string
	UpdatedBy       string
}

// UpdateWaypointInput carries a partial waypoint update.
type UpdateWaypointInput struct {
	Order      *int
	Status     *entities.WaypointStatus
	Active     *bool
	LocationID *string
	UpdatedBy  string
}

// WaypointService manages the ordered stops of an assignment. Waypoints
// have no notification channel of their own; visit-state and activation
// changes surface by re-publishing the parent call.
type WaypointService struct {
	repo       repositories.WaypointRepository
	calls      repositories.CallRepository
	dispatcher *Dispatcher
}

// NewWaypointService creates a new waypoint service
func NewWaypointService(
	repo repositories.WaypointRepository,
	calls repositories.CallRepository,
	dispatcher *Dispatcher,
) *WaypointService {
	return &WaypointService{repo: repo, calls: calls, dispatcher: dispatcher}
}

// Create adds a waypoint to an assignment's route and re-publishes the
// parent call.
func (s *WaypointService) Create(ctx context.Context, in CreateWaypointInput) (*entities.Waypoint, error) {
	if in.Order < 0 {
		return nil, errors.NewValidationError("waypoint order cannot be negative")
	}
	if in.Status == "" {
		in.Status = entities.WaypointStatusNotVisited
	}
	if !in.Status.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid waypoint status: %s", in.Status))
	}

	assignment, err := s.calls.GetAssignmentByID(ctx, in.AmbulanceCallID)
	if err != nil {
		return nil, err
	}

	waypoint := &entities.Waypoint{
		ID:              uuid.New().String(),
		AmbulanceCallID: assignment.ID,
		Order:           in.Order,
		Status:          in.Status,
		Active:          true,
		LocationID:      in.LocationID,
		UpdatedBy:       in.UpdatedBy,
		UpdatedAt:       time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, waypoint); err != nil {
		return nil, err
	}

	s.republishCall(ctx, assignment.CallID)
	return waypoint, nil
}

// Get returns the waypoint with the given id.
func (s *WaypointService) Get(ctx context.Context, id string) (*entities.Waypoint, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. Status and activation changes cascade a
// re-publish of the parent call; reordering and location edits persist
// silently.
func (s *WaypointService) Update(ctx context.Context, id string, in UpdateWaypointInput) (*entities.Waypoint, error) {
	waypoint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cascade := false
	if in.Order != nil {
		if *in.Order < 0 {
			return nil, errors.NewValidationError("waypoint order cannot be negative")
		}
		waypoint.Order = *in.Order
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid waypoint status: %s", *in.Status))
		}
		if *in.Status != waypoint.Status {
			cascade = true
		}
		waypoint.Status = *in.Status
	}
	if in.Active != nil {
		if *in.Active != waypoint.Active {
			cascade = true
		}
		waypoint.Active = *in.Active
	}
	if in.LocationID != nil {
		waypoint.LocationID = in.LocationID
	}
	waypoint.UpdatedBy = in.UpdatedBy
	waypoint.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, waypoint); err != nil {
		return nil, err
	}

	if cascade {
		assignment, err := s.calls.GetAssignmentByID(ctx, waypoint.AmbulanceCallID)
		if err != nil {
			return nil, err
		}
		s.republishCall(ctx, assignment.CallID)
	}
	return waypoint, nil
}

// Remove deactivates a waypoint. The row stays for the historical route;
// deactivation cascades like any other activation toggle.
func (s *WaypointService) Remove(ctx context.Context, id string, updatedBy string) (*entities.Waypoint, error) {
	active := false
	return s.Update(ctx, id, UpdateWaypointInput{Active: &active, UpdatedBy: updatedBy})
}

// Route returns the assignment's active waypoints in traversal order.
func (s *WaypointService) Route(ctx context.Context, ambulanceCallID string) ([]*entities.Waypoint, error) {
	if _, err := s.calls.GetAssignmentByID(ctx, ambulanceCallID); err != nil {
		return nil, err
	}
	return s.repo.ListByAssignment(ctx, ambulanceCallID, true)
}

func (s *WaypointService) republishCall(ctx context.Context, callID string) {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		// the waypoint write already committed; dispatch stays best effort
		return
	}
	if call.Status != entities.CallStatusEnded {
		s.dispatcher.PublishCall(ctx, call, true)
	}
}
