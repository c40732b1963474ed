package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CreateCallInput carries the caller-supplied fields for a new call.
type CreateCallInput struct {
	Details   string
	Priority  entities.CallPriority
	UpdatedBy string
}

// CallService drives the call and assignment state machines. Calls move
// pending -> started -> ended and never backwards; assignments carry their
// own five-state machine and the last completed assignment ends the call.
type CallService struct {
	repo       repositories.CallRepository
	dispatcher *Dispatcher
}

// NewCallService creates a new call service
func NewCallService(repo repositories.CallRepository, dispatcher *Dispatcher) *CallService {
	return &CallService{repo: repo, dispatcher: dispatcher}
}

// Create registers a new pending call and publishes its retained state.
func (s *CallService) Create(ctx context.Context, in CreateCallInput) (*entities.Call, error) {
	if in.Priority == "" {
		in.Priority = entities.CallPriorityNotUrgent
	}
	if !in.Priority.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid priority: %s", in.Priority))
	}

	now := time.Now().UTC()
	call := &entities.Call{
		ID:        uuid.New().String(),
		Status:    entities.CallStatusPending,
		Details:   in.Details,
		Priority:  in.Priority,
		PendingAt: &now,
		CreatedAt: now,
		UpdatedBy: in.UpdatedBy,
	}

	if err := s.repo.Create(ctx, call); err != nil {
		return nil, err
	}

	s.dispatcher.PublishCall(ctx, call, true)
	return call, nil
}

// Get returns the call with the given id.
func (s *CallService) Get(ctx context.Context, id string) (*entities.Call, error) {
	return s.repo.GetByID(ctx, id)
}

// ListActive returns calls that have not ended.
func (s *CallService) ListActive(ctx context.Context) ([]*entities.Call, error) {
	return s.repo.ListActive(ctx)
}

// UpdateStatus transitions a call forward. Setting the current status again
// is a no-op and does not restamp; moving backwards or out of a terminal
// state is rejected.
func (s *CallService) UpdateStatus(ctx context.Context, id string, status entities.CallStatus, updatedBy string) (*entities.Call, error) {
	if !status.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid call status: %s", status))
	}

	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, call, status, updatedBy); err != nil {
		return nil, err
	}
	return call, nil
}

// transition moves call to status, stamping the entry timestamp exactly
// once, persisting and publishing. The caller has already validated status.
func (s *CallService) transition(ctx context.Context, call *entities.Call, status entities.CallStatus, updatedBy string) error {
	if call.Status == status {
		return nil
	}
	if status.Rank() < call.Status.Rank() {
		return errors.NewValidationError(fmt.Sprintf(
			"call cannot move from %s to %s", call.Status, status))
	}

	now := time.Now().UTC()
	call.Status = status
	call.UpdatedBy = updatedBy
	switch status {
	case entities.CallStatusStarted:
		if call.StartedAt == nil {
			call.StartedAt = &now
		}
	case entities.CallStatusEnded:
		if call.EndedAt == nil {
			call.EndedAt = &now
		}
	}

	if err := s.repo.Update(ctx, call); err != nil {
		return err
	}

	if status == entities.CallStatusEnded {
		s.dispatcher.RemoveCall(ctx, call.ID)
	} else {
		s.dispatcher.PublishCall(ctx, call, true)
	}
	return nil
}

// Abort terminates a call. Active assignments are completed one by one,
// which ends the call through the normal last-one-out path; a call with no
// active assignments is ended directly. Aborting an ended call is a no-op.
func (s *CallService) Abort(ctx context.Context, id string, updatedBy string) (*entities.Call, error) {
	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if call.Status == entities.CallStatusEnded {
		return call, nil
	}

	active, err := s.repo.ListActiveAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(active) == 0 {
		if err := s.transition(ctx, call, entities.CallStatusEnded, updatedBy); err != nil {
			return nil, err
		}
		return call, nil
	}

	for _, assignment := range active {
		if _, err := s.SetAssignmentStatus(ctx, id, assignment.AmbulanceID, entities.AmbulanceCallStatusCompleted, updatedBy); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

// Assign attaches an ambulance to a call in the requested state. A second
// assignment of the same ambulance to the same call is a conflict.
func (s *CallService) Assign(ctx context.Context, callID, ambulanceID, updatedBy string) (*entities.AmbulanceCall, error) {
	call, err := s.repo.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call.Status == entities.CallStatusEnded {
		return nil, errors.NewValidationError(fmt.Sprintf("call %s has ended", callID))
	}

	now := time.Now().UTC()
	assignment := &entities.AmbulanceCall{
		ID:          uuid.New().String(),
		CallID:      callID,
		AmbulanceID: ambulanceID,
		Status:      entities.AmbulanceCallStatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	s.dispatcher.PublishAssignmentStatus(ctx, assignment, true)
	return assignment, nil
}

// SetAssignmentStatus moves one assignment through its state machine.
// Ongoing starts the parent call if it has not started; completed runs the
// atomic completion and, when this was the last active assignment, retracts
// the call's retained state instead of republishing it.
func (s *CallService) SetAssignmentStatus(ctx context.Context, callID, ambulanceID string, status entities.AmbulanceCallStatus, updatedBy string) (*entities.AmbulanceCall, error) {
	if !status.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid assignment status: %s", status))
	}

	if status == entities.AmbulanceCallStatusCompleted {
		return s.completeAssignment(ctx, callID, ambulanceID, updatedBy)
	}

	assignment, err := s.repo.GetAssignment(ctx, callID, ambulanceID)
	if err != nil {
		return nil, err
	}

	assignment.Status = status
	if err := s.repo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	// an accepted assignment starts the call
	if status == entities.AmbulanceCallStatusOngoing {
		call, err := s.repo.GetByID(ctx, callID)
		if err != nil {
			return nil, err
		}
		if call.Status != entities.CallStatusStarted {
			if err := s.transition(ctx, call, entities.CallStatusStarted, updatedBy); err != nil {
				return nil, err
			}
		}
	}

	s.dispatcher.PublishAssignmentStatus(ctx, assignment, true)
	return assignment, nil
}

func (s *CallService) completeAssignment(ctx context.Context, callID, ambulanceID, updatedBy string) (*entities.AmbulanceCall, error) {
	result, err := s.repo.CompleteAssignment(ctx, callID, ambulanceID, updatedBy)
	if err != nil {
		return nil, err
	}

	if result.CallEnded {
		// the completed notice goes out before the call retraction so
		// subscribers see the final assignment state first
		s.dispatcher.PublishAssignmentStatus(ctx, result.Assignment, true)
		s.dispatcher.RemoveCall(ctx, result.Call.ID)
		log.Info().
			Str("call_id", result.Call.ID).
			Str("ambulance_id", ambulanceID).
			Msg("last assignment completed, call ended")
		return result.Assignment, nil
	}

	// siblings remain active: the completed notice is transient and the
	// retained status slot is cleared
	s.dispatcher.PublishAssignmentStatus(ctx, result.Assignment, false)
	s.dispatcher.RemoveAssignmentStatus(ctx, result.Assignment)
	return result.Assignment, nil
}

// ActiveAssignments returns the call's assignments that are not completed.
func (s *CallService) ActiveAssignments(ctx context.Context, callID string) ([]*entities.AmbulanceCall, error) {
	if _, err := s.repo.GetByID(ctx, callID); err != nil {
		return nil, err
	}
	return s.repo.ListActiveAssignments(ctx, callID)
}

// AssignmentHistory returns the append-only trail for an assignment.
func (s *CallService) AssignmentHistory(ctx context.Context, ambulanceCallID string) ([]*entities.AmbulanceCallHistory, error) {
	return s.repo.ListAssignmentHistory(ctx, ambulanceCallID)
}
