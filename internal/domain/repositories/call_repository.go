package repositories

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// CompleteAssignmentResult reports what an atomic completion did
type CompleteAssignmentResult struct {
	// Assignment is the post-completion assignment row
	Assignment *entities.AmbulanceCall

	// Remaining counts active sibling assignments after this completion
	Remaining int

	// CallEnded is true when this completion was the last active assignment
	// and the call was transitioned to ended inside the same transaction
	CallEnded bool

	// Call is the post-transaction call snapshot
	Call *entities.Call
}

// CallRepository defines the interface for call and assignment data access.
// Assignment writes append one AmbulanceCallHistory row in the same
// transaction; the history trail is unconditional and never pruned.
type CallRepository interface {
	// Create persists a new call
	Create(ctx context.Context, call *entities.Call) error

	// GetByID retrieves a call by ID
	GetByID(ctx context.Context, id string) (*entities.Call, error)

	// Update persists the call row
	Update(ctx context.Context, call *entities.Call) error

	// ListActive retrieves calls that have not ended
	ListActive(ctx context.Context) ([]*entities.Call, error)

	// CreateAssignment persists a new assignment plus its history row.
	// A duplicate (call, ambulance) pair is reported as a conflict.
	CreateAssignment(ctx context.Context, assignment *entities.AmbulanceCall) error

	// GetAssignment retrieves the assignment for a (call, ambulance) pair
	GetAssignment(ctx context.Context, callID, ambulanceID string) (*entities.AmbulanceCall, error)

	// GetAssignmentByID retrieves an assignment by its own id
	GetAssignmentByID(ctx context.Context, id string) (*entities.AmbulanceCall, error)

	// UpdateAssignment persists an assignment plus its history row
	UpdateAssignment(ctx context.Context, assignment *entities.AmbulanceCall) error

	// CompleteAssignment marks an assignment completed, appends its history
	// row, counts the remaining active siblings and, when none remain, ends
	// the parent call, all inside one transaction holding a row lock on the
	// call so two racing completions cannot both end it.
	CompleteAssignment(ctx context.Context, callID, ambulanceID, updatedBy string) (*CompleteAssignmentResult, error)

	// ListActiveAssignments retrieves assignments for a call that are not completed
	ListActiveAssignments(ctx context.Context, callID string) ([]*entities.AmbulanceCall, error)

	// ListAssignmentHistory retrieves the append-only trail for an assignment
	ListAssignmentHistory(ctx context.Context, ambulanceCallID string) ([]*entities.AmbulanceCallHistory, error)
}
