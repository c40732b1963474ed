package providers

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// NotificationSink defines the interface to the real-time broker observers
// subscribe to. A retained publish is redelivered to late subscribers; a
// remove erases the retained value with an empty payload.
type NotificationSink interface {
	// PublishAmbulance pushes the ambulance's current state, retained
	PublishAmbulance(ctx context.Context, ambulance *entities.Ambulance) error

	// RemoveAmbulance erases the ambulance's retained value
	RemoveAmbulance(ctx context.Context, ambulanceID string) error

	// PublishCall pushes the call's current state
	PublishCall(ctx context.Context, call *entities.Call, retain bool) error

	// RemoveCall erases the call's retained value
	RemoveCall(ctx context.Context, callID string) error

	// PublishAssignmentStatus pushes an assignment's status
	PublishAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall, retain bool) error

	// RemoveAssignmentStatus erases an assignment's retained status
	RemoveAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall) error
}
