package services

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/providers"
	"github.com/rescuenet/dispatch/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
)

// Dispatcher fans out entity state to the notification sink. Dispatch is
// best effort: the state store is authoritative and a broker failure must
// never roll back a committed transition, so failures are logged and
// counted but never returned to the transition engine.
type Dispatcher struct {
	sink providers.NotificationSink
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(sink providers.NotificationSink) *Dispatcher {
	return &Dispatcher{sink: sink}
}

func (d *Dispatcher) dispatch(entity, topicID string, fn func() error) {
	observability.NotificationPublishes.WithLabelValues(entity).Inc()
	if err := fn(); err != nil {
		observability.NotificationFailures.WithLabelValues(entity).Inc()
		log.Error().
			Err(err).
			Str("entity", entity).
			Str("id", topicID).
			Msg("notification dispatch failed")
	}
}

// PublishAmbulance pushes the ambulance's current state, retained
func (d *Dispatcher) PublishAmbulance(ctx context.Context, ambulance *entities.Ambulance) {
	d.dispatch("ambulance", ambulance.ID, func() error {
		return d.sink.PublishAmbulance(ctx, ambulance)
	})
}

// RemoveAmbulance erases the ambulance's retained value
func (d *Dispatcher) RemoveAmbulance(ctx context.Context, ambulanceID string) {
	d.dispatch("ambulance", ambulanceID, func() error {
		return d.sink.RemoveAmbulance(ctx, ambulanceID)
	})
}

// PublishCall pushes the call's current state
func (d *Dispatcher) PublishCall(ctx context.Context, call *entities.Call, retain bool) {
	d.dispatch("call", call.ID, func() error {
		return d.sink.PublishCall(ctx, call, retain)
	})
}

// RemoveCall erases the call's retained value
func (d *Dispatcher) RemoveCall(ctx context.Context, callID string) {
	d.dispatch("call", callID, func() error {
		return d.sink.RemoveCall(ctx, callID)
	})
}

// PublishAssignmentStatus pushes an assignment's status
func (d *Dispatcher) PublishAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall, retain bool) {
	d.dispatch("assignment", assignment.ID, func() error {
		return d.sink.PublishAssignmentStatus(ctx, assignment, retain)
	})
}

// RemoveAssignmentStatus erases an assignment's retained status
func (d *Dispatcher) RemoveAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall) {
	d.dispatch("assignment", assignment.ID, func() error {
		return d.sink.RemoveAssignmentStatus(ctx, assignment)
	})
}
