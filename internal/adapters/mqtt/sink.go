package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/providers"
	mqttclient "github.com/rescuenet/dispatch/internal/infrastructure/clients/mqtt"
	apperrors "github.com/rescuenet/dispatch/pkg/errors"
)

// Publisher is the slice of the broker client the sink needs.
type Publisher interface {
	Publish(topic string, payload []byte, retain bool) error
}

var _ Publisher = (*mqttclient.Client)(nil)

// Sink implements the NotificationSink interface over an MQTT broker.
// Topics are derived deterministically from entity ids; a retained publish
// is what late subscribers replay, and an empty retained publish clears the
// stored value.
type Sink struct {
	client Publisher
}

// NewSink creates a new MQTT notification sink
func NewSink(client Publisher) providers.NotificationSink {
	return &Sink{client: client}
}

func ambulanceTopic(id string) string {
	return fmt.Sprintf("ambulance/%s/data", id)
}

func callTopic(id string) string {
	return fmt.Sprintf("call/%s/data", id)
}

func assignmentTopic(ambulanceID, callID string) string {
	return fmt.Sprintf("ambulance/%s/call/%s/status", ambulanceID, callID)
}

func (s *Sink) publishJSON(topic string, v interface{}, retain bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to serialize payload for %s", topic), err)
	}
	if err := s.client.Publish(topic, payload, retain); err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to publish to %s", topic), err)
	}
	return nil
}

func (s *Sink) clear(topic string) error {
	if err := s.client.Publish(topic, nil, true); err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to clear %s", topic), err)
	}
	return nil
}

// PublishAmbulance pushes the ambulance's current state, retained
func (s *Sink) PublishAmbulance(ctx context.Context, ambulance *entities.Ambulance) error {
	return s.publishJSON(ambulanceTopic(ambulance.ID), ambulance, true)
}

// RemoveAmbulance erases the ambulance's retained value
func (s *Sink) RemoveAmbulance(ctx context.Context, ambulanceID string) error {
	return s.clear(ambulanceTopic(ambulanceID))
}

// PublishCall pushes the call's current state
func (s *Sink) PublishCall(ctx context.Context, call *entities.Call, retain bool) error {
	return s.publishJSON(callTopic(call.ID), call, retain)
}

// RemoveCall erases the call's retained value
func (s *Sink) RemoveCall(ctx context.Context, callID string) error {
	return s.clear(callTopic(callID))
}

// PublishAssignmentStatus pushes an assignment's status
func (s *Sink) PublishAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall, retain bool) error {
	return s.publishJSON(assignmentTopic(assignment.AmbulanceID, assignment.CallID), assignment, retain)
}

// RemoveAssignmentStatus erases an assignment's retained status
func (s *Sink) RemoveAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall) error {
	return s.clear(assignmentTopic(assignment.AmbulanceID, assignment.CallID))
}
