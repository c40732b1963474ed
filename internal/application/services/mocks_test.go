package services_test

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/stretchr/testify/mock"
)

// Mocks

type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) PublishAmbulance(ctx context.Context, ambulance *entities.Ambulance) error {
	args := m.Called(ctx, ambulance)
	return args.Error(0)
}

func (m *MockNotificationSink) RemoveAmbulance(ctx context.Context, ambulanceID string) error {
	args := m.Called(ctx, ambulanceID)
	return args.Error(0)
}

func (m *MockNotificationSink) PublishCall(ctx context.Context, call *entities.Call, retain bool) error {
	args := m.Called(ctx, call, retain)
	return args.Error(0)
}

func (m *MockNotificationSink) RemoveCall(ctx context.Context, callID string) error {
	args := m.Called(ctx, callID)
	return args.Error(0)
}

func (m *MockNotificationSink) PublishAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall, retain bool) error {
	args := m.Called(ctx, assignment, retain)
	return args.Error(0)
}

func (m *MockNotificationSink) RemoveAssignmentStatus(ctx context.Context, assignment *entities.AmbulanceCall) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

type MockAmbulanceRepository struct {
	mock.Mock
}

func (m *MockAmbulanceRepository) Create(ctx context.Context, ambulance *entities.Ambulance, update *entities.AmbulanceUpdate) error {
	args := m.Called(ctx, ambulance, update)
	return args.Error(0)
}

func (m *MockAmbulanceRepository) GetByID(ctx context.Context, id string) (*entities.Ambulance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ambulance), args.Error(1)
}

func (m *MockAmbulanceRepository) GetByIdentifier(ctx context.Context, identifier string) (*entities.Ambulance, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ambulance), args.Error(1)
}

func (m *MockAmbulanceRepository) Update(ctx context.Context, ambulance *entities.Ambulance) error {
	args := m.Called(ctx, ambulance)
	return args.Error(0)
}

func (m *MockAmbulanceRepository) UpdateWithHistory(ctx context.Context, ambulance *entities.Ambulance, update *entities.AmbulanceUpdate) error {
	args := m.Called(ctx, ambulance, update)
	return args.Error(0)
}

func (m *MockAmbulanceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAmbulanceRepository) List(ctx context.Context) ([]*entities.Ambulance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ambulance), args.Error(1)
}

func (m *MockAmbulanceRepository) ListUpdates(ctx context.Context, ambulanceID string) ([]*entities.AmbulanceUpdate, error) {
	args := m.Called(ctx, ambulanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AmbulanceUpdate), args.Error(1)
}

type MockCallRepository struct {
	mock.Mock
}

func (m *MockCallRepository) Create(ctx context.Context, call *entities.Call) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockCallRepository) GetByID(ctx context.Context, id string) (*entities.Call, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Call), args.Error(1)
}

func (m *MockCallRepository) Update(ctx context.Context, call *entities.Call) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockCallRepository) ListActive(ctx context.Context) ([]*entities.Call, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Call), args.Error(1)
}

func (m *MockCallRepository) CreateAssignment(ctx context.Context, assignment *entities.AmbulanceCall) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockCallRepository) GetAssignment(ctx context.Context, callID, ambulanceID string) (*entities.AmbulanceCall, error) {
	args := m.Called(ctx, callID, ambulanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AmbulanceCall), args.Error(1)
}

func (m *MockCallRepository) GetAssignmentByID(ctx context.Context, id string) (*entities.AmbulanceCall, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AmbulanceCall), args.Error(1)
}

func (m *MockCallRepository) UpdateAssignment(ctx context.Context, assignment *entities.AmbulanceCall) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockCallRepository) CompleteAssignment(ctx context.Context, callID, ambulanceID, updatedBy string) (*repositories.CompleteAssignmentResult, error) {
	args := m.Called(ctx, callID, ambulanceID, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CompleteAssignmentResult), args.Error(1)
}

func (m *MockCallRepository) ListActiveAssignments(ctx context.Context, callID string) ([]*entities.AmbulanceCall, error) {
	args := m.Called(ctx, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AmbulanceCall), args.Error(1)
}

func (m *MockCallRepository) ListAssignmentHistory(ctx context.Context, ambulanceCallID string) ([]*entities.AmbulanceCallHistory, error) {
	args := m.Called(ctx, ambulanceCallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AmbulanceCallHistory), args.Error(1)
}

type MockWaypointRepository struct {
	mock.Mock
}

func (m *MockWaypointRepository) Create(ctx context.Context, waypoint *entities.Waypoint) error {
	args := m.Called(ctx, waypoint)
	return args.Error(0)
}

func (m *MockWaypointRepository) GetByID(ctx context.Context, id string) (*entities.Waypoint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Waypoint), args.Error(1)
}

func (m *MockWaypointRepository) Update(ctx context.Context, waypoint *entities.Waypoint) error {
	args := m.Called(ctx, waypoint)
	return args.Error(0)
}

func (m *MockWaypointRepository) ListByAssignment(ctx context.Context, ambulanceCallID string, activeOnly bool) ([]*entities.Waypoint, error) {
	args := m.Called(ctx, ambulanceCallID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Waypoint), args.Error(1)
}

type MockGrantRepository struct {
	mock.Mock
}

func (m *MockGrantRepository) ListGroupsForUser(ctx context.Context, userID string) ([]*entities.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Group), args.Error(1)
}

func (m *MockGrantRepository) ListGroupGrants(ctx context.Context, groupID, objectKind string) ([]*entities.ObjectGrant, error) {
	args := m.Called(ctx, groupID, objectKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ObjectGrant), args.Error(1)
}

func (m *MockGrantRepository) ListUserGrants(ctx context.Context, userID, objectKind string) ([]*entities.ObjectGrant, error) {
	args := m.Called(ctx, userID, objectKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ObjectGrant), args.Error(1)
}

func (m *MockGrantRepository) ListAllGrantable(ctx context.Context, objectKind string) ([]*entities.ObjectGrant, error) {
	args := m.Called(ctx, objectKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ObjectGrant), args.Error(1)
}

type MockHospitalRepository struct {
	mock.Mock
}

func (m *MockHospitalRepository) Create(ctx context.Context, hospital *entities.Hospital) error {
	args := m.Called(ctx, hospital)
	return args.Error(0)
}

func (m *MockHospitalRepository) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Hospital), args.Error(1)
}

func (m *MockHospitalRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHospitalRepository) List(ctx context.Context) ([]*entities.Hospital, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Hospital), args.Error(1)
}

type MockPermissionInvalidator struct {
	mock.Mock
}

func (m *MockPermissionInvalidator) InvalidateAll() {
	m.Called()
}
