package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rescuenet/dispatch/internal/application/services"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	apperrors "github.com/rescuenet/dispatch/pkg/errors"
)

func newRegularUser() *entities.User {
	return &entities.User{ID: "user-1", Username: "medic7"}
}

func emptyGrants(repo *MockGrantRepository, userID string) {
	repo.On("ListGroupsForUser", mock.Anything, userID).Return([]*entities.Group{}, nil)
	repo.On("ListUserGrants", mock.Anything, userID, mock.Anything).Return([]*entities.ObjectGrant{}, nil)
}

func TestPermissionService_Resolve(t *testing.T) {
	t.Run("later group overwrites earlier grant per object", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		groups := []*entities.Group{
			{ID: "g1", Name: "readers", Priority: 1},
			{ID: "g2", Name: "writers", Priority: 2},
		}
		repo.On("ListGroupsForUser", mock.Anything, "user-1").Return(groups, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", EquipmentHolderID: "eh-1", CanRead: true, CanWrite: false},
		}, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindHospital).Return([]*entities.ObjectGrant{}, nil)
		repo.On("ListGroupGrants", mock.Anything, "g2", services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", EquipmentHolderID: "eh-1", CanRead: true, CanWrite: true},
		}, nil)
		repo.On("ListGroupGrants", mock.Anything, "g2", services.KindHospital).Return([]*entities.ObjectGrant{}, nil)
		repo.On("ListUserGrants", mock.Anything, "user-1", mock.Anything).Return([]*entities.ObjectGrant{}, nil)

		permissions, err := service.Resolve(context.Background(), newRegularUser())

		assert.NoError(t, err)
		assert.True(t, permissions.CanRead(services.KindAmbulance, "amb-1"))
		assert.True(t, permissions.CanWrite(services.KindAmbulance, "amb-1"))
	})

	t.Run("user grant overwrites every group grant", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		groups := []*entities.Group{{ID: "g1", Name: "writers", Priority: 1}}
		repo.On("ListGroupsForUser", mock.Anything, "user-1").Return(groups, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", CanRead: true, CanWrite: true},
		}, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindHospital).Return([]*entities.ObjectGrant{}, nil)
		repo.On("ListUserGrants", mock.Anything, "user-1", services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", CanRead: true, CanWrite: false},
		}, nil)
		repo.On("ListUserGrants", mock.Anything, "user-1", services.KindHospital).Return([]*entities.ObjectGrant{}, nil)

		permissions, err := service.Resolve(context.Background(), newRegularUser())

		assert.NoError(t, err)
		assert.True(t, permissions.CanRead(services.KindAmbulance, "amb-1"))
		assert.False(t, permissions.CanWrite(services.KindAmbulance, "amb-1"))
	})

	t.Run("superuser sees every grantable object", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		repo.On("ListAllGrantable", mock.Anything, services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", EquipmentHolderID: "eh-1", CanRead: true, CanWrite: true},
		}, nil)
		repo.On("ListAllGrantable", mock.Anything, services.KindHospital).Return([]*entities.ObjectGrant{
			{ObjectID: "hosp-1", EquipmentHolderID: "eh-2", CanRead: true, CanWrite: true},
		}, nil)

		root := &entities.User{ID: "root", Username: "root", IsSuperuser: true}
		permissions, err := service.Resolve(context.Background(), root)

		assert.NoError(t, err)
		assert.True(t, permissions.CanWrite(services.KindAmbulance, "amb-1"))
		assert.True(t, permissions.CanWrite(services.KindHospital, "hosp-1"))
		repo.AssertNotCalled(t, "ListGroupsForUser", mock.Anything, mock.Anything)
	})

	t.Run("equipment access derives from the granted holder", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		groups := []*entities.Group{{ID: "g1", Name: "crew", Priority: 1}}
		repo.On("ListGroupsForUser", mock.Anything, "user-1").Return(groups, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", EquipmentHolderID: "eh-1", CanRead: true, CanWrite: true},
		}, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindHospital).Return([]*entities.ObjectGrant{}, nil)
		repo.On("ListUserGrants", mock.Anything, "user-1", mock.Anything).Return([]*entities.ObjectGrant{}, nil)

		permissions, err := service.Resolve(context.Background(), newRegularUser())

		assert.NoError(t, err)
		assert.True(t, permissions.CanRead(services.KindEquipment, "eh-1"))
		assert.True(t, permissions.CanWrite(services.KindEquipment, "eh-1"))
	})

	t.Run("unknown kind is never readable", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		emptyGrants(repo, "user-1")

		permissions, err := service.Resolve(context.Background(), newRegularUser())

		assert.NoError(t, err)
		assert.False(t, permissions.CanRead("spaceship", "x"))
		assert.False(t, permissions.CanWrite("spaceship", "x"))
	})
}

func TestPermissionService_Cache(t *testing.T) {
	t.Run("second resolve is served from cache", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		emptyGrants(repo, "user-1")

		user := newRegularUser()
		_, err = service.Resolve(context.Background(), user)
		assert.NoError(t, err)
		_, err = service.Resolve(context.Background(), user)
		assert.NoError(t, err)

		repo.AssertNumberOfCalls(t, "ListGroupsForUser", 1)
	})

	t.Run("invalidation forces a recompute", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		emptyGrants(repo, "user-1")

		user := newRegularUser()
		_, err = service.Resolve(context.Background(), user)
		assert.NoError(t, err)

		service.InvalidateAll()

		_, err = service.Resolve(context.Background(), user)
		assert.NoError(t, err)

		repo.AssertNumberOfCalls(t, "ListGroupsForUser", 2)
	})

	t.Run("capacity bound evicts the oldest snapshot", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 2)
		assert.NoError(t, err)

		users := make([]*entities.User, 3)
		for i := range users {
			id := fmt.Sprintf("user-%d", i)
			users[i] = &entities.User{ID: id, Username: id}
			emptyGrants(repo, id)
		}

		for _, user := range users {
			_, err := service.Resolve(context.Background(), user)
			assert.NoError(t, err)
		}

		// user-0 was evicted by user-2, so this resolve recomputes
		_, err = service.Resolve(context.Background(), users[0])
		assert.NoError(t, err)

		repo.AssertNumberOfCalls(t, "ListGroupsForUser", 4)
	})
}

func TestPermissionService_Authorize(t *testing.T) {
	t.Run("unreadable object stays invisible on write", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		emptyGrants(repo, "user-1")

		err = service.AuthorizeWrite(context.Background(), newRegularUser(), services.KindAmbulance, "amb-1")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("readable but unwritable object is forbidden", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		groups := []*entities.Group{{ID: "g1", Name: "readers", Priority: 1}}
		repo.On("ListGroupsForUser", mock.Anything, "user-1").Return(groups, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", CanRead: true, CanWrite: false},
		}, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindHospital).Return([]*entities.ObjectGrant{}, nil)
		repo.On("ListUserGrants", mock.Anything, "user-1", mock.Anything).Return([]*entities.ObjectGrant{}, nil)

		err = service.AuthorizeWrite(context.Background(), newRegularUser(), services.KindAmbulance, "amb-1")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	})

	t.Run("granted write passes", func(t *testing.T) {
		repo := new(MockGrantRepository)
		service, err := services.NewPermissionService(repo, 10)
		assert.NoError(t, err)

		groups := []*entities.Group{{ID: "g1", Name: "writers", Priority: 1}}
		repo.On("ListGroupsForUser", mock.Anything, "user-1").Return(groups, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindAmbulance).Return([]*entities.ObjectGrant{
			{ObjectID: "amb-1", CanRead: true, CanWrite: true},
		}, nil)
		repo.On("ListGroupGrants", mock.Anything, "g1", services.KindHospital).Return([]*entities.ObjectGrant{}, nil)
		repo.On("ListUserGrants", mock.Anything, "user-1", mock.Anything).Return([]*entities.ObjectGrant{}, nil)

		assert.NoError(t, service.AuthorizeRead(context.Background(), newRegularUser(), services.KindAmbulance, "amb-1"))
		assert.NoError(t, service.AuthorizeWrite(context.Background(), newRegularUser(), services.KindAmbulance, "amb-1"))
	})
}
