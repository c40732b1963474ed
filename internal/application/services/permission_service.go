package services

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/internal/infrastructure/observability"
	"github.com/rescuenet/dispatch/pkg/errors"
	"github.com/rs/zerolog/log"
)

// grantedKinds are the object kinds grants attach to directly. Equipment is
// absent: its access always derives from a granted holder.
var grantedKinds = []string{KindAmbulance, KindHospital}

// PermissionService resolves a user's grant snapshot and caches it in a
// bounded LRU. Structural changes to the grantable object set invalidate
// the whole cache.
type PermissionService struct {
	grants repositories.GrantRepository
	cache  *lru.Cache[string, *Permissions]
}

// NewPermissionService creates a new permission service with a cache of the
// given capacity.
func NewPermissionService(grants repositories.GrantRepository, cacheSize int) (*PermissionService, error) {
	cache, err := lru.New[string, *Permissions](cacheSize)
	if err != nil {
		return nil, errors.NewInternalError("failed to create permission cache", err)
	}
	return &PermissionService{grants: grants, cache: cache}, nil
}

// Resolve returns the user's permission snapshot, from cache when present.
func (s *PermissionService) Resolve(ctx context.Context, user *entities.User) (*Permissions, error) {
	if cached, ok := s.cache.Get(user.Username); ok {
		observability.PermissionCacheHits.Inc()
		return cached, nil
	}
	observability.PermissionCacheMisses.Inc()

	permissions, err := s.resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	s.cache.Add(user.Username, permissions)
	return permissions, nil
}

// resolve builds the snapshot from scratch. Group grants apply in ascending
// priority then descending name order so later groups overwrite earlier
// ones per object; user grants apply last and overwrite all.
func (s *PermissionService) resolve(ctx context.Context, user *entities.User) (*Permissions, error) {
	permissions := newPermissions()

	if user.IsSuperuser || user.IsStaff {
		for _, kind := range grantedKinds {
			all, err := s.grants.ListAllGrantable(ctx, kind)
			if err != nil {
				return nil, err
			}
			permissions.merge(kind, all)
		}
		permissions.freeze()
		return permissions, nil
	}

	groups, err := s.grants.ListGroupsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	for _, group := range groups {
		for _, kind := range grantedKinds {
			grants, err := s.grants.ListGroupGrants(ctx, group.ID, kind)
			if err != nil {
				return nil, err
			}
			permissions.merge(kind, grants)
		}
	}

	for _, kind := range grantedKinds {
		grants, err := s.grants.ListUserGrants(ctx, user.ID, kind)
		if err != nil {
			return nil, err
		}
		permissions.merge(kind, grants)
	}

	permissions.freeze()
	return permissions, nil
}

// CanRead resolves and checks read access in one step.
func (s *PermissionService) CanRead(ctx context.Context, user *entities.User, kind, objectID string) (bool, error) {
	permissions, err := s.Resolve(ctx, user)
	if err != nil {
		return false, err
	}
	return permissions.CanRead(kind, objectID), nil
}

// CanWrite resolves and checks write access in one step.
func (s *PermissionService) CanWrite(ctx context.Context, user *entities.User, kind, objectID string) (bool, error) {
	permissions, err := s.Resolve(ctx, user)
	if err != nil {
		return false, err
	}
	return permissions.CanWrite(kind, objectID), nil
}

// AuthorizeRead fails with not-found when the user cannot read the object,
// so callers never learn whether an unreadable object exists.
func (s *PermissionService) AuthorizeRead(ctx context.Context, user *entities.User, kind, objectID string) error {
	canRead, err := s.CanRead(ctx, user, kind, objectID)
	if err != nil {
		return err
	}
	if !canRead {
		return errors.NewNotFoundError(fmt.Sprintf("%s with id %s not found", kind, objectID))
	}
	return nil
}

// AuthorizeWrite distinguishes the readable-but-not-writable case, which is
// forbidden, from the unreadable case, which stays not-found.
func (s *PermissionService) AuthorizeWrite(ctx context.Context, user *entities.User, kind, objectID string) error {
	permissions, err := s.Resolve(ctx, user)
	if err != nil {
		return err
	}
	if !permissions.CanRead(kind, objectID) {
		return errors.NewNotFoundError(fmt.Sprintf("%s with id %s not found", kind, objectID))
	}
	if !permissions.CanWrite(kind, objectID) {
		return errors.NewForbiddenError(fmt.Sprintf("write access to %s %s denied", kind, objectID))
	}
	return nil
}

// InvalidateAll drops every cached snapshot.
func (s *PermissionService) InvalidateAll() {
	s.cache.Purge()
	log.Debug().Msg("permission cache invalidated")
}
