package repositories

import (
	"context"

	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// GrantRepository defines the interface for permission grant data access.
// Object kinds are the entity names grants attach to ("ambulance", "hospital").
type GrantRepository interface {
	// ListGroupsForUser retrieves the user's groups ordered by ascending
	// priority then descending name
	ListGroupsForUser(ctx context.Context, userID string) ([]*entities.Group, error)

	// ListGroupGrants retrieves a group's grants for one object kind
	ListGroupGrants(ctx context.Context, groupID, objectKind string) ([]*entities.ObjectGrant, error)

	// ListUserGrants retrieves a user's direct grants for one object kind
	ListUserGrants(ctx context.Context, userID, objectKind string) ([]*entities.ObjectGrant, error)

	// ListAllGrantable retrieves every object of a kind as a full read/write
	// grant; used for superuser and staff resolution
	ListAllGrantable(ctx context.Context, objectKind string) ([]*entities.ObjectGrant, error)
}
