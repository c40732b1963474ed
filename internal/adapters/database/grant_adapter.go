package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/rescuenet/dispatch/pkg/errors"
)

// grantTables maps an object kind to its permission and object tables.
// A fixed table, declared once, instead of assembling table names at runtime.
type grantTableSet struct {
	objectTable string
	groupTable  string
	userTable   string
	idColumn    string
}

var grantTables = map[string]grantTableSet{
	"ambulance": {
		objectTable: "ambulances",
		groupTable:  "group_ambulance_permissions",
		userTable:   "user_ambulance_permissions",
		idColumn:    "ambulance_id",
	},
	"hospital": {
		objectTable: "hospitals",
		groupTable:  "group_hospital_permissions",
		userTable:   "user_hospital_permissions",
		idColumn:    "hospital_id",
	},
}

// GrantAdapter implements the GrantRepository interface
type GrantAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewGrantAdapter creates a new grant adapter
func NewGrantAdapter(client *postgres.Client) repositories.GrantRepository {
	return &GrantAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListGroupsForUser retrieves the user's groups ordered by ascending
// priority then descending name
func (a *GrantAdapter) ListGroupsForUser(ctx context.Context, userID string) ([]*entities.Group, error) {
	query, args, err := a.db.Select("g.id", "g.name", "g.priority").
		From(goqu.T("groups").As("g")).
		Join(goqu.T("user_groups").As("ug"), goqu.On(goqu.Ex{"ug.group_id": goqu.I("g.id")})).
		Where(goqu.Ex{"ug.user_id": userID}).
		Order(goqu.I("g.priority").Asc(), goqu.I("g.name").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list groups", err)
	}
	defer rows.Close()

	groups := []*entities.Group{}
	for rows.Next() {
		group := &entities.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Priority); err != nil {
			return nil, apperrors.NewInternalError("failed to scan group", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating groups", err)
	}
	return groups, nil
}

// ListGroupGrants retrieves a group's grants for one object kind
func (a *GrantAdapter) ListGroupGrants(ctx context.Context, groupID, objectKind string) ([]*entities.ObjectGrant, error) {
	tables, ok := grantTables[objectKind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown object kind %q", objectKind))
	}
	return a.listGrants(ctx, tables, tables.groupTable, goqu.Ex{"p.group_id": groupID})
}

// ListUserGrants retrieves a user's direct grants for one object kind
func (a *GrantAdapter) ListUserGrants(ctx context.Context, userID, objectKind string) ([]*entities.ObjectGrant, error) {
	tables, ok := grantTables[objectKind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown object kind %q", objectKind))
	}
	return a.listGrants(ctx, tables, tables.userTable, goqu.Ex{"p.user_id": userID})
}

func (a *GrantAdapter) listGrants(ctx context.Context, tables grantTableSet, grantTable string, where goqu.Ex) ([]*entities.ObjectGrant, error) {
	query, args, err := a.db.Select(
		goqu.I("p."+tables.idColumn),
		goqu.I("o.equipment_holder_id"),
		goqu.I("p.can_read"),
		goqu.I("p.can_write"),
	).
		From(goqu.T(grantTable).As("p")).
		Join(goqu.T(tables.objectTable).As("o"), goqu.On(goqu.Ex{"o.id": goqu.I("p." + tables.idColumn)})).
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list grants", err)
	}
	defer rows.Close()

	grants := []*entities.ObjectGrant{}
	for rows.Next() {
		grant := &entities.ObjectGrant{}
		if err := rows.Scan(&grant.ObjectID, &grant.EquipmentHolderID, &grant.CanRead, &grant.CanWrite); err != nil {
			return nil, apperrors.NewInternalError("failed to scan grant", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating grants", err)
	}
	return grants, nil
}

// ListAllGrantable retrieves every object of a kind as a full read/write grant
func (a *GrantAdapter) ListAllGrantable(ctx context.Context, objectKind string) ([]*entities.ObjectGrant, error) {
	tables, ok := grantTables[objectKind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown object kind %q", objectKind))
	}

	query, args, err := a.db.Select("id", "equipment_holder_id").
		From(tables.objectTable).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list objects", err)
	}
	defer rows.Close()

	grants := []*entities.ObjectGrant{}
	for rows.Next() {
		grant := &entities.ObjectGrant{CanRead: true, CanWrite: true}
		if err := rows.Scan(&grant.ObjectID, &grant.EquipmentHolderID); err != nil {
			return nil, apperrors.NewInternalError("failed to scan object", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating objects", err)
	}
	return grants, nil
}
