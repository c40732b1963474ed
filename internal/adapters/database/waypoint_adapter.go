package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/rescuenet/dispatch/pkg/errors"
)

var waypointColumns = []interface{}{
	"id", "ambulance_call_id", "waypoint_order", "status", "active",
	"location_id", "updated_by", "updated_at",
}

// WaypointAdapter implements the WaypointRepository interface
type WaypointAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewWaypointAdapter creates a new waypoint adapter
func NewWaypointAdapter(client *postgres.Client) repositories.WaypointRepository {
	return &WaypointAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func waypointRecord(w *entities.Waypoint) goqu.Record {
	return goqu.Record{
		"id":                w.ID,
		"ambulance_call_id": w.AmbulanceCallID,
		"waypoint_order":    w.Order,
		"status":            w.Status,
		"active":            w.Active,
		"location_id":       w.LocationID,
		"updated_by":        w.UpdatedBy,
		"updated_at":        w.UpdatedAt,
	}
}

func scanWaypoint(row interface{ Scan(...interface{}) error }) (*entities.Waypoint, error) {
	waypoint := &entities.Waypoint{}
	var locationID sql.NullString

	err := row.Scan(
		&waypoint.ID,
		&waypoint.AmbulanceCallID,
		&waypoint.Order,
		&waypoint.Status,
		&waypoint.Active,
		&locationID,
		&waypoint.UpdatedBy,
		&waypoint.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if locationID.Valid {
		waypoint.LocationID = &locationID.String
	}
	return waypoint, nil
}

// Create persists a new waypoint
func (a *WaypointAdapter) Create(ctx context.Context, waypoint *entities.Waypoint) error {
	query, args, err := a.db.Insert("waypoints").Rows(waypointRecord(waypoint)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create waypoint", err)
	}
	return nil
}

// GetByID retrieves a waypoint by ID
func (a *WaypointAdapter) GetByID(ctx context.Context, id string) (*entities.Waypoint, error) {
	query, args, err := a.db.Select(waypointColumns...).
		From("waypoints").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	waypoint, err := scanWaypoint(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("waypoint with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get waypoint", err)
	}
	return waypoint, nil
}

// Update persists a waypoint row
func (a *WaypointAdapter) Update(ctx context.Context, waypoint *entities.Waypoint) error {
	waypoint.UpdatedAt = time.Now()

	query, args, err := a.db.Update("waypoints").
		Set(waypointRecord(waypoint)).
		Where(goqu.Ex{"id": waypoint.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update waypoint", err)
	}
	return requireRowsAffected(result, fmt.Sprintf("waypoint with id %s not found", waypoint.ID))
}

// ListByAssignment retrieves waypoints for an assignment by ascending order
func (a *WaypointAdapter) ListByAssignment(ctx context.Context, ambulanceCallID string, activeOnly bool) ([]*entities.Waypoint, error) {
	ds := a.db.Select(waypointColumns...).
		From("waypoints").
		Where(goqu.Ex{"ambulance_call_id": ambulanceCallID})

	if activeOnly {
		ds = ds.Where(goqu.Ex{"active": true})
	}

	query, args, err := ds.Order(goqu.I("waypoint_order").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list waypoints", err)
	}
	defer rows.Close()

	waypoints := []*entities.Waypoint{}
	for rows.Next() {
		waypoint, err := scanWaypoint(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan waypoint", err)
		}
		waypoints = append(waypoints, waypoint)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating waypoints", err)
	}
	return waypoints, nil
}
