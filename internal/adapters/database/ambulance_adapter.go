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

var ambulanceColumns = []interface{}{
	"id", "identifier", "capability", "status", "orientation",
	"latitude", "longitude", "timestamp", "location_client_id",
	"equipment_holder_id", "comment", "updated_by", "updated_at",
}

// AmbulanceAdapter implements the AmbulanceRepository interface
type AmbulanceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAmbulanceAdapter creates a new ambulance adapter
func NewAmbulanceAdapter(client *postgres.Client) repositories.AmbulanceRepository {
	return &AmbulanceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func ambulanceRecord(a *entities.Ambulance) goqu.Record {
	return goqu.Record{
		"id":                  a.ID,
		"identifier":          a.Identifier,
		"capability":          a.Capability,
		"status":              a.Status,
		"orientation":         a.Orientation,
		"latitude":            a.Location.Latitude,
		"longitude":           a.Location.Longitude,
		"timestamp":           a.Timestamp,
		"location_client_id":  a.LocationClientID,
		"equipment_holder_id": a.EquipmentHolderID,
		"comment":             a.Comment,
		"updated_by":          a.UpdatedBy,
		"updated_at":          a.UpdatedAt,
	}
}

func ambulanceUpdateRecord(u *entities.AmbulanceUpdate) goqu.Record {
	return goqu.Record{
		"id":           u.ID,
		"ambulance_id": u.AmbulanceID,
		"status":       u.Status,
		"orientation":  u.Orientation,
		"latitude":     u.Location.Latitude,
		"longitude":    u.Location.Longitude,
		"timestamp":    u.Timestamp,
		"comment":      u.Comment,
		"updated_by":   u.UpdatedBy,
		"updated_at":   u.UpdatedAt,
	}
}

func scanAmbulance(row interface{ Scan(...interface{}) error }) (*entities.Ambulance, error) {
	ambulance := &entities.Ambulance{}
	var locationClientID sql.NullString

	err := row.Scan(
		&ambulance.ID,
		&ambulance.Identifier,
		&ambulance.Capability,
		&ambulance.Status,
		&ambulance.Orientation,
		&ambulance.Location.Latitude,
		&ambulance.Location.Longitude,
		&ambulance.Timestamp,
		&locationClientID,
		&ambulance.EquipmentHolderID,
		&ambulance.Comment,
		&ambulance.UpdatedBy,
		&ambulance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if locationClientID.Valid {
		ambulance.LocationClientID = &locationClientID.String
	}
	return ambulance, nil
}

// Create persists a new ambulance together with its first history snapshot
func (a *AmbulanceAdapter) Create(ctx context.Context, ambulance *entities.Ambulance, update *entities.AmbulanceUpdate) error {
	insertAmbulance, args, err := a.db.Insert("ambulances").Rows(ambulanceRecord(ambulance)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	insertUpdate, updateArgs, err := a.db.Insert("ambulance_updates").Rows(ambulanceUpdateRecord(update)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build history insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertAmbulance, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("ambulance with identifier %s already exists", ambulance.Identifier))
		}
		return apperrors.NewInternalError("failed to create ambulance", err)
	}

	if _, err := tx.ExecContext(ctx, insertUpdate, updateArgs...); err != nil {
		return apperrors.NewInternalError("failed to append ambulance history", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}

// GetByID retrieves an ambulance by ID
func (a *AmbulanceAdapter) GetByID(ctx context.Context, id string) (*entities.Ambulance, error) {
	query, args, err := a.db.Select(ambulanceColumns...).
		From("ambulances").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	ambulance, err := scanAmbulance(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("ambulance with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get ambulance", err)
	}
	return ambulance, nil
}

// GetByIdentifier retrieves an ambulance by its unique identifier
func (a *AmbulanceAdapter) GetByIdentifier(ctx context.Context, identifier string) (*entities.Ambulance, error) {
	query, args, err := a.db.Select(ambulanceColumns...).
		From("ambulances").
		Where(goqu.Ex{"identifier": identifier}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	ambulance, err := scanAmbulance(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("ambulance with identifier %s not found", identifier))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get ambulance", err)
	}
	return ambulance, nil
}

// Update persists the ambulance row only
func (a *AmbulanceAdapter) Update(ctx context.Context, ambulance *entities.Ambulance) error {
	ambulance.UpdatedAt = time.Now()

	query, args, err := a.db.Update("ambulances").
		Set(ambulanceRecord(ambulance)).
		Where(goqu.Ex{"id": ambulance.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update ambulance", err)
	}
	return requireRowsAffected(result, fmt.Sprintf("ambulance with id %s not found", ambulance.ID))
}

// UpdateWithHistory persists the row and appends one history snapshot
func (a *AmbulanceAdapter) UpdateWithHistory(ctx context.Context, ambulance *entities.Ambulance, update *entities.AmbulanceUpdate) error {
	ambulance.UpdatedAt = time.Now()

	updateQuery, args, err := a.db.Update("ambulances").
		Set(ambulanceRecord(ambulance)).
		Where(goqu.Ex{"id": ambulance.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	insertQuery, insertArgs, err := a.db.Insert("ambulance_updates").Rows(ambulanceUpdateRecord(update)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build history insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateQuery, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update ambulance", err)
	}
	if err := requireRowsAffected(result, fmt.Sprintf("ambulance with id %s not found", ambulance.ID)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return apperrors.NewInternalError("failed to append ambulance history", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}

// Delete removes an ambulance; history rows cascade at the schema level
func (a *AmbulanceAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("ambulances").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete ambulance", err)
	}
	return requireRowsAffected(result, fmt.Sprintf("ambulance with id %s not found", id))
}

// List retrieves all ambulances ordered by identifier
func (a *AmbulanceAdapter) List(ctx context.Context) ([]*entities.Ambulance, error) {
	query, args, err := a.db.Select(ambulanceColumns...).
		From("ambulances").
		Order(goqu.I("identifier").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ambulances", err)
	}
	defer rows.Close()

	ambulances := []*entities.Ambulance{}
	for rows.Next() {
		ambulance, err := scanAmbulance(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan ambulance", err)
		}
		ambulances = append(ambulances, ambulance)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating ambulances", err)
	}
	return ambulances, nil
}

// ListUpdates retrieves history snapshots ordered by timestamp
func (a *AmbulanceAdapter) ListUpdates(ctx context.Context, ambulanceID string) ([]*entities.AmbulanceUpdate, error) {
	query, args, err := a.db.Select(
		"id", "ambulance_id", "status", "orientation",
		"latitude", "longitude", "timestamp", "comment",
		"updated_by", "updated_at",
	).From("ambulance_updates").
		Where(goqu.Ex{"ambulance_id": ambulanceID}).
		Order(goqu.I("timestamp").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ambulance updates", err)
	}
	defer rows.Close()

	updates := []*entities.AmbulanceUpdate{}
	for rows.Next() {
		u := &entities.AmbulanceUpdate{}
		err := rows.Scan(
			&u.ID,
			&u.AmbulanceID,
			&u.Status,
			&u.Orientation,
			&u.Location.Latitude,
			&u.Location.Longitude,
			&u.Timestamp,
			&u.Comment,
			&u.UpdatedBy,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan ambulance update", err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating ambulance updates", err)
	}
	return updates, nil
}
