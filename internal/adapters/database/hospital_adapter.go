package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/rescuenet/dispatch/pkg/errors"
)

var hospitalColumns = []interface{}{
	"id", "name", "latitude", "longitude", "equipment_holder_id",
	"comment", "updated_by", "updated_at",
}

// HospitalAdapter implements the HospitalRepository interface
type HospitalAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewHospitalAdapter creates a new hospital adapter
func NewHospitalAdapter(client *postgres.Client) repositories.HospitalRepository {
	return &HospitalAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanHospital(row interface{ Scan(...interface{}) error }) (*entities.Hospital, error) {
	hospital := &entities.Hospital{}
	err := row.Scan(
		&hospital.ID,
		&hospital.Name,
		&hospital.Location.Latitude,
		&hospital.Location.Longitude,
		&hospital.EquipmentHolderID,
		&hospital.Comment,
		&hospital.UpdatedBy,
		&hospital.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return hospital, nil
}

// Create persists a new hospital
func (a *HospitalAdapter) Create(ctx context.Context, hospital *entities.Hospital) error {
	record := goqu.Record{
		"id":                  hospital.ID,
		"name":                hospital.Name,
		"latitude":            hospital.Location.Latitude,
		"longitude":           hospital.Location.Longitude,
		"equipment_holder_id": hospital.EquipmentHolderID,
		"comment":             hospital.Comment,
		"updated_by":          hospital.UpdatedBy,
		"updated_at":          hospital.UpdatedAt,
	}

	query, args, err := a.db.Insert("hospitals").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create hospital", err)
	}
	return nil
}

// GetByID retrieves a hospital by ID
func (a *HospitalAdapter) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	query, args, err := a.db.Select(hospitalColumns...).
		From("hospitals").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	hospital, err := scanHospital(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hospital with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get hospital", err)
	}
	return hospital, nil
}

// Delete removes a hospital
func (a *HospitalAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("hospitals").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete hospital", err)
	}
	return requireRowsAffected(result, fmt.Sprintf("hospital with id %s not found", id))
}

// List retrieves all hospitals
func (a *HospitalAdapter) List(ctx context.Context) ([]*entities.Hospital, error) {
	query, args, err := a.db.Select(hospitalColumns...).
		From("hospitals").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list hospitals", err)
	}
	defer rows.Close()

	hospitals := []*entities.Hospital{}
	for rows.Next() {
		hospital, err := scanHospital(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan hospital", err)
		}
		hospitals = append(hospitals, hospital)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating hospitals", err)
	}
	return hospitals, nil
}
