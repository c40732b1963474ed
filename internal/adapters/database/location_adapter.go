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

var locationColumns = []interface{}{
	"id", "name", "type", "street", "city", "state", "zip_code", "country",
	"latitude", "longitude", "comment", "updated_by", "updated_at",
}

// LocationAdapter implements the LocationRepository interface
type LocationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLocationAdapter creates a new location adapter
func NewLocationAdapter(client *postgres.Client) repositories.LocationRepository {
	return &LocationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func locationRecord(l *entities.Location) goqu.Record {
	return goqu.Record{
		"id":         l.ID,
		"name":       l.Name,
		"type":       l.Type,
		"street":     l.Street,
		"city":       l.City,
		"state":      l.State,
		"zip_code":   l.ZipCode,
		"country":    l.Country,
		"latitude":   l.Point.Latitude,
		"longitude":  l.Point.Longitude,
		"comment":    l.Comment,
		"updated_by": l.UpdatedBy,
		"updated_at": l.UpdatedAt,
	}
}

func scanLocation(row interface{ Scan(...interface{}) error }) (*entities.Location, error) {
	location := &entities.Location{}
	err := row.Scan(
		&location.ID,
		&location.Name,
		&location.Type,
		&location.Street,
		&location.City,
		&location.State,
		&location.ZipCode,
		&location.Country,
		&location.Point.Latitude,
		&location.Point.Longitude,
		&location.Comment,
		&location.UpdatedBy,
		&location.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return location, nil
}

// Create persists a new location
func (a *LocationAdapter) Create(ctx context.Context, location *entities.Location) error {
	query, args, err := a.db.Insert("locations").Rows(locationRecord(location)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create location", err)
	}
	return nil
}

// GetByID retrieves a location by ID
func (a *LocationAdapter) GetByID(ctx context.Context, id string) (*entities.Location, error) {
	query, args, err := a.db.Select(locationColumns...).
		From("locations").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	location, err := scanLocation(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("location with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get location", err)
	}
	return location, nil
}

// Update persists a location row
func (a *LocationAdapter) Update(ctx context.Context, location *entities.Location) error {
	location.UpdatedAt = time.Now()

	query, args, err := a.db.Update("locations").
		Set(locationRecord(location)).
		Where(goqu.Ex{"id": location.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update location", err)
	}
	return requireRowsAffected(result, fmt.Sprintf("location with id %s not found", location.ID))
}

// List retrieves locations matching the filter
func (a *LocationAdapter) List(ctx context.Context, filter repositories.LocationFilter) ([]*entities.Location, error) {
	ds := a.db.Select(locationColumns...).From("locations")

	if filter.Type != "" {
		ds = ds.Where(goqu.Ex{"type": filter.Type})
	}

	ds = ds.Order(goqu.I("name").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list locations", err)
	}
	defer rows.Close()

	locations := []*entities.Location{}
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan location", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating locations", err)
	}
	return locations, nil
}
