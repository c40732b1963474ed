package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/rescuenet/dispatch/internal/adapters/database"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/rescuenet/dispatch/pkg/errors"
)

var ambulanceTestColumns = []string{
	"id", "identifier", "capability", "status", "orientation",
	"latitude", "longitude", "timestamp", "location_client_id",
	"equipment_holder_id", "comment", "updated_by", "updated_at",
}

func setupAmbulanceAdapter(t *testing.T) (repositories.AmbulanceRepository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return database.NewAmbulanceAdapter(postgres.NewClientFromDB(mockDB)), mock
}

func ambulanceRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(ambulanceTestColumns).AddRow(
		"amb-1", "BA-12", "basic", "available", 90.0,
		32.5149, -117.0382, now, nil,
		"eh-1", "", "dispatcher-1", now,
	)
}

func TestAmbulanceAdapter_GetByID(t *testing.T) {
	t.Run("returns the scanned row", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		mock.ExpectQuery(`SELECT .* FROM "ambulances" WHERE`).WillReturnRows(ambulanceRow())

		ambulance, err := adapter.GetByID(context.Background(), "amb-1")

		assert.NoError(t, err)
		assert.Equal(t, "amb-1", ambulance.ID)
		assert.Equal(t, entities.AmbulanceStatusAvailable, ambulance.Status)
		assert.Equal(t, 32.5149, ambulance.Location.Latitude)
		assert.Nil(t, ambulance.LocationClientID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps no rows to not found", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		mock.ExpectQuery(`SELECT .* FROM "ambulances" WHERE`).
			WillReturnRows(sqlmock.NewRows(ambulanceTestColumns))

		_, err := adapter.GetByID(context.Background(), "ghost")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAmbulanceAdapter_Create(t *testing.T) {
	newAmbulance := func() (*entities.Ambulance, *entities.AmbulanceUpdate) {
		now := time.Now()
		ambulance := &entities.Ambulance{
			ID:                "amb-1",
			Identifier:        "BA-12",
			Capability:        entities.AmbulanceCapabilityBasic,
			Status:            entities.AmbulanceStatusUnknown,
			Location:          entities.Point{Latitude: 32.5149, Longitude: -117.0382},
			Timestamp:         now,
			EquipmentHolderID: "eh-1",
			UpdatedBy:         "dispatcher-1",
			UpdatedAt:         now,
		}
		update := &entities.AmbulanceUpdate{
			ID:          "upd-1",
			AmbulanceID: "amb-1",
			Status:      ambulance.Status,
			Location:    ambulance.Location,
			Timestamp:   now,
			UpdatedBy:   "dispatcher-1",
			UpdatedAt:   now,
		}
		return ambulance, update
	}

	t.Run("inserts row and history in one transaction", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "ambulances"`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO "ambulance_updates"`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		ambulance, update := newAmbulance()
		err := adapter.Create(context.Background(), ambulance, update)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate identifier maps to conflict", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "ambulances"`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		ambulance, update := newAmbulance()
		err := adapter.Create(context.Background(), ambulance, update)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})
}

func TestAmbulanceAdapter_Update(t *testing.T) {
	t.Run("zero rows affected maps to not found", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		mock.ExpectExec(`UPDATE "ambulances"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Update(context.Background(), &entities.Ambulance{ID: "ghost"})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAmbulanceAdapter_UpdateWithHistory(t *testing.T) {
	t.Run("updates row and appends history in one transaction", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "ambulances"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "ambulance_updates"`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		ambulance := &entities.Ambulance{ID: "amb-1"}
		update := &entities.AmbulanceUpdate{ID: "upd-2", AmbulanceID: "amb-1"}
		err := adapter.UpdateWithHistory(context.Background(), ambulance, update)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("history failure rolls the row update back", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "ambulances"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "ambulance_updates"`).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		ambulance := &entities.Ambulance{ID: "amb-1"}
		update := &entities.AmbulanceUpdate{ID: "upd-2", AmbulanceID: "amb-1"}
		err := adapter.UpdateWithHistory(context.Background(), ambulance, update)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAmbulanceAdapter_List(t *testing.T) {
	t.Run("scans every row", func(t *testing.T) {
		adapter, mock := setupAmbulanceAdapter(t)

		now := time.Now()
		rows := sqlmock.NewRows(ambulanceTestColumns).
			AddRow("amb-1", "BA-12", "basic", "available", 0.0, 32.5149, -117.0382, now, nil, "eh-1", "", "d1", now).
			AddRow("amb-2", "BA-13", "advanced", "out_of_service", 0.0, 32.5210, -117.0100, now, nil, "eh-2", "", "d1", now)
		mock.ExpectQuery(`SELECT .* FROM "ambulances" ORDER BY`).WillReturnRows(rows)

		ambulances, err := adapter.List(context.Background())

		assert.NoError(t, err)
		assert.Len(t, ambulances, 2)
		assert.Equal(t, "BA-13", ambulances[1].Identifier)
	})
}
