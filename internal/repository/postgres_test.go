package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nadmax/servicetime/internal/repository/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceColumns = []string{
	"service_id", "car_number_plate", "car_model", "service_type",
	"selected_tasks", "predicted_hours", "workload_percentage",
	"queue_position", "parts_availability", "status",
	"created_at", "completed_at", "wait_ms",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresServiceRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := &PostgresServiceRepository{db: db}
	return db, mock, repo
}

func TestNewPostgresServiceRepository(t *testing.T) {
	t.Run("successful connection", func(t *testing.T) {
		t.Skip("Integration test - requires real database")
	})

	t.Run("connection failure", func(t *testing.T) {
		_, err := NewPostgresServiceRepository("invalid connection string")
		assert.Error(t, err)
	})
}

func TestGetService(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	serviceID := "VOL20240501093000AB12"
	now := time.Now()
	completedAt := now.Add(2 * time.Hour)

	t.Run("successful retrieval", func(t *testing.T) {
		rows := sqlmock.NewRows(serviceColumns).AddRow(
			serviceID, "MH12AB1234", "XC60", "general",
			[]byte(`["oil_change","air_filter"]`), 4.9, 50.0,
			1, "All parts available", "completed",
			now, completedAt, 7200000,
		)

		mock.ExpectQuery("SELECT.*FROM service_history WHERE service_id").
			WithArgs(serviceID).
			WillReturnRows(rows)

		result, err := repo.GetService(ctx, serviceID)
		require.NoError(t, err)
		assert.Equal(t, serviceID, result.ServiceID)
		assert.Equal(t, []string{"oil_change", "air_filter"}, result.SelectedTasks)
		assert.Equal(t, 4.9, result.PredictedHours)
		require.NotNil(t, result.CompletedAt)
		require.NotNil(t, result.WaitMs)
		assert.Equal(t, 7200000, *result.WaitMs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("service not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT.*FROM service_history WHERE service_id").
			WithArgs("nonexistent").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetService(ctx, "nonexistent")
		assert.ErrorIs(t, err, ErrServiceNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid selected tasks JSON", func(t *testing.T) {
		rows := sqlmock.NewRows(serviceColumns).AddRow(
			serviceID, "MH12AB1234", "XC60", "general",
			[]byte("invalid json"), 4.9, 50.0,
			1, "All parts available", "waiting",
			now, nil, nil,
		)

		mock.ExpectQuery("SELECT.*FROM service_history WHERE service_id").
			WithArgs(serviceID).
			WillReturnRows(rows)

		_, err := repo.GetService(ctx, serviceID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal selected tasks")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveService(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now()

	t.Run("successful save", func(t *testing.T) {
		s := &models.ServiceRecord{
			ServiceID:          "VOL20240501093000AB12",
			CarNumberPlate:     "MH12AB1234",
			CarModel:           "XC60",
			ServiceType:        "general",
			SelectedTasks:      []string{"oil_change"},
			PredictedHours:     2.8,
			WorkloadPercentage: 37.5,
			QueuePosition:      1,
			PartsAvailability:  "All parts available",
			Status:             "waiting",
			CreatedAt:          now,
		}

		mock.ExpectExec("INSERT INTO service_history").
			WithArgs(
				s.ServiceID, s.CarNumberPlate, s.CarModel, s.ServiceType,
				[]byte(`["oil_change"]`), s.PredictedHours, s.WorkloadPercentage,
				s.QueuePosition, s.PartsAvailability, s.Status, s.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.SaveService(ctx, s)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO service_history").
			WillReturnError(errors.New("connection reset"))

		err := repo.SaveService(ctx, &models.ServiceRecord{ServiceID: "VOL1", CreatedAt: now})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompleteService(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	t.Run("successful completion", func(t *testing.T) {
		mock.ExpectExec("UPDATE service_history SET status = 'completed'").
			WithArgs(5400000, "VOL1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.CompleteService(ctx, "VOL1", 5400000)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLogPartsConsumption(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	t.Run("log consumption for a service", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO parts_consumption_log").
			WithArgs("VOL1", "XC60", []byte(`{"oil_filter":1}`)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.LogPartsConsumption(ctx, "VOL1", "XC60", map[string]int{"oil_filter": 1})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("log consumption without a service", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO parts_consumption_log").
			WithArgs(nil, "S90", []byte(`{"tires":4}`)).
			WillReturnResult(sqlmock.NewResult(2, 1))

		err := repo.LogPartsConsumption(ctx, "", "S90", map[string]int{"tires": 4})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetServiceStats(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	t.Run("get stats for last 24 hours", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"service_type", "status", "count",
			"avg_predicted_hours", "max_predicted_hours", "min_predicted_hours", "avg_wait_ms",
		}).
			AddRow("general", "completed", 12, 4.2, 7.5, 1.8, 3600000.0).
			AddRow("major", "waiting", 3, 11.3, 14.0, 9.1, 0.0)

		mock.ExpectQuery("SELECT.*FROM service_history WHERE created_at").
			WithArgs(24).
			WillReturnRows(rows)

		stats, err := repo.GetServiceStats(ctx, 24)
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "general", stats[0].ServiceType)
		assert.Equal(t, 12, stats[0].Count)
		assert.Equal(t, 14.0, stats[1].MaxPredictedHours)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no stats available", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"service_type", "status", "count",
			"avg_predicted_hours", "max_predicted_hours", "min_predicted_hours", "avg_wait_ms",
		})

		mock.ExpectQuery("SELECT.*FROM service_history WHERE created_at").
			WithArgs(1).
			WillReturnRows(rows)

		stats, err := repo.GetServiceStats(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetRecentServices(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now()

	t.Run("get recent services", func(t *testing.T) {
		rows := sqlmock.NewRows(serviceColumns).
			AddRow("VOL2", "KA5M99", "S90", "major",
				[]byte(`["brake_pads"]`), 9.8, 87.5,
				4, "Parts out of stock: brake_pads", "waiting",
				now, nil, nil).
			AddRow("VOL1", "MH12AB1234", "XC60", "general",
				[]byte(`["oil_change"]`), 2.8, 50.0,
				1, "All parts available", "completed",
				now.Add(-time.Hour), now, 3600000)

		mock.ExpectQuery("SELECT.*FROM service_history ORDER BY created_at DESC").
			WithArgs(10).
			WillReturnRows(rows)

		services, err := repo.GetRecentServices(ctx, 10)
		require.NoError(t, err)
		require.Len(t, services, 2)
		assert.Equal(t, "VOL2", services[0].ServiceID)
		assert.Nil(t, services[0].CompletedAt)
		assert.Nil(t, services[0].WaitMs)
		require.NotNil(t, services[1].WaitMs)
		assert.Equal(t, 3600000, *services[1].WaitMs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetServicesByModel(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	t.Run("get services by model", func(t *testing.T) {
		rows := sqlmock.NewRows(serviceColumns).
			AddRow("VOL1", "MH12AB1234", "XC60", "general",
				[]byte(`["oil_change"]`), 2.8, 50.0,
				1, "All parts available", "waiting",
				time.Now(), nil, nil)

		mock.ExpectQuery("SELECT.*FROM service_history WHERE UPPER\\(car_model\\)").
			WithArgs("xc60", 5).
			WillReturnRows(rows)

		services, err := repo.GetServicesByModel(ctx, "xc60", 5)
		require.NoError(t, err)
		require.Len(t, services, 1)
		assert.Equal(t, "XC60", services[0].CarModel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetPartsConsumption(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now()

	t.Run("get consumption history", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"service_id", "car_model", "parts", "consumed_at"}).
			AddRow("VOL1", "XC60", []byte(`{"oil_filter":1,"engine_oil":1}`), now).
			AddRow("", "XC60", []byte(`{"tires":4}`), now.Add(-time.Hour))

		mock.ExpectQuery("SELECT.*FROM parts_consumption_log WHERE UPPER\\(car_model\\)").
			WithArgs("XC60", 20).
			WillReturnRows(rows)

		history, err := repo.GetPartsConsumption(ctx, "XC60", 20)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, map[string]int{"oil_filter": 1, "engine_oil": 1}, history[0].Parts)
		assert.Equal(t, "", history[1].ServiceID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid parts JSON", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"service_id", "car_model", "parts", "consumed_at"}).
			AddRow("VOL1", "XC60", []byte("{"), now)

		mock.ExpectQuery("SELECT.*FROM parts_consumption_log").
			WithArgs("XC60", 20).
			WillReturnRows(rows)

		_, err := repo.GetPartsConsumption(ctx, "XC60", 20)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
