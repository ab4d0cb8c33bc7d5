// Package repository provides PostgreSQL persistence for service history.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/nadmax/servicetime/internal/repository/models"
)

var ErrServiceNotFound = errors.New("service not found")

type PostgresServiceRepository struct {
	db *sql.DB
}

func NewPostgresServiceRepository(connectionString string) (*PostgresServiceRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresServiceRepository{db: db}, nil
}

func (r *PostgresServiceRepository) GetService(ctx context.Context, serviceID string) (*models.ServiceRecord, error) {
	query := `
		SELECT
			service_id, car_number_plate, car_model, service_type,
			selected_tasks, predicted_hours, workload_percentage,
			queue_position, parts_availability, status,
			created_at, completed_at, wait_ms
		FROM service_history
		WHERE service_id = $1
	`

	var s models.ServiceRecord
	var tasks []byte
	var completedAt sql.NullTime
	var waitMs sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, serviceID).Scan(
		&s.ServiceID,
		&s.CarNumberPlate,
		&s.CarModel,
		&s.ServiceType,
		&tasks,
		&s.PredictedHours,
		&s.WorkloadPercentage,
		&s.QueuePosition,
		&s.PartsAvailability,
		&s.Status,
		&s.CreatedAt,
		&completedAt,
		&waitMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tasks, &s.SelectedTasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selected tasks: %w", err)
	}

	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	if waitMs.Valid {
		ms := int(waitMs.Int64)
		s.WaitMs = &ms
	}

	return &s, nil
}

func (r *PostgresServiceRepository) SaveService(ctx context.Context, s *models.ServiceRecord) error {
	tasks, err := json.Marshal(s.SelectedTasks)
	if err != nil {
		return fmt.Errorf("failed to marshal selected tasks: %w", err)
	}

	query := `
		INSERT INTO service_history (
			service_id, car_number_plate, car_model, service_type,
			selected_tasks, predicted_hours, workload_percentage,
			queue_position, parts_availability, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (service_id) DO UPDATE SET
			status = EXCLUDED.status,
			parts_availability = EXCLUDED.parts_availability
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		s.ServiceID,
		s.CarNumberPlate,
		s.CarModel,
		s.ServiceType,
		tasks,
		s.PredictedHours,
		s.WorkloadPercentage,
		s.QueuePosition,
		s.PartsAvailability,
		s.Status,
		s.CreatedAt,
	)

	return err
}

func (r *PostgresServiceRepository) CompleteService(ctx context.Context, serviceID string, waitMs int) error {
	query := `
		UPDATE service_history
		SET status = 'completed',
		    completed_at = NOW(),
		    wait_ms = $1
		WHERE service_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, waitMs, serviceID)

	return err
}

func (r *PostgresServiceRepository) LogPartsConsumption(ctx context.Context, serviceID, carModel string, parts map[string]int) error {
	payload, err := json.Marshal(parts)
	if err != nil {
		return fmt.Errorf("failed to marshal parts: %w", err)
	}

	query := `
		INSERT INTO parts_consumption_log (
			service_id, car_model, parts, consumed_at
		) VALUES ($1, $2, $3, NOW())
	`

	var serviceIDVal any
	if serviceID == "" {
		serviceIDVal = nil
	} else {
		serviceIDVal = serviceID
	}

	_, err = r.db.ExecContext(ctx, query, serviceIDVal, carModel, payload)

	return err
}

func (r *PostgresServiceRepository) GetServiceStats(ctx context.Context, hours int) ([]models.ServiceStats, error) {
	query := `
		SELECT
			service_type, status, COUNT(*) as count,
			COALESCE(AVG(predicted_hours), 0) as avg_predicted_hours,
			COALESCE(MAX(predicted_hours), 0) as max_predicted_hours,
			COALESCE(MIN(predicted_hours), 0) as min_predicted_hours,
			COALESCE(AVG(wait_ms), 0) as avg_wait_ms
		FROM service_history
		WHERE created_at > NOW() - INTERVAL '1 hour' * $1
		GROUP BY service_type, status
		ORDER BY service_type, status
	`
	rows, err := r.db.QueryContext(ctx, query, hours)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var stats []models.ServiceStats
	for rows.Next() {
		var s models.ServiceStats
		if err := rows.Scan(
			&s.ServiceType,
			&s.Status,
			&s.Count,
			&s.AvgPredictedHours,
			&s.MaxPredictedHours,
			&s.MinPredictedHours,
			&s.AvgWaitMs,
		); err != nil {
			return nil, err
		}

		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (r *PostgresServiceRepository) GetRecentServices(ctx context.Context, limit int) ([]models.ServiceRecord, error) {
	query := `
		SELECT
			service_id, car_number_plate, car_model, service_type,
			selected_tasks, predicted_hours, workload_percentage,
			queue_position, parts_availability, status,
			created_at, completed_at, wait_ms
		FROM service_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	return r.queryServices(ctx, query, limit)
}

func (r *PostgresServiceRepository) GetServicesByModel(ctx context.Context, carModel string, limit int) ([]models.ServiceRecord, error) {
	query := `
		SELECT
			service_id, car_number_plate, car_model, service_type,
			selected_tasks, predicted_hours, workload_percentage,
			queue_position, parts_availability, status,
			created_at, completed_at, wait_ms
		FROM service_history
		WHERE UPPER(car_model) = UPPER($1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	return r.queryServices(ctx, query, carModel, limit)
}

func (r *PostgresServiceRepository) queryServices(ctx context.Context, query string, args ...any) ([]models.ServiceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var services []models.ServiceRecord
	for rows.Next() {
		var s models.ServiceRecord
		var tasks []byte
		if err := rows.Scan(
			&s.ServiceID,
			&s.CarNumberPlate,
			&s.CarModel,
			&s.ServiceType,
			&tasks,
			&s.PredictedHours,
			&s.WorkloadPercentage,
			&s.QueuePosition,
			&s.PartsAvailability,
			&s.Status,
			&s.CreatedAt,
			&s.CompletedAt,
			&s.WaitMs,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(tasks, &s.SelectedTasks); err != nil {
			log.Printf("failed to unmarshal selected tasks for %s: %v", s.ServiceID, err)
		}

		services = append(services, s)
	}

	return services, rows.Err()
}

func (r *PostgresServiceRepository) GetPartsConsumption(ctx context.Context, carModel string, limit int) ([]models.PartsConsumption, error) {
	query := `
		SELECT
			COALESCE(service_id, ''), car_model, parts, consumed_at
		FROM parts_consumption_log
		WHERE UPPER(car_model) = UPPER($1)
		ORDER BY consumed_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, carModel, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var history []models.PartsConsumption
	for rows.Next() {
		var c models.PartsConsumption
		var parts []byte
		if err := rows.Scan(
			&c.ServiceID,
			&c.CarModel,
			&parts,
			&c.ConsumedAt,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(parts, &c.Parts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parts: %w", err)
		}

		history = append(history, c)
	}

	return history, rows.Err()
}

func (r *PostgresServiceRepository) DB() *sql.DB {
	return r.db
}

func (r *PostgresServiceRepository) Close() error {
	return r.db.Close()
}
