// Package service orchestrates a prediction request across the catalog, the
// workload tracker, the estimator and the parts resolver, and exposes the
// inventory and queue operations behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nadmax/servicetime/internal/catalog"
	"github.com/nadmax/servicetime/internal/estimator"
	"github.com/nadmax/servicetime/internal/inventory"
	"github.com/nadmax/servicetime/internal/metrics"
	"github.com/nadmax/servicetime/internal/notify"
	"github.com/nadmax/servicetime/internal/parts"
	"github.com/nadmax/servicetime/internal/repository"
	"github.com/nadmax/servicetime/internal/repository/models"
	"github.com/nadmax/servicetime/internal/workload"
)

const Name = "Volvo Service Time Predictor"

const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"
)

// AlertSubmitter accepts low stock alerts for asynchronous delivery.
type AlertSubmitter interface {
	Submit(alert notify.Alert) bool
}

type Prediction struct {
	Success              bool     `json:"success"`
	ServiceID            string   `json:"service_id"`
	PredictedServiceTime float64  `json:"predicted_service_time"`
	WorkloadPercentage   float64  `json:"workload_percentage"`
	WorkloadLevel        string   `json:"workload_level"`
	QueuePosition        int      `json:"queue_position"`
	PartsAvailability    string   `json:"parts_availability"`
	CarModel             string   `json:"car_model"`
	CarNumberPlate       string   `json:"car_number_plate"`
	ServiceType          string   `json:"service_type"`
	LastServiceDays      int      `json:"last_service_days"`
	SelectedTasks        []string `json:"selected_tasks"`
	NumberOfTasks        int      `json:"number_of_tasks"`
}

type Completion struct {
	ServiceID string `json:"service_id"`
	Completed bool   `json:"completed"`
	WaitMs    int64  `json:"wait_ms,omitempty"`
}

type ModelInventory struct {
	Model string               `json:"model"`
	Parts inventory.ModelStock `json:"parts"`
}

type Health struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Service         string    `json:"service"`
	InventoryModels []string  `json:"inventory_models"`
	TotalWorkers    int       `json:"total_workers"`
	CurrentQueue    int       `json:"current_queue"`
}

type Service struct {
	catalog   *catalog.Catalog
	inventory *inventory.Store
	tracker   *workload.Tracker
	resolver  *parts.Resolver
	predictor estimator.Predictor
	history   repository.ServiceRepository
	alerts    AlertSubmitter
	newID     IDGenerator
	now       func() time.Time
}

type Option func(*Service)

// WithHistory records predictions and completions. History writes are best
// effort and never fail a request.
func WithHistory(repo repository.ServiceRepository) Option {
	return func(s *Service) {
		s.history = repo
	}
}

func WithAlerts(a AlertSubmitter) Option {
	return func(s *Service) {
		s.alerts = a
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(c *catalog.Catalog, inv *inventory.Store, tracker *workload.Tracker, predictor estimator.Predictor, opts ...Option) *Service {
	s := &Service{
		catalog:   c,
		inventory: inv,
		tracker:   tracker,
		resolver:  parts.NewResolver(inv, c),
		predictor: predictor,
		newID:     NewServiceID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func WorkloadLevel(percentage float64) string {
	switch {
	case percentage < 40:
		return LevelLow
	case percentage < 70:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Predict validates the request, estimates the service duration and queues
// the service. Nothing is queued when validation or estimation fails.
func (s *Service) Predict(ctx context.Context, req PredictionRequest) (Prediction, error) {
	if err := req.Validate(); err != nil {
		return Prediction{}, err
	}

	snapshot, err := s.tracker.Snapshot(ctx)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to read workload: %w", err)
	}

	features := estimator.Features{
		CarModel:           req.CarModel,
		ManufactureYear:    *req.ManufactureYear,
		FuelType:           req.FuelType,
		ServiceType:        req.ServiceType,
		LastServiceDays:    *req.LastServiceDays,
		TotalKilometers:    *req.TotalKilometers,
		KmSinceLastService: *req.KmSinceLastService,
		SelectedTasks:      req.SelectedTasks,
		NumberOfTasks:      len(req.SelectedTasks),
		WorkerAvailability: snapshot.WorkerAvailability,
	}

	hours, err := s.predictor.Predict(ctx, features)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to predict service time: %w", err)
	}

	now := s.now()
	serviceID := s.newID(now)
	position, err := s.tracker.Enqueue(ctx, serviceID)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to queue service: %w", err)
	}

	availability := s.resolver.CheckAvailability(req.CarModel, req.ServiceType, req.SelectedTasks)
	metrics.RecordPartsCheck(availability.Class())

	level := WorkloadLevel(snapshot.WorkloadPercentage)
	metrics.RecordPrediction(req.ServiceType, level, hours)

	prediction := Prediction{
		Success:              true,
		ServiceID:            serviceID,
		PredictedServiceTime: hours,
		WorkloadPercentage:   snapshot.WorkloadPercentage,
		WorkloadLevel:        level,
		QueuePosition:        position,
		PartsAvailability:    availability.Status,
		CarModel:             req.CarModel,
		CarNumberPlate:       req.CarNumberPlate,
		ServiceType:          req.ServiceType,
		LastServiceDays:      *req.LastServiceDays,
		SelectedTasks:        req.SelectedTasks,
		NumberOfTasks:        len(req.SelectedTasks),
	}

	s.saveHistory(ctx, prediction, now)

	return prediction, nil
}

func (s *Service) saveHistory(ctx context.Context, p Prediction, createdAt time.Time) {
	if s.history == nil {
		return
	}

	record := &models.ServiceRecord{
		ServiceID:          p.ServiceID,
		CarNumberPlate:     p.CarNumberPlate,
		CarModel:           p.CarModel,
		ServiceType:        p.ServiceType,
		SelectedTasks:      p.SelectedTasks,
		PredictedHours:     p.PredictedServiceTime,
		WorkloadPercentage: p.WorkloadPercentage,
		QueuePosition:      p.QueuePosition,
		PartsAvailability:  p.PartsAvailability,
		Status:             string(workload.StatusWaiting),
		CreatedAt:          createdAt,
	}
	if err := s.history.SaveService(ctx, record); err != nil {
		log.Printf("failed to save service %s to history: %v", p.ServiceID, err)
	}
}

// Complete removes a service from the queue. Unknown ids are not an error.
func (s *Service) Complete(ctx context.Context, serviceID string) (Completion, error) {
	entry, ok, err := s.tracker.Complete(ctx, serviceID)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to complete service: %w", err)
	}
	if !ok {
		return Completion{ServiceID: serviceID}, nil
	}

	wait := max(0, s.now().Sub(entry.EnqueuedAt))
	metrics.RecordServiceCompleted(wait)

	if s.history != nil {
		if err := s.history.CompleteService(ctx, serviceID, int(wait.Milliseconds())); err != nil {
			log.Printf("failed to record completion of %s: %v", serviceID, err)
		}
	}

	return Completion{
		ServiceID: serviceID,
		Completed: true,
		WaitMs:    wait.Milliseconds(),
	}, nil
}

func (s *Service) SystemStatus(ctx context.Context) (workload.Snapshot, error) {
	return s.tracker.Snapshot(ctx)
}

func (s *Service) Queue(ctx context.Context) ([]workload.Entry, error) {
	return s.tracker.Entries(ctx)
}

func (s *Service) Inventory() inventory.Snapshot {
	return s.inventory.Status()
}

func (s *Service) InventoryForModel(model string) (ModelInventory, error) {
	key, stock, err := s.inventory.ModelStatus(model)
	if err != nil {
		return ModelInventory{}, err
	}

	return ModelInventory{Model: key, Parts: stock}, nil
}

// Tasks returns the catalog keyed by category id.
func (s *Service) Tasks() map[string][]catalog.Task {
	categories := s.catalog.Categories()
	out := make(map[string][]catalog.Task, len(categories))
	for _, c := range categories {
		out[c.ID] = c.Tasks
	}

	return out
}

// CheckParts classifies the parts needed by tasks. With no tasks the
// standard parts package for serviceType is checked instead.
func (s *Service) CheckParts(model, serviceType string, tasks []string) parts.Result {
	var result parts.Result
	if len(tasks) == 0 {
		result = s.resolver.CheckServicePackage(model, serviceType)
	} else {
		result = s.resolver.CheckAvailability(model, serviceType, uniqueTasks(tasks))
	}
	metrics.RecordPartsCheck(result.Class())

	return result
}

// ConsumeParts takes used parts out of stock and raises a low stock alert
// when any of them ends at or below its threshold. A persistence failure is
// returned after the in-memory stock, history and alerts have been updated.
func (s *Service) ConsumeParts(ctx context.Context, serviceID, model string, used map[string]int) (inventory.ConsumeResult, error) {
	result, err := s.inventory.Consume(ctx, model, used)
	var persistErr error
	switch {
	case errors.Is(err, inventory.ErrPersistence):
		metrics.RecordInventoryPersistFailure()
		persistErr = err
	case err != nil:
		return inventory.ConsumeResult{}, err
	}

	consumed := make(map[string]int, len(used))
	for part, qty := range used {
		consumed[part] = qty
	}
	for _, part := range result.Unknown {
		delete(consumed, part)
	}
	metrics.RecordPartsConsumed(result.Model, consumed)

	if s.history != nil && len(consumed) > 0 {
		if err := s.history.LogPartsConsumption(ctx, serviceID, result.Model, consumed); err != nil {
			log.Printf("failed to log parts consumption for %s: %v", result.Model, err)
		}
	}

	if len(result.Levels) > 0 && s.alerts != nil {
		if !s.alerts.Submit(notify.NewLowStockAlert(result)) {
			log.Printf("low stock alert for %s was not queued", result.Model)
		}
	}

	return result, persistErr
}

func (s *Service) AddModel(ctx context.Context, name string, stock inventory.ModelStock) error {
	err := s.inventory.AddModel(ctx, name, stock)
	if errors.Is(err, inventory.ErrPersistence) {
		metrics.RecordInventoryPersistFailure()
	}

	return err
}

func (s *Service) Health(ctx context.Context) Health {
	h := Health{
		Status:          "healthy",
		Timestamp:       s.now(),
		Service:         Name,
		InventoryModels: s.inventory.Models(),
		TotalWorkers:    s.tracker.TotalWorkers(),
	}

	entries, err := s.tracker.Entries(ctx)
	if err != nil {
		log.Printf("health: failed to read queue: %v", err)
		h.Status = "degraded"
		return h
	}
	h.CurrentQueue = len(entries)

	return h
}

func (s *Service) Tracker() *workload.Tracker {
	return s.tracker
}

// History returns the service history store, nil when history is disabled.
func (s *Service) History() repository.ServiceRepository {
	return s.history
}
