// Package dashboard implements the monitoring endpoints for shop workload, the service queue and service history.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nadmax/servicetime/internal/httputil"
	"github.com/nadmax/servicetime/internal/repository"
	"github.com/nadmax/servicetime/internal/repository/models"
	"github.com/nadmax/servicetime/internal/workload"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	defaultStatsHours   = 24
)

type QueueReader interface {
	Snapshot(ctx context.Context) (workload.Snapshot, error)
	Entries(ctx context.Context) ([]workload.Entry, error)
}

type Dashboard struct {
	queue   QueueReader
	history repository.ServiceRepository
	now     func() time.Time
}

type Stats struct {
	TotalWorkers       int       `json:"total_workers"`
	CurrentWorkload    int       `json:"current_workload"`
	WorkerAvailability int       `json:"worker_availability"`
	WorkloadPercentage float64   `json:"workload_percentage"`
	QueueLength        int       `json:"queue_length"`
	WaitingServices    int       `json:"waiting_services"`
	OldestServiceID    string    `json:"oldest_service_id,omitempty"`
	LongestWait        string    `json:"longest_wait"`
	AverageWaitTime    string    `json:"average_wait_time"`
	LastUpdated        time.Time `json:"last_updated"`
}

type ServiceHistory struct {
	ServiceID      string     `json:"service_id"`
	CarModel       string     `json:"car_model"`
	ServiceType    string     `json:"service_type"`
	Status         string     `json:"status"`
	PredictedHours float64    `json:"predicted_hours"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	Duration       string     `json:"duration"`
}

// NewDashboard serves queue statistics from q. History endpoints answer 503
// when history is nil.
func NewDashboard(q QueueReader, history repository.ServiceRepository) *Dashboard {
	return &Dashboard{queue: q, history: history, now: time.Now}
}

func (d *Dashboard) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := d.queue.Snapshot(r.Context())
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entries, err := d.queue.Entries(r.Context())
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := d.now()
	stats := Stats{
		TotalWorkers:       snapshot.TotalWorkers,
		CurrentWorkload:    snapshot.CurrentWorkload,
		WorkerAvailability: snapshot.WorkerAvailability,
		WorkloadPercentage: snapshot.WorkloadPercentage,
		QueueLength:        snapshot.QueueLength,
		LastUpdated:        now,
	}

	var totalWaitTime, longest time.Duration
	for _, entry := range entries {
		if entry.Status != workload.StatusWaiting {
			continue
		}
		stats.WaitingServices++

		wait := now.Sub(entry.EnqueuedAt)
		totalWaitTime += wait
		if stats.OldestServiceID == "" || wait > longest {
			longest = wait
			stats.OldestServiceID = entry.ServiceID
		}
	}

	if stats.WaitingServices > 0 {
		avgWait := totalWaitTime / time.Duration(stats.WaitingServices)
		stats.AverageWaitTime = avgWait.Round(time.Millisecond).String()
		stats.LongestWait = longest.Round(time.Millisecond).String()
	} else {
		stats.AverageWaitTime = "N/A"
		stats.LongestWait = "N/A"
	}

	httputil.WriteJSON(w, stats, http.StatusOK)
}

func (d *Dashboard) GetRecentServices(w http.ResponseWriter, r *http.Request) {
	if !d.historyEnabled(w) {
		return
	}

	limit := intParam(r, "limit", defaultHistoryLimit, maxHistoryLimit)
	services, err := d.history.GetRecentServices(r.Context(), limit)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, toHistory(services), http.StatusOK)
}

func (d *Dashboard) GetServiceStats(w http.ResponseWriter, r *http.Request) {
	if !d.historyEnabled(w) {
		return
	}

	hours := intParam(r, "hours", defaultStatsHours, 24*365)
	stats, err := d.history.GetServiceStats(r.Context(), hours)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []models.ServiceStats{}
	}

	httputil.WriteJSON(w, stats, http.StatusOK)
}

func (d *Dashboard) GetService(w http.ResponseWriter, r *http.Request) {
	if !d.historyEnabled(w) {
		return
	}

	serviceID := strings.TrimPrefix(r.URL.Path, "/api/history/service/")
	if serviceID == "" {
		httputil.WriteJSONError(w, "Service ID is required", http.StatusBadRequest)
		return
	}

	service, err := d.history.GetService(r.Context(), serviceID)
	if errors.Is(err, repository.ErrServiceNotFound) {
		httputil.WriteJSONError(w, "Service not found", http.StatusNotFound)
		return
	}
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, service, http.StatusOK)
}

func (d *Dashboard) GetServicesByModel(w http.ResponseWriter, r *http.Request) {
	if !d.historyEnabled(w) {
		return
	}

	model := strings.TrimPrefix(r.URL.Path, "/api/history/model/")
	if model == "" {
		httputil.WriteJSONError(w, "Car model is required", http.StatusBadRequest)
		return
	}

	limit := intParam(r, "limit", defaultHistoryLimit, maxHistoryLimit)
	services, err := d.history.GetServicesByModel(r.Context(), model, limit)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, toHistory(services), http.StatusOK)
}

func (d *Dashboard) GetPartsConsumption(w http.ResponseWriter, r *http.Request) {
	if !d.historyEnabled(w) {
		return
	}

	model := strings.TrimPrefix(r.URL.Path, "/api/history/parts/")
	if model == "" {
		httputil.WriteJSONError(w, "Car model is required", http.StatusBadRequest)
		return
	}

	limit := intParam(r, "limit", defaultHistoryLimit, maxHistoryLimit)
	history, err := d.history.GetPartsConsumption(r.Context(), model, limit)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []models.PartsConsumption{}
	}

	httputil.WriteJSON(w, history, http.StatusOK)
}

func (d *Dashboard) historyEnabled(w http.ResponseWriter) bool {
	if d.history == nil {
		httputil.WriteJSONError(w, "Service history is disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func toHistory(services []models.ServiceRecord) []ServiceHistory {
	history := []ServiceHistory{}
	for _, s := range services {
		var duration string
		if s.CompletedAt != nil {
			duration = s.CompletedAt.Sub(s.CreatedAt).Round(time.Millisecond).String()
		}

		history = append(history, ServiceHistory{
			ServiceID:      s.ServiceID,
			CarModel:       s.CarModel,
			ServiceType:    s.ServiceType,
			Status:         s.Status,
			PredictedHours: s.PredictedHours,
			CreatedAt:      s.CreatedAt,
			CompletedAt:    s.CompletedAt,
			Duration:       duration,
		})
	}

	return history
}

// intParam reads a positive integer query parameter, falling back to def
// when it is absent or malformed and capping it at limit.
func intParam(r *http.Request, name string, def, limit int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return min(v, limit)
}
