// Package metrics provides Prometheus metrics for monitoring predictions, the service queue and parts stock.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicetime_predictions_total",
			Help: "Total number of service time predictions",
		},
		[]string{"service_type", "workload_level"},
	)
	PredictedHours = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "servicetime_predicted_hours",
			Help:    "Predicted service duration in hours",
			Buckets: []float64{1, 1.5, 2, 3, 4, 5, 6, 8, 10, 12, 16, 24},
		},
		[]string{"service_type"},
	)
	PartsChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicetime_parts_checks_total",
			Help: "Parts availability checks by outcome",
		},
		[]string{"result"},
	)
	ServicesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servicetime_services_completed_total",
			Help: "Total number of services removed from the queue on completion",
		},
	)
	ServiceWaitTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "servicetime_service_wait_time_seconds",
			Help:    "Time services spend in the queue before completion",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 14400, 28800, 86400},
		},
	)
	PartsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicetime_parts_consumed_total",
			Help: "Parts taken from stock by completed services",
		},
		[]string{"model", "part"},
	)
	LowStockAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicetime_low_stock_alerts_total",
			Help: "Low stock alerts by delivery outcome",
		},
		[]string{"status"},
	)
	AlertsRetried = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servicetime_low_stock_alerts_retried_total",
			Help: "Total number of low stock alert delivery retries",
		},
	)
	ModelUnknownCategory = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicetime_model_unknown_category_total",
			Help: "Categorical values the trained model did not see during training",
		},
		[]string{"column"},
	)
	InventoryPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servicetime_inventory_persist_failures_total",
			Help: "Inventory writes that could not be persisted",
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicetime_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "servicetime_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "servicetime_queue_depth",
			Help: "Current number of services waiting in the queue",
		},
	)
	WorkloadPercentage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "servicetime_workload_percentage",
			Help: "Current shop workload percentage",
		},
	)
	WorkersAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "servicetime_workers_available",
			Help: "Workers currently available for new services",
		},
	)
	PartsLowStock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "servicetime_parts_low_stock",
			Help: "Number of parts at or below their minimum threshold per model",
		},
		[]string{"model"},
	)
)

var knownServiceTypes = map[string]bool{
	"general":  true,
	"basic":    true,
	"standard": true,
	"premium":  true,
	"major":    true,
}

// serviceTypeLabel keeps free-form service types from exploding label cardinality.
func serviceTypeLabel(serviceType string) string {
	if knownServiceTypes[serviceType] {
		return serviceType
	}
	return "other"
}

func RecordPrediction(serviceType, workloadLevel string, hours float64) {
	label := serviceTypeLabel(serviceType)
	PredictionsTotal.WithLabelValues(label, workloadLevel).Inc()
	PredictedHours.WithLabelValues(label).Observe(hours)
}

func RecordPartsCheck(result string) {
	PartsChecks.WithLabelValues(result).Inc()
}

func RecordServiceCompleted(waitTime time.Duration) {
	ServicesCompleted.Inc()
	ServiceWaitTime.Observe(waitTime.Seconds())
}

func RecordPartsConsumed(model string, parts map[string]int) {
	for part, qty := range parts {
		if qty > 0 {
			PartsConsumed.WithLabelValues(model, part).Add(float64(qty))
		}
	}
}

func RecordAlertSent() {
	LowStockAlerts.WithLabelValues("sent").Inc()
}

func RecordAlertFailed() {
	LowStockAlerts.WithLabelValues("failed").Inc()
}

func RecordAlertRetried() {
	AlertsRetried.Inc()
}

func RecordUnknownCategory(column string) {
	ModelUnknownCategory.WithLabelValues(column).Inc()
}

func RecordInventoryPersistFailure() {
	InventoryPersistFailures.Inc()
}

func UpdateQueueDepth(depth int) {
	QueueDepth.Set(float64(depth))
}

func UpdateWorkload(percentage float64, available int) {
	WorkloadPercentage.Set(percentage)
	WorkersAvailable.Set(float64(available))
}

func UpdateLowStockParts(lowByModel map[string]int) {
	PartsLowStock.Reset()
	for model, count := range lowByModel {
		PartsLowStock.WithLabelValues(model).Set(float64(count))
	}
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
