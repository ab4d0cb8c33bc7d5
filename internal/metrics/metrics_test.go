package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPrediction(t *testing.T) {
	PredictionsTotal.Reset()
	PredictedHours.Reset()

	tests := []struct {
		name          string
		serviceType   string
		workloadLevel string
		hours         float64
		expectedLabel string
	}{
		{
			name:          "general service",
			serviceType:   "general",
			workloadLevel: "Medium",
			hours:         4.9,
			expectedLabel: "general",
		},
		{
			name:          "major service",
			serviceType:   "major",
			workloadLevel: "High",
			hours:         12.3,
			expectedLabel: "major",
		},
		{
			name:          "free-form service type",
			serviceType:   "detailing",
			workloadLevel: "Low",
			hours:         1.0,
			expectedLabel: "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordPrediction(tt.serviceType, tt.workloadLevel, tt.hours)

			count := getCounterValue(t, PredictionsTotal, tt.expectedLabel, tt.workloadLevel)
			assert.Equal(t, 1.0, count, "prediction counter should be 1")

			sum := getHistogramSum(t, PredictedHours, tt.expectedLabel)
			assert.Equal(t, tt.hours, sum, "predicted hours should be recorded")
		})
	}
}

func TestRecordPartsCheck(t *testing.T) {
	PartsChecks.Reset()

	RecordPartsCheck("low_stock")
	RecordPartsCheck("low_stock")
	RecordPartsCheck("available")

	assert.Equal(t, 2.0, getCounterValue(t, PartsChecks, "low_stock"))
	assert.Equal(t, 1.0, getCounterValue(t, PartsChecks, "available"))
}

func TestRecordServiceCompleted(t *testing.T) {
	before := readCounter(t, ServicesCompleted)

	RecordServiceCompleted(90 * time.Minute)

	assert.Equal(t, before+1, readCounter(t, ServicesCompleted))

	metric := &dto.Metric{}
	require.NoError(t, ServiceWaitTime.Write(metric))
	assert.GreaterOrEqual(t, metric.Histogram.GetSampleSum(), 5400.0)
}

func TestRecordPartsConsumed(t *testing.T) {
	PartsConsumed.Reset()

	RecordPartsConsumed("XC60", map[string]int{
		"oil_filter":  1,
		"spark_plugs": 4,
		"tires":       0,
	})

	assert.Equal(t, 1.0, getCounterValue(t, PartsConsumed, "XC60", "oil_filter"))
	assert.Equal(t, 4.0, getCounterValue(t, PartsConsumed, "XC60", "spark_plugs"))
	assert.Equal(t, 0.0, getCounterValue(t, PartsConsumed, "XC60", "tires"))
}

func TestRecordAlerts(t *testing.T) {
	LowStockAlerts.Reset()
	retriedBefore := readCounter(t, AlertsRetried)

	RecordAlertSent()
	RecordAlertFailed()
	RecordAlertFailed()
	RecordAlertRetried()

	assert.Equal(t, 1.0, getCounterValue(t, LowStockAlerts, "sent"))
	assert.Equal(t, 2.0, getCounterValue(t, LowStockAlerts, "failed"))
	assert.Equal(t, retriedBefore+1, readCounter(t, AlertsRetried))
}

func TestRecordUnknownCategory(t *testing.T) {
	ModelUnknownCategory.Reset()

	RecordUnknownCategory("Car_Model")
	RecordUnknownCategory("Car_Model")
	RecordUnknownCategory("Fuel_Type")

	assert.Equal(t, 2.0, getCounterValue(t, ModelUnknownCategory, "Car_Model"))
	assert.Equal(t, 1.0, getCounterValue(t, ModelUnknownCategory, "Fuel_Type"))
}

func TestRecordInventoryPersistFailure(t *testing.T) {
	before := readCounter(t, InventoryPersistFailures)

	RecordInventoryPersistFailure()

	assert.Equal(t, before+1, readCounter(t, InventoryPersistFailures))
}

func TestUpdateQueueDepth(t *testing.T) {
	depths := []int{0, 6, 11, 40}

	for _, depth := range depths {
		UpdateQueueDepth(depth)

		metric := &dto.Metric{}
		err := QueueDepth.Write(metric)
		require.NoError(t, err)

		assert.Equal(t, float64(depth), metric.Gauge.GetValue())
	}
}

func TestUpdateWorkload(t *testing.T) {
	UpdateWorkload(62.5, 3)

	metric := &dto.Metric{}
	require.NoError(t, WorkloadPercentage.Write(metric))
	assert.Equal(t, 62.5, metric.Gauge.GetValue())

	metric = &dto.Metric{}
	require.NoError(t, WorkersAvailable.Write(metric))
	assert.Equal(t, 3.0, metric.Gauge.GetValue())
}

func TestUpdateLowStockParts_Reset(t *testing.T) {
	PartsLowStock.Reset()

	UpdateLowStockParts(map[string]int{"XC90": 2, "S90": 1})
	UpdateLowStockParts(map[string]int{"XC40": 4})

	assert.Equal(t, 4.0, getGaugeValue(t, PartsLowStock, "XC40"))
	assert.Equal(t, 0.0, getGaugeValue(t, PartsLowStock, "XC90"), "stale models should be cleared")
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	tests := []struct {
		name     string
		method   string
		endpoint string
		status   string
		duration time.Duration
	}{
		{
			name:     "successful prediction",
			method:   "POST",
			endpoint: "/predict",
			status:   "200",
			duration: 50 * time.Millisecond,
		},
		{
			name:     "invalid prediction",
			method:   "POST",
			endpoint: "/predict",
			status:   "400",
			duration: 5 * time.Millisecond,
		},
		{
			name:     "not found",
			method:   "GET",
			endpoint: "/unknown",
			status:   "404",
			duration: 10 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordHTTPRequest(tt.method, tt.endpoint, tt.status, tt.duration)

			count := getCounterValue(t, HTTPRequestsTotal, tt.method, tt.endpoint, tt.status)
			assert.Greater(t, count, 0.0, "request counter should be incremented")

			sum := getHistogramSum(t, HTTPRequestDuration, tt.method, tt.endpoint)
			assert.Greater(t, sum, 0.0, "duration should be recorded")
		})
	}
}

func TestPredictedHoursHistogramBuckets(t *testing.T) {
	PredictedHours.Reset()

	hours := []float64{1.0, 2.4, 4.9, 9.5, 30}
	for _, h := range hours {
		RecordPrediction("standard", "Low", h)
	}

	metric := getHistogramMetric(t, PredictedHours, "standard")
	assert.Equal(t, uint64(len(hours)), metric.Histogram.GetSampleCount())
}

func readCounter(t *testing.T, c prometheus.Counter) float64 {
	metric := &dto.Metric{}
	require.NoError(t, c.Write(metric))
	return metric.Counter.GetValue()
}

func getCounterValue(t *testing.T, counter *prometheus.CounterVec, labels ...string) float64 {
	metric := &dto.Metric{}
	observer, err := counter.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	c := observer
	err = c.Write(metric)
	require.NoError(t, err)
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge *prometheus.GaugeVec, labels ...string) float64 {
	metric := &dto.Metric{}
	observer, err := gauge.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	g := observer
	err = g.Write(metric)
	require.NoError(t, err)
	return metric.Gauge.GetValue()
}

func getHistogramSum(t *testing.T, histogram *prometheus.HistogramVec, labels ...string) float64 {
	metric := getHistogramMetric(t, histogram, labels...)
	return metric.Histogram.GetSampleSum()
}

func getHistogramMetric(t *testing.T, histogram *prometheus.HistogramVec, labels ...string) *dto.Metric {
	metric := &dto.Metric{}
	observer, err := histogram.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	h := observer.(prometheus.Histogram)
	err = h.Write(metric)
	require.NoError(t, err)
	return metric
}
