// Package estimator predicts how long a service will take. The Heuristic
// predictor applies a fixed chain of multiplicative adjustments to a nominal
// duration; RegressionModel serves a linear model trained offline. Both
// satisfy Predictor and can be swapped without touching callers.
package estimator

import (
	"context"
	"math"
	"math/rand/v2"
)

const (
	DefaultReferenceYear = 2024
	NoiseSigma           = 0.15
	MinHours             = 1.0
)

type Features struct {
	CarModel           string
	ManufactureYear    int
	FuelType           string
	ServiceType        string
	LastServiceDays    int
	TotalKilometers    int
	KmSinceLastService int
	SelectedTasks      []string
	NumberOfTasks      int
	WorkerAvailability int
}

type Predictor interface {
	Predict(ctx context.Context, f Features) (float64, error)
}

// TaskHours resolves the nominal duration of a task, 0 for unknown ids.
type TaskHours interface {
	Hours(taskID string) float64
}

// NoiseSource yields standard normal samples.
type NoiseSource interface {
	NormFloat64() float64
}

type zeroNoise struct{}

func (zeroNoise) NormFloat64() float64 { return 0 }

// ZeroNoise makes predictions deterministic.
var ZeroNoise NoiseSource = zeroNoise{}

type globalNoise struct{}

func (globalNoise) NormFloat64() float64 { return rand.NormFloat64() }

var serviceTypeHours = map[string]float64{
	"general":  2.5,
	"basic":    1.8,
	"standard": 3.2,
	"premium":  4.8,
	"major":    6.5,
}

const defaultServiceHours = 3.0

func BaseHours(serviceType string) float64 {
	if h, ok := serviceTypeHours[serviceType]; ok {
		return h
	}
	return defaultServiceHours
}

func AgeFactor(referenceYear, manufactureYear int) float64 {
	return math.Min(1+0.08*float64(referenceYear-manufactureYear), 2.0)
}

func MileageFactor(totalKilometers int) float64 {
	return math.Min(1+0.3*(float64(totalKilometers)/100000), 1.8)
}

func MaintenanceFactor(lastServiceDays int) float64 {
	switch {
	case lastServiceDays > 365:
		return 1.4
	case lastServiceDays > 180:
		return 1.2
	default:
		return 1.0
	}
}

func TaskCountFactor(numberOfTasks int) float64 {
	return 1 + 0.15*float64(numberOfTasks)
}

func WorkerFactor(workerAvailability int) float64 {
	switch {
	case workerAvailability <= 1:
		return 1.4
	case workerAvailability <= 3:
		return 1.2
	case workerAvailability <= 5:
		return 1.0
	default:
		return 0.9
	}
}

// Breakdown is the deterministic part of a heuristic prediction.
type Breakdown struct {
	ServiceHours      float64 `json:"service_hours"`
	TaskHours         float64 `json:"task_hours"`
	BaseHours         float64 `json:"base_hours"`
	AgeFactor         float64 `json:"age_factor"`
	MileageFactor     float64 `json:"mileage_factor"`
	MaintenanceFactor float64 `json:"maintenance_factor"`
	TaskCountFactor   float64 `json:"task_count_factor"`
	WorkerFactor      float64 `json:"worker_factor"`
	Core              float64 `json:"core_hours"`
}

type Heuristic struct {
	tasks         TaskHours
	noise         NoiseSource
	referenceYear int
}

type Option func(*Heuristic)

func WithNoise(n NoiseSource) Option {
	return func(h *Heuristic) {
		if n != nil {
			h.noise = n
		}
	}
}

func WithReferenceYear(year int) Option {
	return func(h *Heuristic) {
		if year > 0 {
			h.referenceYear = year
		}
	}
}

func NewHeuristic(tasks TaskHours, opts ...Option) *Heuristic {
	h := &Heuristic{
		tasks:         tasks,
		noise:         globalNoise{},
		referenceYear: DefaultReferenceYear,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Breakdown evaluates every factor in order. Task time only replaces the
// service-type time when it is larger.
func (h *Heuristic) Breakdown(f Features) Breakdown {
	b := Breakdown{ServiceHours: BaseHours(f.ServiceType)}
	if h.tasks != nil {
		for _, id := range f.SelectedTasks {
			b.TaskHours += h.tasks.Hours(id)
		}
	}

	b.BaseHours = b.ServiceHours
	if b.TaskHours > b.BaseHours {
		b.BaseHours = b.TaskHours
	}

	b.AgeFactor = AgeFactor(h.referenceYear, f.ManufactureYear)
	b.MileageFactor = MileageFactor(f.TotalKilometers)
	b.MaintenanceFactor = MaintenanceFactor(f.LastServiceDays)
	b.TaskCountFactor = TaskCountFactor(f.NumberOfTasks)
	b.WorkerFactor = WorkerFactor(f.WorkerAvailability)

	core := b.BaseHours
	core *= b.AgeFactor
	core *= b.MileageFactor
	core *= b.MaintenanceFactor
	core *= b.TaskCountFactor
	core *= b.WorkerFactor
	b.Core = core

	return b
}

func (h *Heuristic) Predict(_ context.Context, f Features) (float64, error) {
	hours := h.Breakdown(f).Core + NoiseSigma*h.noise.NormFloat64()
	return finalize(hours), nil
}

// finalize clamps to the minimum duration and rounds to one decimal.
func finalize(hours float64) float64 {
	if math.IsNaN(hours) || hours < MinHours {
		hours = MinHours
	}
	return math.Round(hours*10) / 10
}
