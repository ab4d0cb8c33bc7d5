// Package models contains data structures used by the service history repository layer.
package models

import "time"

type ServiceRecord struct {
	ServiceID          string     `json:"service_id"`
	CarNumberPlate     string     `json:"car_number_plate"`
	CarModel           string     `json:"car_model"`
	ServiceType        string     `json:"service_type"`
	SelectedTasks      []string   `json:"selected_tasks"`
	PredictedHours     float64    `json:"predicted_hours"`
	WorkloadPercentage float64    `json:"workload_percentage"`
	QueuePosition      int        `json:"queue_position"`
	PartsAvailability  string     `json:"parts_availability"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	WaitMs             *int       `json:"wait_ms,omitempty"`
}

type ServiceStats struct {
	ServiceType       string  `json:"service_type"`
	Status            string  `json:"status"`
	Count             int     `json:"count"`
	AvgPredictedHours float64 `json:"avg_predicted_hours"`
	MaxPredictedHours float64 `json:"max_predicted_hours"`
	MinPredictedHours float64 `json:"min_predicted_hours"`
	AvgWaitMs         float64 `json:"avg_wait_ms"`
}

type PartsConsumption struct {
	ServiceID  string         `json:"service_id,omitempty"`
	CarModel   string         `json:"car_model"`
	Parts      map[string]int `json:"parts"`
	ConsumedAt time.Time      `json:"consumed_at"`
}
