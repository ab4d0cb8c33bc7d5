package service

import (
	"github.com/nadmax/servicetime/internal/validate"
)

// PredictionRequest is the body of a prediction call. Numeric fields are
// pointers so that an explicit zero can be told apart from a missing field.
type PredictionRequest struct {
	CarModel           string   `json:"car_model" validate:"required"`
	ManufactureYear    *int     `json:"manufacture_year" validate:"required,min=2000,max=2024"`
	FuelType           string   `json:"fuel_type" validate:"required"`
	ServiceType        string   `json:"service_type" validate:"required"`
	LastServiceDays    *int     `json:"last_service_days" validate:"required,min=0,max=3650"`
	TotalKilometers    *int     `json:"total_kilometers" validate:"required,min=0"`
	KmSinceLastService *int     `json:"km_since_last_service" validate:"required,min=0"`
	CarNumberPlate     string   `json:"car_number_plate" validate:"required,numberplate"`
	SelectedTasks      []string `json:"selected_tasks" validate:"required,min=1,max=20"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate collapses duplicate tasks, then checks every field. The returned
// error is always a *ValidationError.
func (r *PredictionRequest) Validate() error {
	r.SelectedTasks = uniqueTasks(r.SelectedTasks)

	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	fe, ok := err.(*validate.FieldError)
	if !ok {
		return &ValidationError{Message: "Invalid numeric value in input fields"}
	}

	return &ValidationError{Field: fe.Field, Message: messageFor(fe)}
}

func messageFor(fe *validate.FieldError) string {
	switch {
	case fe.Field == "selected_tasks" && fe.Tag == "max":
		return "Number of tasks cannot exceed 20"
	case fe.Field == "selected_tasks":
		return "Please select at least one service task"
	case fe.Tag == "required":
		return "Missing required field: " + fe.Field
	}

	switch fe.Field {
	case "manufacture_year":
		return "Manufacture year must be between 2000 and 2024"
	case "last_service_days":
		if fe.Tag == "max" {
			return "Last service date seems too far in the past"
		}
		return "Last service days cannot be negative"
	case "total_kilometers":
		return "Total kilometers cannot be negative"
	case "km_since_last_service":
		return "KM since last service cannot be negative"
	case "car_number_plate":
		return "Invalid car number plate format. Use format like MH12AB1234"
	default:
		return "Invalid value for field: " + fe.Field
	}
}

// uniqueTasks keeps the first occurrence of every task id. A nil input stays
// nil so that a missing field is still reported as missing.
func uniqueTasks(tasks []string) []string {
	if tasks == nil {
		return nil
	}

	seen := make(map[string]bool, len(tasks))
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	return out
}
