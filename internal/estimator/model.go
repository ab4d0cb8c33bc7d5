package estimator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nadmax/servicetime/internal/metrics"
)

const (
	ColumnCarModel           = "Car_Model"
	ColumnManufactureYear    = "Manufacture_Year"
	ColumnFuelType           = "Fuel_Type"
	ColumnServiceType        = "Service_Type"
	ColumnLastServiceDays    = "Last_Service_Days_Ago"
	ColumnTotalKms           = "Total_Kms"
	ColumnKmSinceLastService = "Km_From_Last_Service"
	ColumnWorkerAvailability = "Worker_Availability"
	ColumnNumberOfTasks      = "No_Of_Tasks"
)

var ErrInvalidModel = errors.New("invalid model artifact")

var categoricalColumns = map[string]func(Features) string{
	ColumnCarModel:    func(f Features) string { return f.CarModel },
	ColumnFuelType:    func(f Features) string { return f.FuelType },
	ColumnServiceType: func(f Features) string { return f.ServiceType },
}

var numericColumns = map[string]func(Features) float64{
	ColumnManufactureYear:    func(f Features) float64 { return float64(f.ManufactureYear) },
	ColumnLastServiceDays:    func(f Features) float64 { return float64(f.LastServiceDays) },
	ColumnTotalKms:           func(f Features) float64 { return float64(f.TotalKilometers) },
	ColumnKmSinceLastService: func(f Features) float64 { return float64(f.KmSinceLastService) },
	ColumnWorkerAvailability: func(f Features) float64 { return float64(f.WorkerAvailability) },
	ColumnNumberOfTasks:      func(f Features) float64 { return float64(f.NumberOfTasks) },
}

type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// ModelArtifact is the JSON document exported by the training pipeline.
type ModelArtifact struct {
	FeatureColumns []string            `json:"feature_columns"`
	Categorical    map[string][]string `json:"categorical"`
	Scaler         Scaler              `json:"scaler"`
	Coefficients   []float64           `json:"coefficients"`
	Intercept      float64             `json:"intercept"`
}

type scaling struct {
	mean  float64
	scale float64
}

type RegressionModel struct {
	artifact ModelArtifact
	classes  map[string]map[string]int
	scaling  map[string]scaling
}

func LoadModel(path string) (*RegressionModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	return ParseModel(data)
}

func ParseModel(data []byte) (*RegressionModel, error) {
	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	return NewRegressionModel(artifact)
}

func NewRegressionModel(a ModelArtifact) (*RegressionModel, error) {
	if len(a.FeatureColumns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrInvalidModel)
	}
	if len(a.Coefficients) != len(a.FeatureColumns) {
		return nil, fmt.Errorf("%w: %d coefficients for %d feature columns",
			ErrInvalidModel, len(a.Coefficients), len(a.FeatureColumns))
	}

	m := &RegressionModel{
		artifact: a,
		classes:  make(map[string]map[string]int),
		scaling:  make(map[string]scaling),
	}

	features := make(map[string]bool, len(a.FeatureColumns))
	for _, col := range a.FeatureColumns {
		if features[col] {
			return nil, fmt.Errorf("%w: duplicate feature column %s", ErrInvalidModel, col)
		}
		features[col] = true

		if _, ok := categoricalColumns[col]; ok {
			classes := a.Categorical[col]
			if len(classes) == 0 {
				return nil, fmt.Errorf("%w: no classes for categorical column %s", ErrInvalidModel, col)
			}
			index := make(map[string]int, len(classes))
			for i, c := range classes {
				index[c] = i
			}
			m.classes[col] = index
			continue
		}
		if _, ok := numericColumns[col]; !ok {
			return nil, fmt.Errorf("%w: unsupported feature column %s", ErrInvalidModel, col)
		}
	}

	for col := range a.Categorical {
		if !features[col] {
			return nil, fmt.Errorf("%w: classes given for unused column %s", ErrInvalidModel, col)
		}
	}

	s := a.Scaler
	if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
		return nil, fmt.Errorf("%w: scaler sizes do not match", ErrInvalidModel)
	}
	for i, col := range s.Columns {
		if _, ok := numericColumns[col]; !ok || !features[col] {
			return nil, fmt.Errorf("%w: cannot scale column %s", ErrInvalidModel, col)
		}
		if s.Scale[i] == 0 {
			return nil, fmt.Errorf("%w: zero scale for column %s", ErrInvalidModel, col)
		}
		m.scaling[col] = scaling{mean: s.Mean[i], scale: s.Scale[i]}
	}

	return m, nil
}

// Predict evaluates the linear model. Categorical values the model never saw
// are encoded as the first class, logged and counted.
func (m *RegressionModel) Predict(_ context.Context, f Features) (float64, error) {
	y := m.artifact.Intercept
	for i, col := range m.artifact.FeatureColumns {
		y += m.artifact.Coefficients[i] * m.encode(col, f)
	}

	return finalize(y), nil
}

func (m *RegressionModel) encode(col string, f Features) float64 {
	if value, ok := categoricalColumns[col]; ok {
		v := value(f)
		idx, known := m.classes[col][v]
		if !known {
			log.Printf("warning: unknown category %q for %s, using first class", v, col)
			metrics.RecordUnknownCategory(col)
			return 0
		}
		return float64(idx)
	}

	x := numericColumns[col](f)
	if s, ok := m.scaling[col]; ok {
		x = (x - s.mean) / s.scale
	}
	return x
}
