// Package parts aggregates the parts required by a set of maintenance tasks
// and classifies each one against a model's stock table.
package parts

import (
	"fmt"
	"strings"

	"github.com/nadmax/servicetime/internal/catalog"
	"github.com/nadmax/servicetime/internal/inventory"
)

type State string

const (
	StateMissing   State = "missing"
	StateLowStock  State = "low_stock"
	StateAvailable State = "available"
)

const (
	StatusModelNotFound = "Model not found"
	StatusAllAvailable  = "All parts available"
)

// Class values summarise a Result for metrics labels.
const (
	ClassModelNotFound = "model_not_found"
	ClassOutOfStock    = "out_of_stock"
	ClassLowStock      = "low_stock"
	ClassAvailable     = "available"
)

type StockReader interface {
	ModelStatus(model string) (string, inventory.ModelStock, error)
}

type Requirements interface {
	Requirements(taskID string) []catalog.PartQuantity
}

type PartCheck struct {
	Part         string `json:"part"`
	Required     int    `json:"required"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"min_threshold"`
	State        State  `json:"state"`
}

type Result struct {
	Model      string      `json:"model"`
	ModelFound bool        `json:"model_found"`
	Parts      []PartCheck `json:"parts"`
	Status     string      `json:"status"`
}

func (r Result) ids(state State) []string {
	var ids []string
	for _, p := range r.Parts {
		if p.State == state {
			ids = append(ids, p.Part)
		}
	}
	return ids
}

func (r Result) Missing() []string   { return r.ids(StateMissing) }
func (r Result) LowStock() []string  { return r.ids(StateLowStock) }
func (r Result) Available() []string { return r.ids(StateAvailable) }

func (r Result) Class() string {
	switch {
	case !r.ModelFound:
		return ClassModelNotFound
	case len(r.Missing()) > 0:
		return ClassOutOfStock
	case len(r.LowStock()) > 0:
		return ClassLowStock
	default:
		return ClassAvailable
	}
}

type Resolver struct {
	stock   StockReader
	catalog Requirements
}

func NewResolver(stock StockReader, c Requirements) *Resolver {
	return &Resolver{stock: stock, catalog: c}
}

// CheckAvailability sums the requirements of the selected tasks per part and
// classifies each part for the resolved model. Unknown task ids contribute
// nothing. The service type does not change which parts are needed. It
// never mutates stock.
func (r *Resolver) CheckAvailability(model, _ string, tasks []string) Result {
	var required []catalog.PartQuantity
	for _, id := range tasks {
		required = append(required, r.catalog.Requirements(id)...)
	}

	result, ok := r.classify(model, aggregate(required))
	if !ok {
		return result
	}

	missing, low := result.Missing(), result.LowStock()
	switch {
	case len(missing) > 0:
		result.Status = "Parts out of stock: " + strings.Join(missing, ", ")
	case len(low) > 0:
		result.Status = fmt.Sprintf("All parts available (low stock: %s)", strings.Join(low, ", "))
	default:
		result.Status = StatusAllAvailable
	}

	return result
}

// CheckServicePackage checks the fixed parts package of a service type.
// Unknown service types require nothing.
func (r *Resolver) CheckServicePackage(model, serviceType string) Result {
	required := servicePackages[strings.ToLower(serviceType)]

	result, ok := r.classify(model, required)
	if !ok {
		return result
	}

	missing, low := result.Missing(), result.LowStock()
	switch {
	case len(missing) > 0 && len(missing) == len(required):
		result.Status = "All parts out of stock"
	case len(missing) > 0:
		result.Status = fmt.Sprintf("Some parts out of stock (%s)", strings.Join(missing, ", "))
	case len(low) > 0:
		result.Status = fmt.Sprintf("All parts available (low stock: %s)", strings.Join(low, ", "))
	default:
		result.Status = StatusAllAvailable
	}

	return result
}

func (r *Resolver) classify(model string, required []catalog.PartQuantity) (Result, bool) {
	key, stock, err := r.stock.ModelStatus(model)
	if err != nil {
		return Result{Model: model, Status: StatusModelNotFound}, false
	}

	result := Result{Model: key, ModelFound: true, Parts: make([]PartCheck, 0, len(required))}
	for _, req := range required {
		check := PartCheck{Part: req.Part, Required: req.Quantity}

		current, ok := stock[req.Part]
		switch {
		case !ok:
			check.State = StateMissing
		case current.Quantity < req.Quantity:
			check.State = StateMissing
		case current.Quantity <= current.MinThreshold:
			check.State = StateLowStock
		default:
			check.State = StateAvailable
		}
		check.Quantity = current.Quantity
		check.MinThreshold = current.MinThreshold

		result.Parts = append(result.Parts, check)
	}

	return result, true
}

// aggregate sums quantities per part, keeping first-appearance order.
func aggregate(required []catalog.PartQuantity) []catalog.PartQuantity {
	index := make(map[string]int)
	out := make([]catalog.PartQuantity, 0, len(required))
	for _, req := range required {
		if i, ok := index[req.Part]; ok {
			out[i].Quantity += req.Quantity
			continue
		}
		index[req.Part] = len(out)
		out = append(out, req)
	}
	return out
}

var servicePackages = map[string][]catalog.PartQuantity{
	"general": {
		{Part: "oil_filter", Quantity: 1},
		{Part: "air_filter", Quantity: 1},
		{Part: "engine_oil", Quantity: 1},
	},
	"basic": {
		{Part: "oil_filter", Quantity: 1},
		{Part: "air_filter", Quantity: 1},
		{Part: "engine_oil", Quantity: 1},
	},
	"standard": {
		{Part: "oil_filter", Quantity: 1},
		{Part: "air_filter", Quantity: 1},
		{Part: "fuel_filter", Quantity: 1},
		{Part: "engine_oil", Quantity: 1},
	},
	"premium": {
		{Part: "oil_filter", Quantity: 1},
		{Part: "air_filter", Quantity: 1},
		{Part: "fuel_filter", Quantity: 1},
		{Part: "spark_plugs", Quantity: 4},
		{Part: "engine_oil", Quantity: 1},
	},
	"major": {
		{Part: "oil_filter", Quantity: 1},
		{Part: "air_filter", Quantity: 1},
		{Part: "fuel_filter", Quantity: 1},
		{Part: "spark_plugs", Quantity: 4},
		{Part: "brake_pads", Quantity: 1},
		{Part: "engine_oil", Quantity: 1},
	},
}
