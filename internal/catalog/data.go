package catalog

func one(part string) []PartQuantity {
	return []PartQuantity{{Part: part, Quantity: 1}}
}

var defaultCategories = []Category{
	{
		ID:   "engine_performance",
		Name: "Engine & Performance",
		Tasks: []Task{
			{ID: "oil_change", Name: "Engine Oil Change", Hours: 0.5, Parts: []PartQuantity{
				{Part: "oil_filter", Quantity: 1},
				{Part: "engine_oil", Quantity: 1},
			}},
			{ID: "air_filter", Name: "Air Filter Replacement", Hours: 0.3, Parts: one("air_filter")},
			{ID: "spark_plugs", Name: "Spark Plugs Replacement", Hours: 1.0, Parts: []PartQuantity{
				{Part: "spark_plugs", Quantity: 4},
			}},
			{ID: "fuel_filter", Name: "Fuel Filter Replacement", Hours: 0.4, Parts: one("fuel_filter")},
		},
	},
	{
		ID:   "brakes_safety",
		Name: "Brakes & Safety",
		Tasks: []Task{
			{ID: "brake_pads", Name: "Brake Pads Replacement", Hours: 1.5, Parts: one("brake_pads")},
			{ID: "brake_fluid", Name: "Brake Fluid Change", Hours: 0.5, Parts: one("brake_fluid")},
			{ID: "brake_discs", Name: "Brake Discs Replacement", Hours: 2.0, Parts: one("brake_discs")},
		},
	},
	{
		ID:   "wheels_alignment",
		Name: "Wheels & Alignment",
		Tasks: []Task{
			{ID: "wheel_alignment", Name: "Wheel Alignment", Hours: 1.0},
			{ID: "tire_rotation", Name: "Tire Rotation", Hours: 0.5},
			{ID: "wheel_balancing", Name: "Wheel Balancing", Hours: 0.8},
			{ID: "tire_replacement", Name: "Tire Replacement", Hours: 1.2, Parts: one("tires")},
		},
	},
	{
		ID:   "ac_cooling",
		Name: "AC & Cooling",
		Tasks: []Task{
			{ID: "ac_service", Name: "AC Service", Hours: 1.5, Parts: one("ac_gas")},
			{ID: "ac_filter", Name: "AC Filter Replacement", Hours: 0.3, Parts: one("ac_filter")},
			{ID: "coolant_flush", Name: "Coolant Flush", Hours: 1.0, Parts: one("coolant")},
		},
	},
	{
		ID:   "electrical_battery",
		Name: "Electrical & Battery",
		Tasks: []Task{
			{ID: "battery_replacement", Name: "Battery Replacement", Hours: 0.5, Parts: one("battery")},
			// bulbs are shelf stock and not tracked per model
			{ID: "bulb_replacement", Name: "Bulb Replacement", Hours: 0.4},
			{ID: "electrical_check", Name: "Electrical System Check", Hours: 0.8},
		},
	},
	{
		ID:   "additional_services",
		Name: "Additional Services",
		Tasks: []Task{
			{ID: "car_wash", Name: "Car Wash & Cleaning", Hours: 0.5},
			{ID: "diagnostic_scan", Name: "Diagnostic Scan", Hours: 0.6},
			{ID: "suspension_check", Name: "Suspension Check", Hours: 1.2},
		},
	},
}

// Default builds the catalog the shop ships with.
func Default() *Catalog {
	c, err := New(defaultCategories)
	if err != nil {
		panic("catalog: invalid default table: " + err.Error())
	}
	return c
}
