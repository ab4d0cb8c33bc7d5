package inventory

// DefaultSnapshot returns the stock table a fresh installation starts with.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		"XC90": {
			"oil_filter":  {Quantity: 15, MinThreshold: 5},
			"air_filter":  {Quantity: 12, MinThreshold: 4},
			"fuel_filter": {Quantity: 8, MinThreshold: 3},
			"brake_pads":  {Quantity: 20, MinThreshold: 6},
			"spark_plugs": {Quantity: 25, MinThreshold: 8},
			"battery":     {Quantity: 10, MinThreshold: 3},
			"engine_oil":  {Quantity: 30, MinThreshold: 10},
			"brake_fluid": {Quantity: 18, MinThreshold: 6},
			"brake_discs": {Quantity: 12, MinThreshold: 4},
			"ac_gas":      {Quantity: 25, MinThreshold: 8},
			"ac_filter":   {Quantity: 15, MinThreshold: 5},
			"coolant":     {Quantity: 22, MinThreshold: 7},
			"tires":       {Quantity: 8, MinThreshold: 3},
		},
		"XC60": {
			"oil_filter":  {Quantity: 18, MinThreshold: 6},
			"air_filter":  {Quantity: 15, MinThreshold: 5},
			"fuel_filter": {Quantity: 10, MinThreshold: 4},
			"brake_pads":  {Quantity: 22, MinThreshold: 7},
			"spark_plugs": {Quantity: 28, MinThreshold: 9},
			"battery":     {Quantity: 12, MinThreshold: 4},
			"engine_oil":  {Quantity: 35, MinThreshold: 12},
			"brake_fluid": {Quantity: 20, MinThreshold: 7},
			"brake_discs": {Quantity: 15, MinThreshold: 5},
			"ac_gas":      {Quantity: 28, MinThreshold: 9},
			"ac_filter":   {Quantity: 18, MinThreshold: 6},
			"coolant":     {Quantity: 25, MinThreshold: 8},
			"tires":       {Quantity: 10, MinThreshold: 4},
		},
		"XC40": {
			"oil_filter":  {Quantity: 20, MinThreshold: 7},
			"air_filter":  {Quantity: 18, MinThreshold: 6},
			"fuel_filter": {Quantity: 12, MinThreshold: 4},
			"brake_pads":  {Quantity: 25, MinThreshold: 8},
			"spark_plugs": {Quantity: 30, MinThreshold: 10},
			"battery":     {Quantity: 15, MinThreshold: 5},
			"engine_oil":  {Quantity: 40, MinThreshold: 15},
			"brake_fluid": {Quantity: 22, MinThreshold: 8},
			"brake_discs": {Quantity: 18, MinThreshold: 6},
			"ac_gas":      {Quantity: 30, MinThreshold: 10},
			"ac_filter":   {Quantity: 20, MinThreshold: 7},
			"coolant":     {Quantity: 28, MinThreshold: 9},
			"tires":       {Quantity: 12, MinThreshold: 5},
		},
		"S90": {
			"oil_filter":  {Quantity: 12, MinThreshold: 4},
			"air_filter":  {Quantity: 10, MinThreshold: 3},
			"fuel_filter": {Quantity: 6, MinThreshold: 2},
			"brake_pads":  {Quantity: 18, MinThreshold: 6},
			"spark_plugs": {Quantity: 22, MinThreshold: 7},
			"battery":     {Quantity: 8, MinThreshold: 3},
			"engine_oil":  {Quantity: 25, MinThreshold: 8},
			"brake_fluid": {Quantity: 15, MinThreshold: 5},
			"brake_discs": {Quantity: 10, MinThreshold: 3},
			"ac_gas":      {Quantity: 20, MinThreshold: 7},
			"ac_filter":   {Quantity: 12, MinThreshold: 4},
			"coolant":     {Quantity: 18, MinThreshold: 6},
			"tires":       {Quantity: 6, MinThreshold: 2},
		},
	}
}
