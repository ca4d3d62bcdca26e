package demand

// FixtureRow is one line of a fixture schedule.
type FixtureRow struct {
	Name       string  `json:"name"`
	DefaultFU  float64 `json:"default_fu"`
	OverrideFU float64 `json:"override_fu"`
	Quantity   int     `json:"quantity"`
}

// FixtureUnits is (override > 0 ? override : default) × max(quantity, 0).
func (r FixtureRow) FixtureUnits() float64 {
	fu := r.DefaultFU
	if r.OverrideFU > 0 {
		fu = r.OverrideFU
	}
	if r.Quantity <= 0 {
		return 0
	}
	return fu * float64(r.Quantity)
}

func TotalFixtureUnits(rows []FixtureRow) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.FixtureUnits()
	}
	return total
}

// StormFlowGpm converts a roof area and rainfall rate to storm flow.
// 1 in/hr on 1 ft² is 0.0104 gpm.
func StormFlowGpm(areaFt2, rainfallInPerHr float64) float64 {
	if areaFt2 <= 0 || rainfallInPerHr <= 0 {
		return 0
	}
	return areaFt2 * rainfallInPerHr * 0.0104
}
