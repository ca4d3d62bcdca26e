package air

import "Ductolator/internal/calc/props"

// Stream is one air stream entering a mixing box.
type Stream struct {
	Name         string  `json:"name"`
	FlowCFM      float64 `json:"flow_cfm"`
	TemperatureF float64 `json:"temperature_f"`
	OutdoorAir   bool    `json:"outdoor_air"`
}

type MixResult struct {
	TotalCFM           float64 `json:"total_cfm"`
	MixedTemperatureF  float64 `json:"mixed_temperature_f"`
	OutdoorAirFraction float64 `json:"outdoor_air_fraction"`
}

// Mix returns the flow-weighted dry-bulb temperature of the streams.
// Streams with non-positive flow contribute nothing.
func Mix(streams []Stream) (MixResult, error) {
	var total, weighted, outdoor float64
	for _, s := range streams {
		if s.FlowCFM <= 0 {
			continue
		}
		if err := props.InRange("temperature_f", s.TemperatureF, minTemperatureF, maxTemperatureF); err != nil {
			return MixResult{}, err
		}
		total += s.FlowCFM
		weighted += s.FlowCFM * s.TemperatureF
		if s.OutdoorAir {
			outdoor += s.FlowCFM
		}
	}
	if total <= 0 {
		return MixResult{}, &props.PropertyResolutionError{Field: "flow_cfm", Value: total, Reason: "no positive air flow to mix"}
	}
	return MixResult{
		TotalCFM:           total,
		MixedTemperatureF:  weighted / total,
		OutdoorAirFraction: outdoor / total,
	}, nil
}
