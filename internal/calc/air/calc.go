package air

import (
	"math"

	"Ductolator/internal/calc/props"
)

const (
	StandardTemperatureF = 70.0
	StandardAltitudeFt   = 0.0

	minTemperatureF = -60.0
	maxTemperatureF = 400.0
	minAltitudeFt   = -1000.0
	maxAltitudeFt   = 30000.0

	gasConstantAir = 53.35 // ft·lbf/(lbm·°R)
	seaLevelPsia   = 14.696
)

// Properties is the resolved state of air for one (temperature, altitude) pair.
type Properties struct {
	TemperatureF       float64 `json:"temperature_f"`
	AltitudeFt         float64 `json:"altitude_ft"`
	PressurePsia       float64 `json:"pressure_psia"`
	DensityLbFt3       float64 `json:"density_lb_ft3"`
	KinematicViscosity float64 `json:"kinematic_viscosity_ft2_s"`
}

// Standard returns air at 70 °F and sea level.
func Standard() Properties {
	p, _ := Resolve(StandardTemperatureF, StandardAltitudeFt)
	return p
}

// ResolveOptional applies the standard-air defaults to absent inputs.
func ResolveOptional(temperatureF, altitudeFt *float64) (Properties, error) {
	t, a := StandardTemperatureF, StandardAltitudeFt
	if temperatureF != nil {
		t = *temperatureF
	}
	if altitudeFt != nil {
		a = *altitudeFt
	}
	return Resolve(t, a)
}

// Resolve computes density from the ideal gas law at the standard-atmosphere
// pressure for the altitude, and viscosity from Sutherland's law.
func Resolve(temperatureF, altitudeFt float64) (Properties, error) {
	if err := props.InRange("temperature_f", temperatureF, minTemperatureF, maxTemperatureF); err != nil {
		return Properties{}, err
	}
	if err := props.InRange("altitude_ft", altitudeFt, minAltitudeFt, maxAltitudeFt); err != nil {
		return Properties{}, err
	}

	psia := seaLevelPsia * math.Pow(1-6.8754e-6*altitudeFt, 5.2559)
	rankine := temperatureF + 459.67
	density := psia * 144.0 / (gasConstantAir * rankine)

	// Sutherland: mu = mu0 (T/T0)^1.5 (T0+S)/(T+S), SI units
	kelvin := rankine * 5.0 / 9.0
	const mu0, t0, s = 1.716e-5, 273.15, 110.4
	mu := mu0 * math.Pow(kelvin/t0, 1.5) * (t0 + s) / (kelvin + s)
	rhoSI := density * 16.018463
	nu := mu / rhoSI * 10.76391 // m²/s -> ft²/s

	return Properties{
		TemperatureF:       temperatureF,
		AltitudeFt:         altitudeFt,
		PressurePsia:       psia,
		DensityLbFt3:       density,
		KinematicViscosity: nu,
	}, nil
}

// VelocityPressureInWC returns the velocity pressure in inches of water column
// for a velocity in fpm.
func (p Properties) VelocityPressureInWC(velocityFpm float64) float64 {
	v := velocityFpm / 60.0
	return p.DensityLbFt3 * v * v / (2 * 32.174) / 5.2023
}
