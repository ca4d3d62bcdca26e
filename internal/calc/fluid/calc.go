package fluid

import (
	"math"
	"strings"

	"Ductolator/internal/calc/props"
)

type Type string

const (
	Water           Type = "water"
	EthyleneGlycol  Type = "ethylene-glycol"
	PropyleneGlycol Type = "propylene-glycol"
)

const (
	NominalTemperatureF = 60.0

	maxTemperatureF  = 210.0
	minWaterTempF    = 33.0
	maxAdditive      = 0.6
	waterDensityLbF3 = 62.366 // at 60 °F, used to scale Hazen-Williams psi
)

// Properties is a resolved snapshot for one (type, temperature, additive) combination.
type Properties struct {
	Type                 Type    `json:"type"`
	TemperatureF         float64 `json:"temperature_f"`
	AdditiveFraction     float64 `json:"additive_fraction"`
	DensityLbFt3         float64 `json:"density_lb_ft3"`
	KinematicViscosity   float64 `json:"kinematic_viscosity_ft2_s"`
	HazenWilliamsCFactor float64 `json:"hw_c_multiplier"`
	RoughnessFactor      float64 `json:"roughness_multiplier"`
}

// glycolCoefficients returns density slope, ln-viscosity slope and HW C slope per unit additive.
func glycolCoefficients(t Type) (density, viscosity, hwc float64) {
	switch t {
	case EthyleneGlycol:
		return 0.14, 2.67, 0.30
	case PropyleneGlycol:
		return 0.08, 3.58, 0.40
	default:
		return 0, 0, 0
	}
}

// Input is the boundary form of a fluid selection; nil temperature means nominal.
type Input struct {
	Type             Type     `json:"type"`
	TemperatureF     *float64 `json:"temperature_f"`
	AdditiveFraction float64  `json:"additive_fraction"`
}

// ResolveInput applies defaults: water when the type is empty, nominal temperature when absent.
func ResolveInput(in Input) (Properties, error) {
	t := NominalTemperatureF
	if in.TemperatureF != nil {
		t = *in.TemperatureF
	}
	return Resolve(in.Type, t, in.AdditiveFraction)
}

// Resolve computes fluid properties. Water density follows the Tanaka
// correlation and viscosity the Vogel equation; glycol mixtures scale both
// by additive fraction.
func Resolve(ft Type, temperatureF, additive float64) (Properties, error) {
	ft = Type(strings.ToLower(strings.TrimSpace(string(ft))))
	if ft == "" {
		ft = Water
	}
	if err := props.InRange("additive_fraction", additive, 0, maxAdditive); err != nil {
		return Properties{}, err
	}
	minT := minWaterTempF
	switch ft {
	case Water:
		if additive > 0 {
			return Properties{}, &props.PropertyResolutionError{Field: "additive_fraction", Value: additive, Reason: "water takes no additive"}
		}
	case EthyleneGlycol, PropyleneGlycol:
		minT = minWaterTempF - 110*additive
	default:
		return Properties{}, &props.PropertyResolutionError{Field: "fluid_type", Value: math.NaN(), Reason: "unknown fluid " + string(ft)}
	}
	if err := props.InRange("temperature_f", temperatureF, minT, maxTemperatureF); err != nil {
		return Properties{}, err
	}

	// correlations are fitted above freezing; glycol mixtures below it reuse the 33 °F water base
	c := (math.Max(temperatureF, minWaterTempF) - 32) * 5 / 9
	rhoW := 1000 * (1 - (c+288.9414)/(508929.2*(c+68.12963))*math.Pow(c-3.9863, 2))
	muW := math.Exp(-3.7188+578.919/((c+273.15)-137.546)) * 1e-3

	kd, kv, kc := glycolCoefficients(ft)
	rho := rhoW * (1 + kd*additive)
	mu := muW * math.Exp(kv*additive)
	if temperatureF < minWaterTempF {
		// viscosity rises roughly 2% per °F below the water base
		mu *= math.Exp(0.02 * (minWaterTempF - temperatureF))
	}

	return Properties{
		Type:                 ft,
		TemperatureF:         temperatureF,
		AdditiveFraction:     additive,
		DensityLbFt3:         rho * 0.06242796,
		KinematicViscosity:   mu / rho * 10.76391,
		HazenWilliamsCFactor: 1 - kc*additive,
		RoughnessFactor:      1,
	}, nil
}

// SpecificGravity is density relative to 60 °F water.
func (p Properties) SpecificGravity() float64 {
	return p.DensityLbFt3 / waterDensityLbF3
}
