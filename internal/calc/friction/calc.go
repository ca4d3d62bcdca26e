// Package friction holds the Reynolds number, friction factor and geometry
// mathematics shared by duct and pipe sizing.
package friction

import (
	"math"
)

const (
	// LaminarLimit is the Reynolds number below which flow is reported as laminar.
	// The friction factor correlation is evaluated at no less than this value.
	LaminarLimit = 2300.0

	Gravity = 32.174 // ft/s²

	maxIterations = 50
	tolerance     = 1e-10
)

type Result struct {
	Reynolds       float64 `json:"reynolds"`
	FrictionFactor float64 `json:"friction_factor"`
	// HeadLossPerFt is the Darcy-Weisbach head loss in ft of fluid per ft of run.
	HeadLossPerFt float64 `json:"head_loss_per_ft"`
}

// PressurePerFt converts the head loss to lbf/ft² per ft for a fluid density in lb/ft³.
func (r Result) PressurePerFt(densityLbFt3 float64) float64 {
	return r.HeadLossPerFt * densityLbFt3
}

func Reynolds(velocityFps, hydraulicDiameterFt, kinematicViscosity float64) float64 {
	if kinematicViscosity <= 0 {
		return 0
	}
	return velocityFps * hydraulicDiameterFt / kinematicViscosity
}

// Colebrook solves the Colebrook-White equation by fixed-point iteration on
// 1/sqrt(f), seeded by Swamee-Jain.
func Colebrook(reynolds, relativeRoughness float64) float64 {
	re := math.Max(reynolds, LaminarLimit)
	rr := math.Max(relativeRoughness, 0)

	f := 0.25 / math.Pow(math.Log10(rr/3.7+5.74/math.Pow(re, 0.9)), 2)
	x := 1 / math.Sqrt(f)
	for i := 0; i < maxIterations; i++ {
		next := -2 * math.Log10(rr/3.7+2.51*x/re)
		if math.Abs(next-x) < tolerance {
			x = next
			break
		}
		x = next
	}
	return 1 / (x * x)
}

// Solve evaluates Reynolds number, friction factor and head loss per foot.
// The returned Reynolds number is never clamped.
func Solve(velocityFps, hydraulicDiameterFt, roughnessFt, kinematicViscosity float64) Result {
	if hydraulicDiameterFt <= 0 {
		return Result{}
	}
	re := Reynolds(velocityFps, hydraulicDiameterFt, kinematicViscosity)
	f := Colebrook(re, roughnessFt/hydraulicDiameterFt)
	return Result{
		Reynolds:       re,
		FrictionFactor: f,
		HeadLossPerFt:  f / hydraulicDiameterFt * velocityFps * velocityFps / (2 * Gravity),
	}
}

// VelocityHead returns V²/2g in ft.
func VelocityHead(velocityFps float64) float64 {
	return velocityFps * velocityFps / (2 * Gravity)
}

// HazenWilliamsFtPer100 returns head loss in ft per 100 ft for flow in gpm
// through an inside diameter in inches.
func HazenWilliamsFtPer100(flowGpm, insideDiameterIn, c float64) float64 {
	if flowGpm <= 0 || insideDiameterIn <= 0 || c <= 0 {
		return 0
	}
	return 0.2083 * math.Pow(100/c, 1.852) * math.Pow(flowGpm, 1.852) / math.Pow(insideDiameterIn, 4.8655)
}

// HazenWilliamsDiameter inverts HazenWilliamsFtPer100 for the inside diameter in inches.
func HazenWilliamsDiameter(flowGpm, ftPer100, c float64) float64 {
	if flowGpm <= 0 || ftPer100 <= 0 || c <= 0 {
		return 0
	}
	return math.Pow(0.2083*math.Pow(100/c, 1.852)*math.Pow(flowGpm, 1.852)/ftPer100, 1/4.8655)
}

// Bisect finds x in [lo, hi] with f(x) == target for a monotonic f, searching
// in log space. When the target lies outside [f(lo), f(hi)] it returns the
// bracket end nearest the target and ok is false.
func Bisect(f func(float64) float64, target, lo, hi float64) (x float64, ok bool) {
	flo, fhi := f(lo)-target, f(hi)-target
	if flo == 0 {
		return lo, true
	}
	if fhi == 0 {
		return hi, true
	}
	if flo*fhi > 0 {
		if math.Abs(flo) < math.Abs(fhi) {
			return lo, false
		}
		return hi, false
	}
	a, b := math.Log(lo), math.Log(hi)
	for i := 0; i < 200; i++ {
		m := (a + b) / 2
		fm := f(math.Exp(m)) - target
		if fm == 0 || b-a < 1e-12 {
			return math.Exp(m), true
		}
		if (fm < 0) == (flo < 0) {
			a, flo = m, fm
		} else {
			b = m
		}
	}
	return math.Exp((a + b) / 2), true
}
