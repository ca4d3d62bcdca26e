package demand

import (
	"errors"
	"fmt"
	"math"
)

type GasFormula string

const (
	// LowPressure is the longhand formula for gas pressures under 1.5 psi.
	LowPressure GasFormula = "low-pressure"
	// HighPressure is the longhand formula for gas pressures of 1.5 psi and above.
	HighPressure GasFormula = "high-pressure"

	NaturalGasCr   = 0.6094
	NaturalGasY    = 0.9992
	atmospherePsia = 14.7
)

// GasMethod is a registered fuel-gas sizing method.
type GasMethod struct {
	Key     string     `json:"key"`
	Formula GasFormula `json:"formula,omitempty"`
	Cr      float64    `json:"cr,omitempty"`
	Y       float64    `json:"y,omitempty"`
}

func (g GasMethod) Validate() error {
	if g.Key == "" {
		return errors.New("gas method key is empty")
	}
	switch g.formula() {
	case LowPressure, HighPressure:
	default:
		return fmt.Errorf("gas method %q has unknown formula %q", g.Key, g.Formula)
	}
	if g.Cr < 0 || g.Y < 0 {
		return fmt.Errorf("gas method %q has negative constants", g.Key)
	}
	return nil
}

func (g GasMethod) formula() GasFormula {
	if g.Formula == "" {
		return LowPressure
	}
	return g.Formula
}

func (g GasMethod) constants() (cr, y float64) {
	cr, y = g.Cr, g.Y
	if cr <= 0 {
		cr = NaturalGasCr
	}
	if y <= 0 {
		y = NaturalGasY
	}
	return cr, y
}

// GasInput describes one fuel-gas run. Low-pressure sizing uses DropInWC;
// high-pressure sizing uses InletPsig and DropPsi.
type GasInput struct {
	DemandCFH float64 `json:"demand_cfh"`
	LengthFt  float64 `json:"length_ft"`
	DropInWC  float64 `json:"drop_in_wc"`
	InletPsig float64 `json:"inlet_psig"`
	DropPsi   float64 `json:"drop_psi"`
}

// RequiredDiameterIn solves the method's formula for inside diameter in inches.
func (g GasMethod) RequiredDiameterIn(in GasInput) (float64, error) {
	if in.DemandCFH <= 0 || in.LengthFt <= 0 {
		return 0, errors.New("gas demand and length must be positive")
	}
	cr, y := g.constants()
	q := math.Pow(in.DemandCFH, 0.381)
	switch g.formula() {
	case HighPressure:
		p1 := in.InletPsig + atmospherePsia
		p2 := p1 - in.DropPsi
		if in.DropPsi <= 0 || p2 <= 0 {
			return 0, errors.New("high-pressure sizing needs a positive drop below inlet pressure")
		}
		return q / (18.93 * math.Pow((p1*p1-p2*p2)*y/(cr*in.LengthFt), 0.206)), nil
	default:
		if in.DropInWC <= 0 {
			return 0, errors.New("low-pressure sizing needs a positive drop in in.wc")
		}
		return q / (19.17 * math.Pow(in.DropInWC/(cr*in.LengthFt), 0.206)), nil
	}
}
