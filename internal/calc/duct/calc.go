// Package duct sizes round and rectangular air ducts.
package duct

import (
	"errors"
	"fmt"
	"math"

	"Ductolator/internal/calc/air"
	"Ductolator/internal/calc/fittings"
	"Ductolator/internal/calc/friction"
	"Ductolator/internal/calc/trace"
	"Ductolator/internal/catalog"
)

// ErrInsufficientInputs is returned when the request leaves the duct under-determined.
var ErrInsufficientInputs = errors.New("insufficient inputs: give a diameter or both sides with velocity, flow or friction, or give flow with friction")

const (
	DefaultLengthFt    = 100.0
	DefaultRoughnessFt = 5e-4 // galvanized steel

	minDiameterIn = 0.5
	maxDiameterIn = 200.0
	minVelocity   = 1.0
	maxVelocity   = 20000.0
)

type Mode string

const (
	ModeRound       Mode = "round"
	ModeRectangular Mode = "rectangular"
	ModeSolveRound  Mode = "solve-round"
)

type Input struct {
	FlowCFM              float64            `json:"flow_cfm"`
	VelocityFPM          float64            `json:"velocity_fpm"`
	Preset               Preset             `json:"preset"`
	FrictionInWCPer100Ft float64            `json:"friction_in_wc_per_100ft"`
	DiameterIn           float64            `json:"diameter_in"`
	WidthIn              float64            `json:"width_in"`
	HeightIn             float64            `json:"height_in"`
	LengthFt             float64            `json:"length_ft"`
	Material             string             `json:"material"`
	RoughnessFt          *float64           `json:"roughness_ft"`
	TemperatureF         *float64           `json:"temperature_f"`
	AltitudeFt           *float64           `json:"altitude_ft"`
	Fittings             []fittings.Request `json:"fittings"`
}

type Result struct {
	Mode                 Mode             `json:"mode"`
	DiameterIn           float64          `json:"diameter_in"`
	WidthIn              float64          `json:"width_in"`
	HeightIn             float64          `json:"height_in"`
	EquivalentDiameterIn float64          `json:"equivalent_diameter_in"`
	HydraulicDiameterIn  float64          `json:"hydraulic_diameter_in"`
	AreaFt2              float64          `json:"area_ft2"`
	FlowCFM              float64          `json:"flow_cfm"`
	VelocityFPM          float64          `json:"velocity_fpm"`
	VelocityPressureInWC float64          `json:"velocity_pressure_in_wc"`
	Reynolds             float64          `json:"reynolds"`
	FrictionFactor       float64          `json:"friction_factor"`
	FrictionInWCPer100Ft float64          `json:"friction_in_wc_per_100ft"`
	Losses               fittings.Outcome `json:"losses"`
	TotalPressureInWC    float64          `json:"total_pressure_in_wc"`
	Air                  air.Properties   `json:"air"`
	Fields               []trace.Field    `json:"fields"`
	Trace                trace.Trace      `json:"trace"`
	Warnings             []string         `json:"warnings"`
}

// solver evaluates friction for one air state and surface roughness.
type solver struct {
	air       air.Properties
	roughness float64
}

// round returns the friction result for flow through a round duct.
func (s solver) round(diameterIn, flowCFM float64) friction.Result {
	area := friction.RoundAreaFt2(diameterIn)
	if area <= 0 {
		return friction.Result{}
	}
	vFps := flowCFM / area / 60
	return friction.Solve(vFps, diameterIn/12, s.roughness, s.air.KinematicViscosity)
}

// inWCPer100 converts a Darcy result to in.wc per 100 ft.
func (s solver) inWCPer100(r friction.Result) float64 {
	return r.PressurePerFt(s.air.DensityLbFt3) / friction.PsfPerInWC * 100
}

// Calculate resolves the duct geometry and flow, then the run and fitting
// losses. Geometry is taken in fixed priority: round diameter, rectangular
// sides, then an inverse solve from flow and friction.
func Calculate(in Input, cat *catalog.Snapshot) (Result, error) {
	var res Result
	if cat == nil {
		cat = catalog.Builtin()
	}
	props, err := air.ResolveOptional(in.TemperatureF, in.AltitudeFt)
	if err != nil {
		return res, err
	}
	res.Air = props
	res.Trace.Add("Air", "Temperature", props.TemperatureF, "°F")
	res.Trace.Add("Air", "Altitude", props.AltitudeFt, "ft")
	res.Trace.Add("Air", "Density", props.DensityLbFt3, "lb/ft³")

	s := solver{air: props, roughness: roughness(in, cat, &res)}

	velocity := in.VelocityFPM
	if velocity <= 0 && in.Preset != "" {
		if v, ok := in.Preset.VelocityFpm(); ok {
			velocity = v
			res.Trace.Note("Input", "Preset", string(in.Preset))
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unknown velocity preset %q", in.Preset))
		}
	} else if in.Preset != "" {
		if v, ok := in.Preset.VelocityFpm(); ok && velocity > v {
			res.Warnings = append(res.Warnings, fmt.Sprintf("velocity %.0f fpm exceeds %s recommendation of %.0f fpm", velocity, in.Preset, v))
		}
	}

	switch {
	case in.DiameterIn > 0:
		res.Mode = ModeRound
		res.DiameterIn = in.DiameterIn
		res.EquivalentDiameterIn = in.DiameterIn
		res.HydraulicDiameterIn = in.DiameterIn
		res.AreaFt2 = friction.RoundAreaFt2(in.DiameterIn)
	case in.WidthIn > 0 && in.HeightIn > 0:
		res.Mode = ModeRectangular
		res.WidthIn, res.HeightIn = in.WidthIn, in.HeightIn
		res.EquivalentDiameterIn = friction.EquivalentRoundIn(in.WidthIn, in.HeightIn)
		res.HydraulicDiameterIn = friction.RectHydraulicDiameterIn(in.WidthIn, in.HeightIn)
		res.AreaFt2 = friction.RectAreaFt2(in.WidthIn, in.HeightIn)
	case in.FlowCFM > 0 && in.FrictionInWCPer100Ft > 0:
		res.Mode = ModeSolveRound
		res.FlowCFM = in.FlowCFM
		d, ok := friction.Bisect(func(d float64) float64 {
			return s.inWCPer100(s.round(d, in.FlowCFM))
		}, in.FrictionInWCPer100Ft, minDiameterIn, maxDiameterIn)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("friction target %g in.wc/100 ft unreachable; diameter clamped to %g in", in.FrictionInWCPer100Ft, d))
		}
		res.DiameterIn = d
		res.EquivalentDiameterIn = res.DiameterIn
		res.HydraulicDiameterIn = res.DiameterIn
		res.AreaFt2 = friction.RoundAreaFt2(res.DiameterIn)
		res.VelocityFPM = in.FlowCFM / res.AreaFt2
		if velocity > 0 {
			res.Trace.Note("Input", "Velocity", "ignored; diameter solved from flow and friction")
		}
	default:
		return res, ErrInsufficientInputs
	}

	if res.Mode != ModeSolveRound {
		switch {
		case velocity > 0:
			res.VelocityFPM = velocity
			res.FlowCFM = velocity * res.AreaFt2
			if in.FlowCFM > 0 {
				res.Trace.Note("Input", "Flow", "ignored; velocity takes precedence")
			}
		case in.FlowCFM > 0:
			res.FlowCFM = in.FlowCFM
			res.VelocityFPM = in.FlowCFM / res.AreaFt2
		case in.FrictionInWCPer100Ft > 0:
			area := res.AreaFt2
			de := res.EquivalentDiameterIn
			v, ok := friction.Bisect(func(v float64) float64 {
				return s.inWCPer100(s.round(de, v*area))
			}, in.FrictionInWCPer100Ft, minVelocity, maxVelocity)
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("friction target %g in.wc/100 ft unreachable; velocity clamped to %g fpm", in.FrictionInWCPer100Ft, v))
			}
			res.VelocityFPM = v
			res.FlowCFM = res.VelocityFPM * area
		default:
			return res, ErrInsufficientInputs
		}
		if in.FrictionInWCPer100Ft > 0 && (velocity > 0 || in.FlowCFM > 0) {
			res.Trace.Note("Input", "Friction", "ignored; computed from flow")
		}
	}

	// Rectangular friction is the round-duct friction of De at the same flow.
	// Re is reported on the actual velocity and hydraulic diameter.
	fr := s.round(res.EquivalentDiameterIn, res.FlowCFM)
	res.Reynolds = friction.Reynolds(res.VelocityFPM/60, res.HydraulicDiameterIn/12, props.KinematicViscosity)
	res.FrictionFactor = fr.FrictionFactor
	res.FrictionInWCPer100Ft = s.inWCPer100(fr)
	res.VelocityPressureInWC = props.VelocityPressureInWC(res.VelocityFPM)

	length := in.LengthFt
	if length <= 0 {
		length = DefaultLengthFt
		res.Trace.Add("Input", "Length (default)", length, "ft")
	}
	sel, ws := fittings.Resolve(in.Fittings, cat.FittingsIn("duct"))
	res.Warnings = append(res.Warnings, ws...)
	res.Losses = fittings.Apply(sel, length, res.FrictionInWCPer100Ft/100, res.VelocityPressureInWC)
	res.TotalPressureInWC = res.Losses.TotalLoss

	if math.IsNaN(res.TotalPressureInWC) || math.IsInf(res.TotalPressureInWC, 0) {
		return res, fmt.Errorf("duct calculation did not converge")
	}
	res.traceGeometry()
	res.Fields = res.fields()
	return res, nil
}

func roughness(in Input, cat *catalog.Snapshot, res *Result) float64 {
	if in.RoughnessFt != nil && *in.RoughnessFt >= 0 {
		return *in.RoughnessFt
	}
	if in.Material == "" {
		return DefaultRoughnessFt
	}
	if m, ok := cat.Material(in.Material); ok {
		res.Trace.Note("Input", "Material", m.DisplayName)
		return m.RoughnessFt
	}
	res.Warnings = append(res.Warnings, fmt.Sprintf("material %q not in catalog; using galvanized roughness", in.Material))
	return DefaultRoughnessFt
}

func (r *Result) traceGeometry() {
	r.Trace.Note("Geometry", "Mode", string(r.Mode))
	if r.Mode == ModeRectangular {
		r.Trace.Add("Geometry", "Width", r.WidthIn, "in")
		r.Trace.Add("Geometry", "Height", r.HeightIn, "in")
		r.Trace.Add("Geometry", "Equivalent diameter", r.EquivalentDiameterIn, "in")
	} else {
		r.Trace.Add("Geometry", "Diameter", r.DiameterIn, "in")
	}
	r.Trace.Add("Flow", "Flow", r.FlowCFM, "cfm")
	r.Trace.Add("Flow", "Velocity", r.VelocityFPM, "fpm")
	r.Trace.Add("Flow", "Velocity pressure", r.VelocityPressureInWC, "in.wc")
	r.Trace.Add("Friction", "Reynolds", r.Reynolds, "")
	r.Trace.Add("Friction", "Friction factor", r.FrictionFactor, "")
	r.Trace.Add("Friction", "Friction rate", r.FrictionInWCPer100Ft, "in.wc/100 ft")
	r.Trace.Note("Losses", "Fitting method", string(r.Losses.Method))
	r.Trace.Add("Losses", "Run", r.Losses.RunLoss, "in.wc")
	r.Trace.Add("Losses", "Fittings", r.Losses.FittingLoss, "in.wc")
	r.Trace.Add("Losses", "Total", r.TotalPressureInWC, "in.wc")
}

func (r *Result) fields() []trace.Field {
	return []trace.Field{
		{Name: "diameter_in", Value: r.DiameterIn, Unit: "in"},
		{Name: "width_in", Value: r.WidthIn, Unit: "in"},
		{Name: "height_in", Value: r.HeightIn, Unit: "in"},
		{Name: "equivalent_diameter_in", Value: r.EquivalentDiameterIn, Unit: "in"},
		{Name: "area_ft2", Value: r.AreaFt2, Unit: "ft²"},
		{Name: "flow_cfm", Value: r.FlowCFM, Unit: "cfm"},
		{Name: "velocity_fpm", Value: r.VelocityFPM, Unit: "fpm"},
		{Name: "velocity_pressure_in_wc", Value: r.VelocityPressureInWC, Unit: "in.wc"},
		{Name: "reynolds", Value: r.Reynolds},
		{Name: "friction_factor", Value: r.FrictionFactor},
		{Name: "friction_in_wc_per_100ft", Value: r.FrictionInWCPer100Ft, Unit: "in.wc/100 ft"},
		{Name: "sum_k", Value: r.Losses.SumK},
		{Name: "sum_leq_ft", Value: r.Losses.SumLeqFt, Unit: "ft"},
		{Name: "run_loss_in_wc", Value: r.Losses.RunLoss, Unit: "in.wc"},
		{Name: "fitting_loss_in_wc", Value: r.Losses.FittingLoss, Unit: "in.wc"},
		{Name: "total_loss_in_wc", Value: r.TotalPressureInWC, Unit: "in.wc"},
	}
}
