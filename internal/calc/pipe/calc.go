// Package pipe sizes liquid piping with Hazen-Williams and Darcy-Weisbach
// estimates reported side by side.
package pipe

import (
	"errors"
	"fmt"

	"Ductolator/internal/calc/fittings"
	"Ductolator/internal/calc/fluid"
	"Ductolator/internal/calc/friction"
	"Ductolator/internal/calc/trace"
	"Ductolator/internal/catalog"
	"Ductolator/internal/codes"
)

var ErrNoDiameter = errors.New("no inside diameter: give an explicit inside diameter or a material and nominal size")

const noFlowWarning = "flow is not positive; nothing to size"

const (
	DefaultLengthFt    = 100.0
	DefaultC           = 140.0
	DefaultRoughnessFt = 5e-6
)

type Input struct {
	Profile          string             `json:"profile"`
	FlowGPM          float64            `json:"flow_gpm"`
	Material         string             `json:"material"`
	NominalSize      string             `json:"nominal_size"`
	InsideDiameterIn float64            `json:"inside_diameter_in"`
	HazenWilliamsC   float64            `json:"hazen_williams_c"`
	Aged             bool               `json:"aged"`
	Hot              bool               `json:"hot"`
	LengthFt         float64            `json:"length_ft"`
	Fluid            fluid.Input        `json:"fluid"`
	Fittings         []fittings.Request `json:"fittings"`
}

// Estimate is one correlation's friction rate.
type Estimate struct {
	FtPer100  float64 `json:"ft_per_100ft"`
	PsiPer100 float64 `json:"psi_per_100ft"`
}

type Result struct {
	Profile          string           `json:"profile"`
	Material         string           `json:"material,omitempty"`
	NominalSize      string           `json:"nominal_size,omitempty"`
	InsideDiameterIn float64          `json:"inside_diameter_in"`
	FlowGPM          float64          `json:"flow_gpm"`
	VelocityFps      float64          `json:"velocity_fps"`
	MaxVelocityFps   float64          `json:"max_velocity_fps"`
	VelocityHeadFt   float64          `json:"velocity_head_ft"`
	Reynolds         float64          `json:"reynolds"`
	Laminar          bool             `json:"laminar"`
	FrictionFactor   float64          `json:"friction_factor"`
	HazenWilliamsC   float64          `json:"hazen_williams_c"`
	HazenWilliams    Estimate         `json:"hazen_williams"`
	DarcyWeisbach    Estimate         `json:"darcy_weisbach"`
	Losses           fittings.Outcome `json:"losses"`
	TotalPsi         float64          `json:"total_psi"`
	Fluid            fluid.Properties `json:"fluid"`
	Fields           []trace.Field    `json:"fields"`
	Trace            trace.Trace      `json:"trace"`
	Warnings         []string         `json:"warnings"`
}

// pipeSpec is the resolved material state shared by the forward and inverse
// calculations.
type pipeSpec struct {
	material  catalog.Material
	known     bool
	c         float64
	roughness float64
	fluid     fluid.Properties
	profile   codes.Profile
}

func resolveSpec(material string, cOverride float64, aged bool, fl fluid.Input, profileID string, cat *catalog.Snapshot, t *trace.Trace, ws *[]string) (pipeSpec, error) {
	var s pipeSpec
	props, err := fluid.ResolveInput(fl)
	if err != nil {
		return s, err
	}
	s.fluid = props
	t.Note("Fluid", "Type", string(props.Type))
	t.Add("Fluid", "Temperature", props.TemperatureF, "°F")
	t.Add("Fluid", "Density", props.DensityLbFt3, "lb/ft³")
	t.Add("Fluid", "Kinematic viscosity", props.KinematicViscosity, "ft²/s")

	var pws []string
	s.profile, pws = cat.Profiles.Resolve(profileID)
	*ws = append(*ws, pws...)

	if material != "" {
		s.material, s.known = cat.Material(material)
		if !s.known {
			*ws = append(*ws, fmt.Sprintf("material %q not in catalog", material))
		}
	}
	baseC := cOverride
	if baseC <= 0 && s.known {
		baseC = s.material.HazenWilliamsC(aged)
	}
	if baseC <= 0 {
		baseC = DefaultC
		t.Add("Pipe", "C (default)", baseC, "")
	}
	s.c = baseC * props.HazenWilliamsCFactor
	s.roughness = DefaultRoughnessFt
	if s.known {
		s.roughness = s.material.RoughnessFt
	}
	s.roughness *= props.RoughnessFactor
	return s, nil
}

// darcy returns the Darcy-Weisbach result for flow through an inside diameter.
func (s pipeSpec) darcy(flowGPM, idIn float64) friction.Result {
	return friction.Solve(friction.PipeVelocityFps(flowGPM, idIn), idIn/12, s.roughness, s.fluid.KinematicViscosity)
}

func (s pipeSpec) psiPerFtHead() float64 {
	return s.fluid.DensityLbFt3 / friction.PsfPerPsi
}

// Calculate evaluates one pipe run. An explicit inside diameter overrides the
// material's nominal size table.
func Calculate(in Input, cat *catalog.Snapshot) (Result, error) {
	if cat == nil {
		cat = catalog.Builtin()
	}
	res := Result{FlowGPM: in.FlowGPM}
	spec, err := resolveSpec(in.Material, in.HazenWilliamsC, in.Aged, in.Fluid, in.Profile, cat, &res.Trace, &res.Warnings)
	if err != nil {
		return res, err
	}
	res.Profile = spec.profile.ID
	res.Fluid = spec.fluid

	switch {
	case in.InsideDiameterIn > 0:
		res.InsideDiameterIn = in.InsideDiameterIn
		if in.NominalSize != "" {
			res.Trace.Note("Pipe", "Nominal size", "ignored; explicit inside diameter given")
		}
	case spec.known && in.NominalSize != "":
		id, ok := spec.material.InsideDiameter(in.NominalSize)
		if !ok {
			return res, fmt.Errorf("%w: %s has no size %q", ErrNoDiameter, spec.material.Key, in.NominalSize)
		}
		res.InsideDiameterIn = id
		res.NominalSize = in.NominalSize
	default:
		return res, ErrNoDiameter
	}
	if spec.known {
		res.Material = spec.material.Key
	}
	if in.FlowGPM <= 0 {
		res.Warnings = append(res.Warnings, noFlowWarning)
		res.Fields = res.fields()
		return res, nil
	}

	evaluate(&res, spec, in.FlowGPM, in.Hot)

	length := in.LengthFt
	if length <= 0 {
		length = DefaultLengthFt
		res.Trace.Add("Input", "Length (default)", length, "ft")
	}
	sel, ws := fittings.Resolve(in.Fittings, cat.FittingsIn("pipe"))
	res.Warnings = append(res.Warnings, ws...)
	velocityHeadPsi := res.VelocityHeadFt * spec.psiPerFtHead()
	res.Losses = fittings.Apply(sel, length, res.DarcyWeisbach.PsiPer100/100, velocityHeadPsi)
	res.TotalPsi = res.Losses.TotalLoss

	res.Trace.Note("Losses", "Fitting method", string(res.Losses.Method))
	res.Trace.Add("Losses", "Run", res.Losses.RunLoss, "psi")
	res.Trace.Add("Losses", "Fittings", res.Losses.FittingLoss, "psi")
	res.Trace.Add("Losses", "Total", res.TotalPsi, "psi")
	res.Fields = res.fields()
	return res, nil
}

// evaluate fills the velocity, both friction estimates and the advisories.
func evaluate(res *Result, spec pipeSpec, flowGPM float64, hot bool) {
	id := res.InsideDiameterIn
	res.VelocityFps = friction.PipeVelocityFps(flowGPM, id)
	res.VelocityHeadFt = friction.VelocityHead(res.VelocityFps)
	res.MaxVelocityFps = spec.profile.MaxVelocityFps(hot)

	dw := spec.darcy(flowGPM, id)
	res.Reynolds = dw.Reynolds
	res.FrictionFactor = dw.FrictionFactor
	res.DarcyWeisbach = Estimate{FtPer100: dw.HeadLossPerFt * 100}
	res.DarcyWeisbach.PsiPer100 = res.DarcyWeisbach.FtPer100 * spec.psiPerFtHead()

	res.HazenWilliamsC = spec.c
	res.HazenWilliams = Estimate{FtPer100: friction.HazenWilliamsFtPer100(flowGPM, id, spec.c)}
	res.HazenWilliams.PsiPer100 = res.HazenWilliams.FtPer100 * spec.psiPerFtHead()

	res.Trace.Add("Pipe", "Inside diameter", id, "in")
	res.Trace.Add("Flow", "Flow", flowGPM, "gpm")
	res.Trace.Add("Flow", "Velocity", res.VelocityFps, "fps")
	res.Trace.Add("Friction", "Reynolds", res.Reynolds, "")
	res.Trace.Add("Friction", "Friction factor", res.FrictionFactor, "")
	res.Trace.Add("Friction", "Darcy-Weisbach", res.DarcyWeisbach.PsiPer100, "psi/100 ft")
	res.Trace.Add("Friction", "Hazen-Williams C", res.HazenWilliamsC, "")
	res.Trace.Add("Friction", "Hazen-Williams", res.HazenWilliams.PsiPer100, "psi/100 ft")

	if res.MaxVelocityFps > 0 && res.VelocityFps > res.MaxVelocityFps {
		res.Warnings = append(res.Warnings, fmt.Sprintf("velocity %.2f fps exceeds the %s limit of %.1f fps", res.VelocityFps, spec.profile.ID, res.MaxVelocityFps))
	}
	if res.Reynolds < friction.LaminarLimit {
		res.Laminar = true
		res.Warnings = append(res.Warnings, fmt.Sprintf("laminar flow (Re %.0f); friction factor evaluated at Re %.0f", res.Reynolds, friction.LaminarLimit))
	}
}

func (r *Result) fields() []trace.Field {
	return []trace.Field{
		{Name: "inside_diameter_in", Value: r.InsideDiameterIn, Unit: "in"},
		{Name: "flow_gpm", Value: r.FlowGPM, Unit: "gpm"},
		{Name: "velocity_fps", Value: r.VelocityFps, Unit: "fps"},
		{Name: "reynolds", Value: r.Reynolds},
		{Name: "friction_factor", Value: r.FrictionFactor},
		{Name: "hazen_williams_c", Value: r.HazenWilliamsC},
		{Name: "hw_psi_per_100ft", Value: r.HazenWilliams.PsiPer100, Unit: "psi/100 ft"},
		{Name: "dw_psi_per_100ft", Value: r.DarcyWeisbach.PsiPer100, Unit: "psi/100 ft"},
		{Name: "sum_k", Value: r.Losses.SumK},
		{Name: "sum_leq_ft", Value: r.Losses.SumLeqFt, Unit: "ft"},
		{Name: "run_loss_psi", Value: r.Losses.RunLoss, Unit: "psi"},
		{Name: "fitting_loss_psi", Value: r.Losses.FittingLoss, Unit: "psi"},
		{Name: "total_loss_psi", Value: r.TotalPsi, Unit: "psi"},
	}
}
