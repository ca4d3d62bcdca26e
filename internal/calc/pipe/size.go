package pipe

import (
	"fmt"

	"Ductolator/internal/calc/fluid"
	"Ductolator/internal/calc/friction"
	"Ductolator/internal/calc/trace"
	"Ductolator/internal/catalog"
)

type SizeMethod string

const (
	SizeDarcy         SizeMethod = "darcy-weisbach"
	SizeHazenWilliams SizeMethod = "hazen-williams"

	minSolveIn = 0.1
	maxSolveIn = 72.0
)

type SizeInput struct {
	Profile string  `json:"profile"`
	FlowGPM float64 `json:"flow_gpm"`
	// TargetPsiPer100Ft defaults to the code profile's friction target.
	TargetPsiPer100Ft float64     `json:"target_psi_per_100ft"`
	Method            SizeMethod  `json:"method"`
	Material          string      `json:"material"`
	HazenWilliamsC    float64     `json:"hazen_williams_c"`
	Aged              bool        `json:"aged"`
	Hot               bool        `json:"hot"`
	Fluid             fluid.Input `json:"fluid"`
}

type SizeResult struct {
	Profile           string        `json:"profile"`
	Method            SizeMethod    `json:"method"`
	TargetPsiPer100Ft float64       `json:"target_psi_per_100ft"`
	RequiredInsideIn  float64       `json:"required_inside_in"`
	NominalSize       string        `json:"nominal_size,omitempty"`
	NominalInsideIn   float64       `json:"nominal_inside_in,omitempty"`
	Check             *Result       `json:"check,omitempty"`
	Fields            []trace.Field `json:"fields"`
	Trace             trace.Trace   `json:"trace"`
	Warnings          []string      `json:"warnings"`
}

// Size solves for the inside diameter that meets a friction target and,
// when a material is given, picks the smallest nominal size that meets both
// the diameter and the profile's velocity limit.
func Size(in SizeInput, cat *catalog.Snapshot) (SizeResult, error) {
	if cat == nil {
		cat = catalog.Builtin()
	}
	res := SizeResult{Method: in.Method}
	if res.Method == "" {
		res.Method = SizeDarcy
	}
	spec, err := resolveSpec(in.Material, in.HazenWilliamsC, in.Aged, in.Fluid, in.Profile, cat, &res.Trace, &res.Warnings)
	if err != nil {
		return res, err
	}
	res.Profile = spec.profile.ID
	res.TargetPsiPer100Ft = in.TargetPsiPer100Ft
	if res.TargetPsiPer100Ft <= 0 {
		res.TargetPsiPer100Ft = spec.profile.DefaultFrictionPsiPer100Ft
		res.Trace.Add("Input", "Target (profile default)", res.TargetPsiPer100Ft, "psi/100 ft")
	}
	if in.FlowGPM <= 0 {
		res.Warnings = append(res.Warnings, noFlowWarning)
		res.Fields = res.fields(0)
		return res, nil
	}

	switch res.Method {
	case SizeHazenWilliams:
		ftPer100 := res.TargetPsiPer100Ft / spec.psiPerFtHead()
		res.RequiredInsideIn = friction.HazenWilliamsDiameter(in.FlowGPM, ftPer100, spec.c)
	case SizeDarcy:
		d, ok := friction.Bisect(func(d float64) float64 {
			return spec.darcy(in.FlowGPM, d).HeadLossPerFt * 100 * spec.psiPerFtHead()
		}, res.TargetPsiPer100Ft, minSolveIn, maxSolveIn)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("target %g psi/100 ft unreachable; clamped to %g in", res.TargetPsiPer100Ft, d))
		}
		res.RequiredInsideIn = d
	default:
		return res, fmt.Errorf("unknown sizing method %q", in.Method)
	}
	res.Trace.Note("Sizing", "Method", string(res.Method))
	res.Trace.Add("Sizing", "Required inside diameter", res.RequiredInsideIn, "in")

	checkID := res.RequiredInsideIn
	if spec.known && len(spec.material.Sizes) > 0 {
		if n, ok := pickNominal(spec, in.FlowGPM, res.RequiredInsideIn, in.Hot, &res); ok {
			res.NominalSize, res.NominalInsideIn = n.Nominal, n.InsideIn
			checkID = n.InsideIn
			res.Trace.Note("Sizing", "Nominal size", n.Nominal)
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no %s size meets %.3f in", spec.material.Key, res.RequiredInsideIn))
		}
	}

	check := Result{Profile: spec.profile.ID, Material: spec.material.Key, NominalSize: res.NominalSize, InsideDiameterIn: checkID, FlowGPM: in.FlowGPM, Fluid: spec.fluid}
	evaluate(&check, spec, in.FlowGPM, in.Hot)
	check.Fields = check.fields()
	res.Warnings = append(res.Warnings, check.Warnings...)
	res.Check = &check

	res.Fields = res.fields(check.VelocityFps)
	return res, nil
}

func (r *SizeResult) fields(velocityFps float64) []trace.Field {
	return []trace.Field{
		{Name: "target_psi_per_100ft", Value: r.TargetPsiPer100Ft, Unit: "psi/100 ft"},
		{Name: "required_inside_in", Value: r.RequiredInsideIn, Unit: "in"},
		{Name: "nominal_inside_in", Value: r.NominalInsideIn, Unit: "in"},
		{Name: "velocity_fps", Value: velocityFps, Unit: "fps"},
	}
}

// pickNominal returns the smallest size at or above requiredIn whose velocity
// stays within the profile limit, falling back to the smallest size meeting
// requiredIn.
func pickNominal(spec pipeSpec, flowGPM, requiredIn float64, hot bool, res *SizeResult) (catalog.NominalSize, bool) {
	first, ok := spec.material.Smallest(requiredIn)
	if !ok {
		return first, false
	}
	limit := spec.profile.MaxVelocityFps(hot)
	if limit <= 0 {
		return first, true
	}
	candidate := first
	for {
		if friction.PipeVelocityFps(flowGPM, candidate.InsideIn) <= limit {
			if candidate != first {
				res.Trace.Note("Sizing", "Upsized for velocity", candidate.Nominal)
			}
			return candidate, true
		}
		next, ok := spec.material.Smallest(candidate.InsideIn + 1e-9)
		if !ok {
			return first, true
		}
		candidate = next
	}
}
