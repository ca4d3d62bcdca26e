package demand

import (
	"Ductolator/internal/calc/trace"
	"Ductolator/internal/codes"
)

// Result is the common outcome of a demand or capacity calculation.
type Result struct {
	Profile  string        `json:"profile"`
	Sizing   Sizing        `json:"sizing"`
	Fields   []trace.Field `json:"fields"`
	Trace    trace.Trace   `json:"trace"`
	Warnings []string      `json:"warnings"`
}

type FixturesInput struct {
	Profile string       `json:"profile"`
	Rows    []FixtureRow `json:"rows"`
}

type FixturesResult struct {
	Profile   string        `json:"profile"`
	CurveKey  string        `json:"curve_key"`
	TotalWSFU float64       `json:"total_wsfu"`
	DemandGPM float64       `json:"demand_gpm"`
	Fields    []trace.Field `json:"fields"`
	Trace     trace.Trace   `json:"trace"`
	Warnings  []string      `json:"warnings"`
}

// Fixtures rolls a fixture schedule up to WSFU and converts it to probable
// demand through the profile's fixture-demand curve.
func Fixtures(reg *Registry, p codes.Profile, in FixturesInput) FixturesResult {
	res := FixturesResult{Profile: p.ID, CurveKey: p.FixtureDemandKey}
	for _, row := range in.Rows {
		fu := row.FixtureUnits()
		res.TotalWSFU += fu
		res.Trace.Add("Fixtures", row.Name, fu, "WSFU")
	}
	var ws []string
	res.DemandGPM, ws = reg.FixtureDemandGpm(p.FixtureDemandKey, res.TotalWSFU)
	res.Warnings = append(res.Warnings, ws...)
	res.Trace.Add("Demand", "Total fixture units", res.TotalWSFU, "WSFU")
	res.Trace.Add("Demand", "Probable demand", res.DemandGPM, "gpm")
	res.Fields = []trace.Field{
		{Name: "total_wsfu", Value: res.TotalWSFU, Unit: "WSFU"},
		{Name: "demand_gpm", Value: res.DemandGPM, Unit: "gpm"},
	}
	return res
}

type SanitaryInput struct {
	Profile      string  `json:"profile"`
	Dfu          float64 `json:"dfu"`
	SlopeFtPerFt float64 `json:"slope_ft_per_ft"`
	// Branch sizes from the branch/stack table instead of the sloped drain table.
	Branch bool `json:"branch"`
	// DiameterIn > 0 asks for the allowable DFU of an existing branch.
	DiameterIn float64 `json:"diameter_in"`
}

func Sanitary(reg *Registry, p codes.Profile, in SanitaryInput) Result {
	key := p.SanitaryDfuKey
	var s Sizing
	var ws []string
	switch {
	case in.DiameterIn > 0 && in.Branch:
		s, ws = reg.AllowableSanitaryBranch(key, in.DiameterIn, in.SlopeFtPerFt)
		s = s.withDemand(in.Dfu)
	case in.DiameterIn > 0:
		s, ws = reg.AllowableSanitary(key, in.DiameterIn, in.SlopeFtPerFt)
		s = s.withDemand(in.Dfu)
	case in.Branch:
		s, ws = reg.SizeSanitaryBranch(key, in.Dfu, in.SlopeFtPerFt)
	default:
		s, ws = reg.SizeSanitary(key, in.Dfu, in.SlopeFtPerFt)
	}
	return sizingResult(p, "Sanitary", "DFU", s, ws)
}

type VentInput struct {
	Profile           string  `json:"profile"`
	Dfu               float64 `json:"dfu"`
	DevelopedLengthFt float64 `json:"developed_length_ft"`
	Stack             bool    `json:"stack"`
	DiameterIn        float64 `json:"diameter_in"`
}

func Vent(reg *Registry, p codes.Profile, in VentInput) Result {
	key := p.VentSizingKey
	var s Sizing
	var ws []string
	switch {
	case in.DiameterIn > 0 && in.Stack:
		s, ws = reg.AllowableVentStack(key, in.DiameterIn, in.DevelopedLengthFt)
		s = s.withDemand(in.Dfu)
	case in.DiameterIn > 0:
		s, ws = reg.AllowableVentBranch(key, in.DiameterIn)
		s = s.withDemand(in.Dfu)
	case in.Stack:
		s, ws = reg.SizeVentStack(key, in.Dfu, in.DevelopedLengthFt)
	default:
		s, ws = reg.SizeVentBranch(key, in.Dfu)
	}
	res := sizingResult(p, "Vent", "DFU", s, ws)
	if in.Stack {
		if v, ok := reg.Vents[key]; ok {
			res.Trace.Add("Vent", "Length scale", v.LengthScale(in.DevelopedLengthFt), "")
		}
	}
	return res
}

type StormInput struct {
	Profile         string  `json:"profile"`
	FlowGpm         float64 `json:"flow_gpm"`
	RoofAreaFt2     float64 `json:"roof_area_ft2"`
	RainfallInPerHr float64 `json:"rainfall_in_per_hr"`
	DiameterIn      float64 `json:"diameter_in"`
}

// Storm sizes a leader from flow, or from roof area and rainfall rate when
// no flow is given.
func Storm(reg *Registry, p codes.Profile, in StormInput) Result {
	key := p.StormSizingKey
	flow := in.FlowGpm
	fromArea := flow <= 0 && in.RoofAreaFt2 > 0
	if fromArea {
		flow = StormFlowGpm(in.RoofAreaFt2, in.RainfallInPerHr)
	}
	var s Sizing
	var ws []string
	if in.DiameterIn > 0 {
		s, ws = reg.AllowableStormLeader(key, in.DiameterIn)
		s = s.withDemand(flow)
	} else {
		s, ws = reg.SizeStormLeader(key, flow)
	}
	res := sizingResult(p, "Storm", "gpm", s, ws)
	if fromArea {
		res.Trace.Add("Storm", "Roof area", in.RoofAreaFt2, "ft²")
		res.Trace.Add("Storm", "Rainfall rate", in.RainfallInPerHr, "in/hr")
	}
	return res
}

func sizingResult(p codes.Profile, section, unit string, s Sizing, ws []string) Result {
	res := Result{Profile: p.ID, Sizing: s, Warnings: ws}
	res.Trace.Note(section, "Table", s.Key)
	res.Trace.Add(section, "Demand", s.Demand, unit)
	res.Trace.Add(section, "Diameter", s.DiameterIn, "in")
	res.Trace.Add(section, "Capacity", s.Capacity, unit)
	if s.SlopeFtPerFt > 0 {
		res.Trace.Add(section, "Slope", s.SlopeFtPerFt, "ft/ft")
	}
	res.Fields = []trace.Field{
		{Name: "demand", Value: s.Demand, Unit: unit},
		{Name: "diameter_in", Value: s.DiameterIn, Unit: "in"},
		{Name: "capacity", Value: s.Capacity, Unit: unit},
		{Name: "slope_ft_per_ft", Value: s.SlopeFtPerFt, Unit: "ft/ft"},
		{Name: "utilization", Value: s.Utilization},
	}
	return res
}

type GasRequest struct {
	Profile string `json:"profile"`
	// Method overrides the profile's gas sizing key.
	Method   string `json:"method"`
	Material string `json:"material"`
	GasInput
}

type GasResult struct {
	Profile    string        `json:"profile"`
	Method     string        `json:"method"`
	RequiredIn float64       `json:"required_in"`
	Nominal    string        `json:"nominal,omitempty"`
	InsideIn   float64       `json:"inside_in,omitempty"`
	Fields     []trace.Field `json:"fields"`
	Trace      trace.Trace   `json:"trace"`
	Warnings   []string      `json:"warnings"`
}

// Gas returns the required inside diameter of a fuel-gas run. nominal may be
// nil when no material catalog is available. Inputs the formula cannot use
// give a zero diameter and a warning.
func Gas(reg *Registry, p codes.Profile, in GasRequest, nominal NominalFunc) GasResult {
	key := in.Method
	if key == "" {
		key = p.GasSizingKey
	}
	res := GasResult{Profile: p.ID, Method: key}
	m, ws := reg.GasMethod(key)
	res.Warnings = append(res.Warnings, ws...)
	if len(ws) > 0 {
		return res
	}
	d, err := m.RequiredDiameterIn(in.GasInput)
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
		res.Fields = gasFields(res)
		return res
	}
	res.RequiredIn = d
	res.Trace.Note("Gas", "Formula", string(m.formula()))
	res.Trace.Add("Gas", "Demand", in.DemandCFH, "cfh")
	res.Trace.Add("Gas", "Length", in.LengthFt, "ft")
	res.Trace.Add("Gas", "Required ID", d, "in")
	if in.Material != "" && nominal != nil {
		name, id, ok := nominal(in.Material, d)
		if ok {
			res.Nominal, res.InsideIn = name, id
			res.Trace.Note("Gas", "Nominal size", name)
		} else {
			res.Warnings = append(res.Warnings, "no nominal size of "+in.Material+" meets the required diameter")
		}
	}
	res.Fields = gasFields(res)
	return res
}

func gasFields(res GasResult) []trace.Field {
	return []trace.Field{
		{Name: "required_in", Value: res.RequiredIn, Unit: "in"},
		{Name: "inside_in", Value: res.InsideIn, Unit: "in"},
	}
}

// NominalFunc picks the smallest nominal size of a material whose inside
// diameter meets requiredIn.
type NominalFunc func(material string, requiredIn float64) (nominal string, insideIn float64, ok bool)
