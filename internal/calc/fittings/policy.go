package fittings

import (
	"fmt"
	"sort"
	"strings"
)

// Profile is an immutable catalog fitting.
type Profile struct {
	Category           string  `json:"category"`
	Name               string  `json:"name"`
	K                  float64 `json:"k"`
	EquivalentLengthFt float64 `json:"equivalentLengthFt"`
}

// Selection pairs a fitting with a quantity. Negative quantities count as zero.
type Selection struct {
	Fitting  Profile `json:"fitting"`
	Quantity int     `json:"quantity"`
}

func (s Selection) count() float64 {
	if s.Quantity < 0 {
		return 0
	}
	return float64(s.Quantity)
}

type Method string

const (
	MethodNone             Method = "none"
	MethodEquivalentLength Method = "equivalent-length"
	MethodCoefficient      Method = "coefficient"
)

// sum adds per-selection terms in sorted order so the total does not depend
// on selection order.
func sum(sel []Selection, term func(Selection) float64) float64 {
	parts := make([]float64, 0, len(sel))
	for _, s := range sel {
		parts = append(parts, term(s)*s.count())
	}
	sort.Float64s(parts)
	total := 0.0
	for _, p := range parts {
		total += p
	}
	return total
}

func SumK(sel []Selection) float64 {
	return sum(sel, func(s Selection) float64 { return s.Fitting.K })
}

func SumLeq(sel []Selection) float64 {
	return sum(sel, func(s Selection) float64 { return s.Fitting.EquivalentLengthFt })
}

// Outcome is the loss breakdown of a straight run plus its fittings.
// Losses are in whatever unit lossPerFt and velocityPressure were given in.
type Outcome struct {
	Method           Method  `json:"method"`
	SumK             float64 `json:"sum_k"`
	SumLeqFt         float64 `json:"sum_leq_ft"`
	StraightLengthFt float64 `json:"straight_length_ft"`
	TotalLengthFt    float64 `json:"total_length_ft"`
	RunLoss          float64 `json:"run_loss"`
	FittingLoss      float64 `json:"fitting_loss"`
	TotalLoss        float64 `json:"total_loss"`
}

// Apply picks exactly one fitting method. Equivalent length wins whenever
// ΣLeq > 0 and ΣK is then ignored; otherwise ΣK times the velocity pressure
// is used. The two are never combined.
func Apply(sel []Selection, straightLengthFt, lossPerFt, velocityPressure float64) Outcome {
	if straightLengthFt < 0 {
		straightLengthFt = 0
	}
	out := Outcome{
		Method:           MethodNone,
		SumK:             SumK(sel),
		SumLeqFt:         SumLeq(sel),
		StraightLengthFt: straightLengthFt,
		TotalLengthFt:    straightLengthFt,
		RunLoss:          straightLengthFt * lossPerFt,
	}
	switch {
	case out.SumLeqFt > 0:
		out.Method = MethodEquivalentLength
		out.TotalLengthFt = straightLengthFt + out.SumLeqFt
		out.FittingLoss = out.SumLeqFt * lossPerFt
	case out.SumK > 0:
		out.Method = MethodCoefficient
		out.FittingLoss = out.SumK * velocityPressure
	}
	out.TotalLoss = out.RunLoss + out.FittingLoss
	return out
}

// Request is the boundary form of a fitting selection. A name not found in
// the catalog is accepted as a custom fitting when K or Leq is supplied.
type Request struct {
	Category           string   `json:"category"`
	Name               string   `json:"name"`
	Quantity           int      `json:"quantity"`
	K                  *float64 `json:"k,omitempty"`
	EquivalentLengthFt *float64 `json:"equivalent_length_ft,omitempty"`
}

// Resolve matches requests against catalog fittings by name (and category
// when given), case-insensitively. Unresolvable requests become warnings.
func Resolve(reqs []Request, catalog []Profile) ([]Selection, []string) {
	var out []Selection
	var warnings []string
	for _, r := range reqs {
		p, ok := find(catalog, r.Category, r.Name)
		if !ok {
			if r.K == nil && r.EquivalentLengthFt == nil {
				warnings = append(warnings, fmt.Sprintf("fitting %q not in catalog; ignored", r.Name))
				continue
			}
			p = Profile{Category: r.Category, Name: r.Name}
		}
		if r.K != nil {
			p.K = *r.K
		}
		if r.EquivalentLengthFt != nil {
			p.EquivalentLengthFt = *r.EquivalentLengthFt
		}
		out = append(out, Selection{Fitting: p, Quantity: r.Quantity})
	}
	return out, warnings
}

func find(catalog []Profile, category, name string) (Profile, bool) {
	for _, p := range catalog {
		if !strings.EqualFold(p.Name, name) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		return p, true
	}
	return Profile{}, false
}
