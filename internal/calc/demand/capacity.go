package demand

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const diameterTolerance = 1e-6

// Row is one capacity-by-diameter entry. Max is DFU for sanitary and vent
// tables and gpm for storm leaders. Slope is zero when the table has none.
type Row struct {
	DiameterIn   float64 `json:"diameterIn"`
	SlopeFtPerFt float64 `json:"slopeFtPerFt,omitempty"`
	Max          float64 `json:"max"`
}

// CapacityTable rows are ordered by ascending diameter.
type CapacityTable struct {
	Key  string `json:"key"`
	Rows []Row  `json:"rows"`
}

// Sizing is the outcome of a capacity lookup.
type Sizing struct {
	Key          string  `json:"key"`
	Demand       float64 `json:"demand"`
	DiameterIn   float64 `json:"diameter_in"`
	Capacity     float64 `json:"capacity"`
	SlopeFtPerFt float64 `json:"slope_ft_per_ft,omitempty"`
	Utilization  float64 `json:"utilization"`
}

func (t CapacityTable) Validate() error {
	if t.Key == "" {
		return errors.New("table key is empty")
	}
	if len(t.Rows) == 0 {
		return fmt.Errorf("table %q has no rows", t.Key)
	}
	for i, r := range t.Rows {
		if r.DiameterIn <= 0 || r.Max < 0 || r.SlopeFtPerFt < 0 {
			return fmt.Errorf("table %q row %d has invalid values", t.Key, i)
		}
	}
	return nil
}

// sorted returns the rows ordered by diameter then slope, without touching t.
func (t CapacityTable) sorted() []Row {
	rows := append([]Row(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DiameterIn != rows[j].DiameterIn {
			return rows[i].DiameterIn < rows[j].DiameterIn
		}
		return rows[i].SlopeFtPerFt < rows[j].SlopeFtPerFt
	})
	return rows
}

// Smallest returns the smallest row whose capacity meets or exceeds demand.
// A demand beyond every row clamps to the largest row with a warning.
func (t CapacityTable) Smallest(demand float64) (Row, string) {
	rows := t.sorted()
	if len(rows) == 0 {
		return Row{}, fmt.Sprintf("table %q has no rows", t.Key)
	}
	for _, r := range rows {
		if r.Max >= demand {
			return r, ""
		}
	}
	last := rows[len(rows)-1]
	return last, fmt.Sprintf("demand %g exceeds table %q maximum %g; clamped to %g in", demand, t.Key, last.Max, last.DiameterIn)
}

// Allowable returns the largest row whose diameter does not exceed diameterIn.
// A diameter outside the tabulated range clamps to the boundary row with a
// warning.
func (t CapacityTable) Allowable(diameterIn float64) (Row, string) {
	rows := t.sorted()
	if len(rows) == 0 {
		return Row{}, fmt.Sprintf("table %q has no rows", t.Key)
	}
	if diameterIn < rows[0].DiameterIn-diameterTolerance {
		return rows[0], fmt.Sprintf("%g in is below table %q minimum %g in; clamped", diameterIn, t.Key, rows[0].DiameterIn)
	}
	if last := rows[len(rows)-1]; diameterIn > last.DiameterIn+diameterTolerance {
		return last, fmt.Sprintf("%g in exceeds table %q maximum %g in; clamped", diameterIn, t.Key, last.DiameterIn)
	}
	best := rows[0]
	for _, r := range rows {
		if r.DiameterIn <= diameterIn+diameterTolerance {
			best = r
		}
	}
	return best, ""
}

// ForSlope narrows a sloped table to one slope. Rows at exactly the requested
// slope are used when present; otherwise the steepest tabulated slope not
// exceeding the request, otherwise the flattest tabulated slope.
func (t CapacityTable) ForSlope(slope float64) (CapacityTable, string) {
	slopes := map[float64]bool{}
	for _, r := range t.Rows {
		slopes[r.SlopeFtPerFt] = true
	}
	if len(slopes) <= 1 {
		return t, ""
	}
	if slope <= 0 {
		chosen := minKey(slopes)
		return t.withSlope(chosen), fmt.Sprintf("no slope given for table %q; using %g ft/ft", t.Key, chosen)
	}
	for s := range slopes {
		if math.Abs(s-slope) < 1e-9 {
			return t.withSlope(s), ""
		}
	}
	chosen, found := 0.0, false
	for s := range slopes {
		if s <= slope && (!found || s > chosen) {
			chosen, found = s, true
		}
	}
	if !found {
		chosen = minKey(slopes)
	}
	return t.withSlope(chosen), fmt.Sprintf("slope %g not tabulated in %q; using %g ft/ft", slope, t.Key, chosen)
}

func (t CapacityTable) withSlope(s float64) CapacityTable {
	out := CapacityTable{Key: t.Key}
	for _, r := range t.Rows {
		if r.SlopeFtPerFt == s {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

func minKey(m map[float64]bool) float64 {
	first := true
	lo := 0.0
	for k := range m {
		if first || k < lo {
			lo, first = k, false
		}
	}
	return lo
}

func sizing(key string, demand float64, r Row) Sizing {
	s := Sizing{Key: key, Demand: demand, DiameterIn: r.DiameterIn, Capacity: r.Max, SlopeFtPerFt: r.SlopeFtPerFt}
	if r.Max > 0 {
		s.Utilization = demand / r.Max
	}
	return s
}

// withDemand records the demand checked against an allowable capacity.
func (s Sizing) withDemand(demand float64) Sizing {
	s.Demand = demand
	s.Utilization = 0
	if s.Capacity > 0 {
		s.Utilization = demand / s.Capacity
	}
	return s
}
