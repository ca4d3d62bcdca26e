package demand

import (
	"fmt"
	"sort"
)

// Registry holds the demand and capacity tables of one catalog snapshot.
// It is built during a load and read-only afterwards.
type Registry struct {
	Curves         map[string]Curve
	SanitaryDfu    map[string]CapacityTable
	SanitaryBranch map[string]CapacityTable
	Vents          map[string]VentTable
	StormLeaders   map[string]CapacityTable
	GasMethods     map[string]GasMethod
}

func NewRegistry() *Registry {
	return &Registry{
		Curves:         map[string]Curve{},
		SanitaryDfu:    map[string]CapacityTable{},
		SanitaryBranch: map[string]CapacityTable{},
		Vents:          map[string]VentTable{},
		StormLeaders:   map[string]CapacityTable{},
		GasMethods:     map[string]GasMethod{},
	}
}

// Clone copies every table so the copy can be extended without touching r.
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	for k, v := range r.Curves {
		v.Points = append([]Point(nil), v.Points...)
		out.Curves[k] = v
	}
	for k, v := range r.SanitaryDfu {
		out.SanitaryDfu[k] = cloneTable(v)
	}
	for k, v := range r.SanitaryBranch {
		out.SanitaryBranch[k] = cloneTable(v)
	}
	for k, v := range r.Vents {
		v.BranchRows = append([]Row(nil), v.BranchRows...)
		v.StackRows = append([]Row(nil), v.StackRows...)
		out.Vents[k] = v
	}
	for k, v := range r.StormLeaders {
		out.StormLeaders[k] = cloneTable(v)
	}
	for k, v := range r.GasMethods {
		out.GasMethods[k] = v
	}
	return out
}

func cloneTable(t CapacityTable) CapacityTable {
	t.Rows = append([]Row(nil), t.Rows...)
	return t
}

func (r *Registry) AddCurve(c Curve) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.Curves[c.Key] = c
	return nil
}

func (r *Registry) AddSanitaryDfu(t CapacityTable) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.SanitaryDfu[t.Key] = t
	return nil
}

func (r *Registry) AddSanitaryBranch(t CapacityTable) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.SanitaryBranch[t.Key] = t
	return nil
}

func (r *Registry) AddVent(v VentTable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	r.Vents[v.Key] = v
	return nil
}

func (r *Registry) AddStormLeader(t CapacityTable) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.StormLeaders[t.Key] = t
	return nil
}

func (r *Registry) AddGasMethod(g GasMethod) error {
	if err := g.Validate(); err != nil {
		return err
	}
	r.GasMethods[g.Key] = g
	return nil
}

// Has reports whether key is registered for the given table kind.
func (r *Registry) Has(kind Kind, key string) bool {
	var ok bool
	switch kind {
	case KindFixtureDemand:
		_, ok = r.Curves[key]
	case KindSanitaryDfu:
		_, ok = r.SanitaryDfu[key]
		if !ok {
			_, ok = r.SanitaryBranch[key]
		}
	case KindVent:
		_, ok = r.Vents[key]
	case KindStorm:
		_, ok = r.StormLeaders[key]
	case KindGas:
		_, ok = r.GasMethods[key]
	}
	return ok
}

// Keys lists the registered keys of a kind in sorted order.
func (r *Registry) Keys(kind Kind) []string {
	var keys []string
	add := func(k string) { keys = append(keys, k) }
	switch kind {
	case KindFixtureDemand:
		for k := range r.Curves {
			add(k)
		}
	case KindSanitaryDfu:
		for k := range r.SanitaryDfu {
			add(k)
		}
		for k := range r.SanitaryBranch {
			if _, dup := r.SanitaryDfu[k]; !dup {
				add(k)
			}
		}
	case KindVent:
		for k := range r.Vents {
			add(k)
		}
	case KindStorm:
		for k := range r.StormLeaders {
			add(k)
		}
	case KindGas:
		for k := range r.GasMethods {
			add(k)
		}
	}
	sort.Strings(keys)
	return keys
}

type Kind string

const (
	KindFixtureDemand Kind = "fixture-demand"
	KindSanitaryDfu   Kind = "sanitary-dfu"
	KindVent          Kind = "vent"
	KindStorm         Kind = "storm"
	KindGas           Kind = "gas"
)

func missing(kind Kind, key string) string {
	return fmt.Sprintf("%s table %q is not registered", kind, key)
}

func appendWarning(ws []string, w string) []string {
	if w == "" {
		return ws
	}
	return append(ws, w)
}

// FixtureDemandGpm converts fixture units to probable demand.
func (r *Registry) FixtureDemandGpm(key string, wsfu float64) (float64, []string) {
	c, ok := r.Curves[key]
	if !ok {
		return 0, []string{missing(KindFixtureDemand, key)}
	}
	gpm, w := c.Lookup(wsfu)
	return gpm, appendWarning(nil, w)
}

// sanitaryTable returns the table registered under key for a sanitary
// lookup. The sloped DFU table is narrowed to slope. branchFirst prefers the
// branch table; either kind falls back to the other.
func (r *Registry) sanitaryTable(key string, slope float64, branchFirst bool) (CapacityTable, []string, bool) {
	if branchFirst {
		if t, ok := r.SanitaryBranch[key]; ok {
			return t, nil, true
		}
	}
	if sloped, ok := r.SanitaryDfu[key]; ok {
		t, w := sloped.ForSlope(slope)
		return t, appendWarning(nil, w), true
	}
	if t, ok := r.SanitaryBranch[key]; ok {
		return t, nil, true
	}
	return CapacityTable{}, []string{missing(KindSanitaryDfu, key)}, false
}

// SizeSanitary sizes a horizontal drain from the sloped DFU table, falling
// back to the branch table registered under the same key.
func (r *Registry) SizeSanitary(key string, dfu, slope float64) (Sizing, []string) {
	t, ws, ok := r.sanitaryTable(key, slope, false)
	if !ok {
		return Sizing{Key: key, Demand: dfu}, ws
	}
	row, w := t.Smallest(dfu)
	return sizing(key, dfu, row), appendWarning(ws, w)
}

// SizeSanitaryBranch sizes a fixture branch or stack from the branch table,
// falling back to the sloped table registered under the same key.
func (r *Registry) SizeSanitaryBranch(key string, dfu, slope float64) (Sizing, []string) {
	t, ws, ok := r.sanitaryTable(key, slope, true)
	if !ok {
		return Sizing{Key: key, Demand: dfu}, ws
	}
	row, w := t.Smallest(dfu)
	return sizing(key, dfu, row), appendWarning(ws, w)
}

// AllowableSanitary returns the DFU capacity of an existing horizontal drain.
func (r *Registry) AllowableSanitary(key string, diameterIn, slope float64) (Sizing, []string) {
	t, ws, ok := r.sanitaryTable(key, slope, false)
	if !ok {
		return Sizing{Key: key}, ws
	}
	row, w := t.Allowable(diameterIn)
	return sizing(key, 0, row), appendWarning(ws, w)
}

// AllowableSanitaryBranch returns the DFU capacity of an existing branch.
func (r *Registry) AllowableSanitaryBranch(key string, diameterIn, slope float64) (Sizing, []string) {
	t, ws, ok := r.sanitaryTable(key, slope, true)
	if !ok {
		return Sizing{Key: key}, ws
	}
	row, w := t.Allowable(diameterIn)
	return sizing(key, 0, row), appendWarning(ws, w)
}

func (r *Registry) SizeVentBranch(key string, dfu float64) (Sizing, []string) {
	v, ok := r.Vents[key]
	if !ok {
		return Sizing{Key: key, Demand: dfu}, []string{missing(KindVent, key)}
	}
	row, w := v.branch().Smallest(dfu)
	return sizing(key, dfu, row), appendWarning(nil, w)
}

// SizeVentStack sizes a vent stack with capacities scaled for developed length.
func (r *Registry) SizeVentStack(key string, dfu, lengthFt float64) (Sizing, []string) {
	v, ok := r.Vents[key]
	if !ok {
		return Sizing{Key: key, Demand: dfu}, []string{missing(KindVent, key)}
	}
	row, w := v.ScaledStack(lengthFt).Smallest(dfu)
	return sizing(key, dfu, row), appendWarning(nil, w)
}

func (r *Registry) AllowableVentBranch(key string, diameterIn float64) (Sizing, []string) {
	v, ok := r.Vents[key]
	if !ok {
		return Sizing{Key: key}, []string{missing(KindVent, key)}
	}
	row, w := v.branch().Allowable(diameterIn)
	return sizing(key, 0, row), appendWarning(nil, w)
}

func (r *Registry) AllowableVentStack(key string, diameterIn, lengthFt float64) (Sizing, []string) {
	v, ok := r.Vents[key]
	if !ok {
		return Sizing{Key: key}, []string{missing(KindVent, key)}
	}
	row, w := v.ScaledStack(lengthFt).Allowable(diameterIn)
	return sizing(key, 0, row), appendWarning(nil, w)
}

func (r *Registry) SizeStormLeader(key string, gpm float64) (Sizing, []string) {
	t, ok := r.StormLeaders[key]
	if !ok {
		return Sizing{Key: key, Demand: gpm}, []string{missing(KindStorm, key)}
	}
	row, w := t.Smallest(gpm)
	return sizing(key, gpm, row), appendWarning(nil, w)
}

func (r *Registry) AllowableStormLeader(key string, diameterIn float64) (Sizing, []string) {
	t, ok := r.StormLeaders[key]
	if !ok {
		return Sizing{Key: key}, []string{missing(KindStorm, key)}
	}
	row, w := t.Allowable(diameterIn)
	return sizing(key, 0, row), appendWarning(nil, w)
}

// GasMethod returns the registered method, or a zero method and a warning.
func (r *Registry) GasMethod(key string) (GasMethod, []string) {
	g, ok := r.GasMethods[key]
	if !ok {
		return GasMethod{}, []string{missing(KindGas, key)}
	}
	return g, nil
}
