// Package codes defines plumbing code profiles and the table keys they bind.
package codes

import (
	"fmt"
	"sort"
	"strings"
)

type Family string

const (
	FamilyIPC  Family = "IPC"
	FamilyUPC  Family = "UPC"
	FamilyNSPC Family = "NSPC"
)

// Table names the kind of table a profile key points at.
type Table string

const (
	TableFixtureDemand Table = "fixture-demand"
	TableSanitaryDfu   Table = "sanitary-dfu"
	TableVent          Table = "vent"
	TableStorm         Table = "storm"
	TableGas           Table = "gas"
)

// Profile is one code region's limits and table bindings.
type Profile struct {
	ID                         string  `json:"id"`
	DisplayName                string  `json:"displayName"`
	BaseFamily                 Family  `json:"baseFamily"`
	MaxVelocityHotFps          float64 `json:"maxVelocityHotFps"`
	MaxVelocityColdFps         float64 `json:"maxVelocityColdFps"`
	DefaultFrictionPsiPer100Ft float64 `json:"defaultFrictionPsiPer100Ft"`
	SanitaryDfuKey             string  `json:"sanitaryDfuKey"`
	VentSizingKey              string  `json:"ventSizingKey"`
	StormSizingKey             string  `json:"stormSizingKey"`
	GasSizingKey               string  `json:"gasSizingKey"`
	FixtureDemandKey           string  `json:"fixtureDemandKey"`
}

// familyDefaults returns hot/cold velocity limits (fps) and friction target (psi/100 ft).
func familyDefaults(f Family) (hot, cold, friction float64) {
	switch f {
	case FamilyUPC:
		return 5, 8, 4
	case FamilyNSPC:
		return 5, 8, 5
	default:
		return 5, 8, 5
	}
}

// withDefaults fills unset limits from the base family.
func (p Profile) withDefaults() Profile {
	hot, cold, friction := familyDefaults(p.BaseFamily)
	if p.MaxVelocityHotFps <= 0 {
		p.MaxVelocityHotFps = hot
	}
	if p.MaxVelocityColdFps <= 0 {
		p.MaxVelocityColdFps = cold
	}
	if p.DefaultFrictionPsiPer100Ft <= 0 {
		p.DefaultFrictionPsiPer100Ft = friction
	}
	if p.DisplayName == "" {
		p.DisplayName = p.ID
	}
	return p
}

// MaxVelocityFps returns the hot or cold limit.
func (p Profile) MaxVelocityFps(hot bool) float64 {
	if hot {
		return p.MaxVelocityHotFps
	}
	return p.MaxVelocityColdFps
}

// Bindings lists the profile's (table, key) pairs in a fixed order.
func (p Profile) Bindings() [][2]string {
	return [][2]string{
		{string(TableFixtureDemand), p.FixtureDemandKey},
		{string(TableSanitaryDfu), p.SanitaryDfuKey},
		{string(TableVent), p.VentSizingKey},
		{string(TableStorm), p.StormSizingKey},
		{string(TableGas), p.GasSizingKey},
	}
}

// Registry is an immutable set of profiles keyed by case-insensitive id.
type Registry struct {
	profiles  map[string]Profile
	order     []string
	defaultID string
}

// NewRegistry builds a registry; the first profile is the default. Later
// profiles replace earlier ones with the same id.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: map[string]Profile{}}
	for _, p := range profiles {
		if p.ID == "" {
			continue
		}
		id := strings.ToLower(p.ID)
		if _, dup := r.profiles[id]; !dup {
			r.order = append(r.order, id)
		}
		if r.defaultID == "" {
			r.defaultID = id
		}
		r.profiles[id] = p.withDefaults()
	}
	return r
}

// Get returns the profile for id. An empty id selects the default profile.
func (r *Registry) Get(id string) (Profile, bool) {
	if id == "" {
		id = r.defaultID
	}
	p, ok := r.profiles[strings.ToLower(id)]
	return p, ok
}

// Resolve returns the requested profile, or the default with a warning.
func (r *Registry) Resolve(id string) (Profile, []string) {
	if p, ok := r.Get(id); ok {
		return p, nil
	}
	p := r.profiles[r.defaultID]
	return p, []string{fmt.Sprintf("code profile %q not found; using %q", id, p.ID)}
}

func (r *Registry) All() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Validate checks every profile binding against has and returns one warning
// per unresolved key. It never fails.
func (r *Registry) Validate(has func(table, key string) bool) []string {
	var warnings []string
	for _, p := range r.All() {
		for _, b := range p.Bindings() {
			if b[1] == "" {
				warnings = append(warnings, fmt.Sprintf("profile %q has no %s key", p.ID, b[0]))
				continue
			}
			if !has(b[0], b[1]) {
				warnings = append(warnings, fmt.Sprintf("profile %q %s key %q is not registered", p.ID, b[0], b[1]))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}
