package catalog

import (
	"fmt"
	"strings"
	"time"

	"Ductolator/internal/calc/demand"
	"Ductolator/internal/calc/fittings"
	"Ductolator/internal/codes"
)

const SourceBuiltin = "builtin"

// Snapshot is one immutable catalog generation. Readers must not modify it.
type Snapshot struct {
	Materials []Material
	Fittings  []fittings.Profile
	Tables    *demand.Registry
	Profiles  *codes.Registry
	Source    string
	LoadedAt  time.Time
	Warnings  []string

	index map[string]int
}

func (s *Snapshot) setMaterials(ms []Material) {
	s.Materials = ms
	s.index = make(map[string]int, len(ms))
	for i, m := range ms {
		s.index[strings.ToLower(m.Key)] = i
	}
}

// Material looks a material up by case-insensitive key.
func (s *Snapshot) Material(key string) (Material, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Material{}, false
	}
	return s.Materials[i], true
}

// FittingsIn returns the fittings of one category, or all when category is empty.
func (s *Snapshot) FittingsIn(category string) []fittings.Profile {
	if category == "" {
		return s.Fittings
	}
	var out []fittings.Profile
	for _, f := range s.Fittings {
		if strings.EqualFold(f.Category, category) {
			out = append(out, f)
		}
	}
	return out
}

// TablesFor returns the demand tables and the resolved code profile.
func (s *Snapshot) TablesFor(profileID string) (*demand.Registry, codes.Profile, []string) {
	p, ws := s.Profiles.Resolve(profileID)
	return s.Tables, p, ws
}

// NominalFor returns the smallest nominal size of material meeting requiredIn.
func (s *Snapshot) NominalFor(material string, requiredIn float64) (string, float64, bool) {
	m, ok := s.Material(material)
	if !ok {
		return "", 0, false
	}
	n, ok := m.Smallest(requiredIn)
	return n.Nominal, n.InsideIn, ok
}

// tableHas adapts the demand registry to code profile validation.
func (s *Snapshot) tableHas(table, key string) bool {
	return s.Tables.Has(demand.Kind(table), key)
}

// Summary is the JSON view of a snapshot.
type Summary struct {
	Source    string              `json:"source"`
	LoadedAt  time.Time           `json:"loadedAt"`
	Materials []Material          `json:"materials"`
	Fittings  []fittings.Profile  `json:"fittings"`
	Profiles  []codes.Profile     `json:"profiles"`
	Tables    map[string][]string `json:"tables"`
	Warnings  []string            `json:"warnings"`
}

func (s *Snapshot) Summary() Summary {
	tables := map[string][]string{}
	for _, k := range []demand.Kind{demand.KindFixtureDemand, demand.KindSanitaryDfu, demand.KindVent, demand.KindStorm, demand.KindGas} {
		tables[string(k)] = s.Tables.Keys(k)
	}
	return Summary{
		Source:    s.Source,
		LoadedAt:  s.LoadedAt,
		Materials: s.Materials,
		Fittings:  s.Fittings,
		Profiles:  s.Profiles.All(),
		Tables:    tables,
		Warnings:  s.Warnings,
	}
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("catalog(%s: %d materials, %d fittings, %d profiles)", s.Source, len(s.Materials), len(s.Fittings), s.Profiles.Len())
}
