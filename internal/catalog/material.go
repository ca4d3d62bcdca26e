// Package catalog builds and serves the active set of materials, fittings,
// demand tables and code profiles.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NominalSize maps a trade size to its inside diameter.
type NominalSize struct {
	Nominal  string  `json:"nominal"`
	InsideIn float64 `json:"insideDiameterIn"`
}

// Material is a pipe or duct material. Duct materials carry only roughness.
type Material struct {
	Key          string        `json:"key"`
	DisplayName  string        `json:"displayName"`
	CNew         float64       `json:"cNew"`
	CAged        float64       `json:"cAged"`
	RoughnessFt  float64       `json:"roughnessFt"`
	WaveSpeedFps float64       `json:"waveSpeedFps"`
	Sizes        []NominalSize `json:"sizes,omitempty"`
}

func (m Material) Validate() error {
	if m.Key == "" {
		return errors.New("material key is empty")
	}
	if m.RoughnessFt < 0 || m.CNew < 0 || m.CAged < 0 || m.WaveSpeedFps < 0 {
		return fmt.Errorf("material %q has negative properties", m.Key)
	}
	for _, s := range m.Sizes {
		if s.Nominal == "" || s.InsideIn <= 0 {
			return fmt.Errorf("material %q has an invalid size %q", m.Key, s.Nominal)
		}
	}
	return nil
}

// HazenWilliamsC returns the new or aged coefficient, falling back to the
// other when one is missing.
func (m Material) HazenWilliamsC(aged bool) float64 {
	if aged && m.CAged > 0 {
		return m.CAged
	}
	if m.CNew > 0 {
		return m.CNew
	}
	return m.CAged
}

// InsideDiameter returns the inside diameter of a nominal size.
func (m Material) InsideDiameter(nominal string) (float64, bool) {
	n := strings.TrimSpace(nominal)
	for _, s := range m.Sizes {
		if strings.EqualFold(s.Nominal, n) {
			return s.InsideIn, true
		}
	}
	return 0, false
}

// Smallest returns the smallest size whose inside diameter meets requiredIn.
func (m Material) Smallest(requiredIn float64) (NominalSize, bool) {
	sizes := append([]NominalSize(nil), m.Sizes...)
	sort.SliceStable(sizes, func(i, j int) bool { return sizes[i].InsideIn < sizes[j].InsideIn })
	for _, s := range sizes {
		if s.InsideIn >= requiredIn {
			return s, true
		}
	}
	return NominalSize{}, false
}
