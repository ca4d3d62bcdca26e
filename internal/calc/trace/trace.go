// Package trace records the audit lines and stable output fields of a calculation.
package trace

import "fmt"

// Line is one (section, label, value) entry of a calculation trace.
type Line struct {
	Section string `json:"section"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}

// Field is a named numeric output. Calculation results expose their fields
// in a fixed order per calculation type.
type Field struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type Trace []Line

// Add appends a numeric line formatted with 4 significant digits and its unit.
func (t *Trace) Add(section, label string, v float64, unit string) {
	s := fmt.Sprintf("%.4g", v)
	if unit != "" {
		s += " " + unit
	}
	*t = append(*t, Line{Section: section, Label: label, Value: s})
}

// Note appends a free-text line.
func (t *Trace) Note(section, label, text string) {
	*t = append(*t, Line{Section: section, Label: label, Value: text})
}
