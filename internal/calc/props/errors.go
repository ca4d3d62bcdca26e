// Package props holds the error shared by the air and fluid property models.
package props

import (
	"fmt"
	"math"
)

// PropertyResolutionError reports a physically invalid air or fluid input.
// It is the only failure that aborts a calculation request.
type PropertyResolutionError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *PropertyResolutionError) Error() string {
	return fmt.Sprintf("property resolution: %s=%g: %s", e.Field, e.Value, e.Reason)
}

// InRange returns a PropertyResolutionError when v is non-finite or outside [lo, hi].
func InRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &PropertyResolutionError{Field: field, Value: v, Reason: "not a finite number"}
	}
	if v < lo || v > hi {
		return &PropertyResolutionError{Field: field, Value: v, Reason: fmt.Sprintf("outside %g..%g", lo, hi)}
	}
	return nil
}
