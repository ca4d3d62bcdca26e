package demand

import (
	"errors"
	"fmt"
)

// DefaultVentReferenceLengthFt is the developed length up to which a vent
// stack carries its full base DFU rating.
const DefaultVentReferenceLengthFt = 100.0

// VentTable carries branch capacities and stack base capacities. Stack rows
// are scaled down by developed length beyond ReferenceLengthFt.
type VentTable struct {
	Key               string  `json:"key"`
	BranchRows        []Row   `json:"branchRows,omitempty"`
	StackRows         []Row   `json:"stackRows,omitempty"`
	ReferenceLengthFt float64 `json:"referenceLengthFt,omitempty"`
}

func (v VentTable) Validate() error {
	if v.Key == "" {
		return errors.New("vent table key is empty")
	}
	if len(v.BranchRows) == 0 && len(v.StackRows) == 0 {
		return fmt.Errorf("vent table %q has no rows", v.Key)
	}
	for _, t := range []CapacityTable{v.branch(), v.stack()} {
		if len(t.Rows) == 0 {
			continue
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (v VentTable) branch() CapacityTable { return CapacityTable{Key: v.Key, Rows: v.BranchRows} }
func (v VentTable) stack() CapacityTable  { return CapacityTable{Key: v.Key, Rows: v.StackRows} }

// LengthScale is min(1, reference / developed length).
func (v VentTable) LengthScale(lengthFt float64) float64 {
	ref := v.ReferenceLengthFt
	if ref <= 0 {
		ref = DefaultVentReferenceLengthFt
	}
	if lengthFt <= ref {
		return 1
	}
	return ref / lengthFt
}

// ScaledStack returns the stack rows with capacities scaled for the length.
func (v VentTable) ScaledStack(lengthFt float64) CapacityTable {
	scale := v.LengthScale(lengthFt)
	out := CapacityTable{Key: v.Key, Rows: make([]Row, len(v.StackRows))}
	for i, r := range v.StackRows {
		r.Max *= scale
		out.Rows[i] = r
	}
	return out
}
