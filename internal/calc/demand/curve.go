package demand

import (
	"errors"
	"fmt"
)

// Point is one (fixture units, flow) pair of a demand curve.
type Point struct {
	WSFU float64 `json:"wsfu"`
	GPM  float64 `json:"gpm"`
}

// Curve maps fixture units to probable demand flow. Points are ordered and
// non-decreasing in both fields.
type Curve struct {
	Key    string  `json:"key"`
	Points []Point `json:"points"`
}

func (c Curve) Validate() error {
	if c.Key == "" {
		return errors.New("curve key is empty")
	}
	if len(c.Points) == 0 {
		return fmt.Errorf("curve %q has no points", c.Key)
	}
	for i, p := range c.Points {
		if p.WSFU < 0 || p.GPM < 0 {
			return fmt.Errorf("curve %q point %d is negative", c.Key, i)
		}
		if i == 0 {
			continue
		}
		prev := c.Points[i-1]
		if p.WSFU < prev.WSFU || p.GPM < prev.GPM {
			return fmt.Errorf("curve %q point %d decreases", c.Key, i)
		}
	}
	return nil
}

// Lookup interpolates linearly between points. Values outside the curve clamp
// to the end point and return a boundary warning.
func (c Curve) Lookup(wsfu float64) (float64, string) {
	pts := c.Points
	if len(pts) == 0 {
		return 0, fmt.Sprintf("curve %q has no points", c.Key)
	}
	first, last := pts[0], pts[len(pts)-1]
	if wsfu < first.WSFU {
		return first.GPM, fmt.Sprintf("%g WSFU below curve %q minimum %g; clamped", wsfu, c.Key, first.WSFU)
	}
	if wsfu > last.WSFU {
		return last.GPM, fmt.Sprintf("%g WSFU above curve %q maximum %g; clamped", wsfu, c.Key, last.WSFU)
	}
	for i, p := range pts {
		if wsfu == p.WSFU {
			return p.GPM, ""
		}
		if i > 0 && wsfu < p.WSFU {
			prev := pts[i-1]
			t := (wsfu - prev.WSFU) / (p.WSFU - prev.WSFU)
			return prev.GPM + t*(p.GPM-prev.GPM), ""
		}
	}
	return last.GPM, ""
}
