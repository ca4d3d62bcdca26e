package friction

import "math"

// RoundAreaFt2 returns the cross-section area in ft² for a diameter in inches.
func RoundAreaFt2(diameterIn float64) float64 {
	d := diameterIn / 12
	return math.Pi * d * d / 4
}

// RectAreaFt2 returns the cross-section area in ft² for sides in inches.
func RectAreaFt2(widthIn, heightIn float64) float64 {
	return widthIn * heightIn / 144
}

// RectHydraulicDiameterIn is 4A/P for a rectangle.
func RectHydraulicDiameterIn(widthIn, heightIn float64) float64 {
	if widthIn+heightIn <= 0 {
		return 0
	}
	return 2 * widthIn * heightIn / (widthIn + heightIn)
}

// EquivalentRoundIn is the Huebscher equivalent diameter: the round duct with
// equal friction loss and flow rate as the rectangle.
func EquivalentRoundIn(widthIn, heightIn float64) float64 {
	if widthIn <= 0 || heightIn <= 0 {
		return 0
	}
	return 1.30 * math.Pow(widthIn*heightIn, 0.625) / math.Pow(widthIn+heightIn, 0.25)
}

// PipeVelocityFps returns velocity for a flow in gpm through an inside diameter in inches.
func PipeVelocityFps(flowGpm, insideDiameterIn float64) float64 {
	if insideDiameterIn <= 0 {
		return 0
	}
	cfs := flowGpm * GallonFt3 / 60
	return cfs / RoundAreaFt2(insideDiameterIn)
}

const (
	GallonFt3  = 0.133680556 // ft³ per US gallon
	PsfPerInWC = 5.2023
	PsfPerPsi  = 144.0
)
