package duct

type Preset string

const (
	PresetResidentialSupply Preset = "residential-supply"
	PresetResidentialReturn Preset = "residential-return"
	PresetCommercialMain    Preset = "commercial-main"
	PresetCommercialBranch  Preset = "commercial-branch"
	PresetCommercialReturn  Preset = "commercial-return"
	PresetExhaust           Preset = "exhaust"
	PresetLowNoise          Preset = "low-noise"
)

// presetVelocities is the recommended design velocity in fpm per preset.
var presetVelocities = map[Preset]float64{
	PresetResidentialSupply: 700,
	PresetResidentialReturn: 500,
	PresetCommercialMain:    1500,
	PresetCommercialBranch:  1000,
	PresetCommercialReturn:  1200,
	PresetExhaust:           1500,
	PresetLowNoise:          600,
}

// VelocityFpm returns the preset's recommended velocity.
func (p Preset) VelocityFpm() (float64, bool) {
	v, ok := presetVelocities[p]
	return v, ok
}

type PresetInfo struct {
	Preset      Preset  `json:"preset"`
	VelocityFpm float64 `json:"velocity_fpm"`
}

// Presets lists every preset in a fixed order.
func Presets() []PresetInfo {
	order := []Preset{
		PresetResidentialSupply, PresetResidentialReturn, PresetCommercialMain,
		PresetCommercialBranch, PresetCommercialReturn, PresetExhaust, PresetLowNoise,
	}
	out := make([]PresetInfo, len(order))
	for i, p := range order {
		out[i] = PresetInfo{Preset: p, VelocityFpm: presetVelocities[p]}
	}
	return out
}
