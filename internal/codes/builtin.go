package codes

// Built-in table keys shipped with the default catalog.
const (
	KeyHunterCurve     = "ipc-hunter-flush-tank"
	KeyUPCHunterCurve  = "upc-hunter-flush-tank"
	KeyIPCSanitary     = "ipc-710.1"
	KeyUPCSanitary     = "upc-703.2"
	KeyIPCVent         = "ipc-906.1"
	KeyUPCVent         = "upc-703.2-vent"
	KeyIPCStorm        = "ipc-1106.2"
	KeyUPCStorm        = "upc-1101.8"
	KeyLowPressureGas  = "ifgc-402.4-low"
	KeyHighPressureGas = "ifgc-402.4-high"
)

// Builtin returns the default profiles, IPC first.
func Builtin() []Profile {
	return []Profile{
		{
			ID:               "ipc-2021",
			DisplayName:      "International Plumbing Code 2021",
			BaseFamily:       FamilyIPC,
			SanitaryDfuKey:   KeyIPCSanitary,
			VentSizingKey:    KeyIPCVent,
			StormSizingKey:   KeyIPCStorm,
			GasSizingKey:     KeyLowPressureGas,
			FixtureDemandKey: KeyHunterCurve,
		},
		{
			ID:               "upc-2021",
			DisplayName:      "Uniform Plumbing Code 2021",
			BaseFamily:       FamilyUPC,
			SanitaryDfuKey:   KeyUPCSanitary,
			VentSizingKey:    KeyUPCVent,
			StormSizingKey:   KeyUPCStorm,
			GasSizingKey:     KeyLowPressureGas,
			FixtureDemandKey: KeyUPCHunterCurve,
		},
	}
}
