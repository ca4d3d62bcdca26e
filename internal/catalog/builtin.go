package catalog

import (
	"Ductolator/internal/calc/demand"
	"Ductolator/internal/calc/fittings"
	"Ductolator/internal/codes"
)

var sch40 = []NominalSize{
	{"1/2", 0.622}, {"3/4", 0.824}, {"1", 1.049}, {"1-1/4", 1.380}, {"1-1/2", 1.610},
	{"2", 2.067}, {"2-1/2", 2.469}, {"3", 3.068}, {"4", 4.026}, {"6", 6.065}, {"8", 7.981},
}

func builtinMaterials() []Material {
	return []Material{
		{Key: "copper-l", DisplayName: "Copper Type L", CNew: 150, CAged: 130, RoughnessFt: 5e-6, WaveSpeedFps: 4300,
			Sizes: []NominalSize{{"1/2", 0.545}, {"3/4", 0.785}, {"1", 1.025}, {"1-1/4", 1.265}, {"1-1/2", 1.505}, {"2", 1.985}, {"2-1/2", 2.465}, {"3", 2.945}, {"4", 3.905}}},
		{Key: "pvc-sch40", DisplayName: "PVC Schedule 40", CNew: 150, CAged: 140, RoughnessFt: 5e-6, WaveSpeedFps: 1400, Sizes: sch40},
		{Key: "steel-sch40", DisplayName: "Steel Schedule 40", CNew: 120, CAged: 100, RoughnessFt: 1.5e-4, WaveSpeedFps: 4200, Sizes: sch40},
		{Key: "cpvc-cts", DisplayName: "CPVC CTS SDR 11", CNew: 150, CAged: 140, RoughnessFt: 5e-6, WaveSpeedFps: 1500,
			Sizes: []NominalSize{{"1/2", 0.485}, {"3/4", 0.713}, {"1", 0.921}, {"1-1/4", 1.125}, {"1-1/2", 1.329}, {"2", 1.739}}},
		{Key: "pex", DisplayName: "PEX SDR 9", CNew: 150, CAged: 140, RoughnessFt: 7e-6, WaveSpeedFps: 1000,
			Sizes: []NominalSize{{"1/2", 0.475}, {"3/4", 0.671}, {"1", 0.862}, {"1-1/4", 1.054}, {"1-1/2", 1.244}, {"2", 1.629}}},
		{Key: "cast-iron", DisplayName: "Cast Iron No-Hub", CNew: 130, CAged: 100, RoughnessFt: 8.5e-4, WaveSpeedFps: 4000,
			Sizes: []NominalSize{{"2", 1.96}, {"3", 2.96}, {"4", 3.96}, {"5", 4.96}, {"6", 5.96}, {"8", 7.94}}},
		{Key: "galvanized-duct", DisplayName: "Galvanized Steel Duct", RoughnessFt: 5e-4},
		{Key: "spiral-duct", DisplayName: "Spiral Seam Duct", RoughnessFt: 3e-4},
		{Key: "duct-board", DisplayName: "Fibrous Glass Duct Board", RoughnessFt: 3e-3},
		{Key: "flex-duct", DisplayName: "Flexible Duct, Fully Extended", RoughnessFt: 1e-2},
	}
}

func builtinFittings() []fittings.Profile {
	return []fittings.Profile{
		{Category: "duct", Name: "Elbow 90 smooth R/D 1.5", K: 0.15},
		{Category: "duct", Name: "Elbow 90 mitered", K: 1.2},
		{Category: "duct", Name: "Elbow 45 smooth", K: 0.1},
		{Category: "duct", Name: "Tee branch", K: 0.6},
		{Category: "duct", Name: "Damper open", K: 0.2},
		{Category: "duct", Name: "Transition", K: 0.1},
		{Category: "duct", Name: "Entry bellmouth", K: 0.03},
		{Category: "pipe", Name: "Elbow 90 standard", K: 0.75},
		{Category: "pipe", Name: "Elbow 45 standard", K: 0.4},
		{Category: "pipe", Name: "Tee run", K: 0.4},
		{Category: "pipe", Name: "Tee branch", K: 1.5},
		{Category: "pipe", Name: "Gate valve open", K: 0.2},
		{Category: "pipe", Name: "Ball valve open", K: 0.05},
		{Category: "pipe", Name: "Swing check valve", K: 2.0},
		{Category: "pipe", Name: "Globe valve open", K: 10},
	}
}

// hunter is the flush-tank supply demand curve.
var hunter = []demand.Point{
	{WSFU: 1, GPM: 3.0}, {WSFU: 2, GPM: 5.0}, {WSFU: 3, GPM: 6.5}, {WSFU: 4, GPM: 8.0},
	{WSFU: 5, GPM: 9.4}, {WSFU: 6, GPM: 10.7}, {WSFU: 8, GPM: 12.8}, {WSFU: 10, GPM: 14.6},
	{WSFU: 12, GPM: 16.0}, {WSFU: 14, GPM: 17.0}, {WSFU: 16, GPM: 18.0}, {WSFU: 18, GPM: 18.8},
	{WSFU: 20, GPM: 19.6}, {WSFU: 25, GPM: 21.5}, {WSFU: 30, GPM: 23.3}, {WSFU: 35, GPM: 24.9},
	{WSFU: 40, GPM: 26.3}, {WSFU: 45, GPM: 27.7}, {WSFU: 50, GPM: 29.1}, {WSFU: 60, GPM: 32.0},
	{WSFU: 70, GPM: 35.0}, {WSFU: 80, GPM: 38.0}, {WSFU: 90, GPM: 41.0}, {WSFU: 100, GPM: 43.5},
	{WSFU: 120, GPM: 48.0}, {WSFU: 140, GPM: 52.5}, {WSFU: 160, GPM: 57.0}, {WSFU: 180, GPM: 61.0},
	{WSFU: 200, GPM: 65.0}, {WSFU: 250, GPM: 75.0}, {WSFU: 300, GPM: 85.0}, {WSFU: 400, GPM: 105.0},
	{WSFU: 500, GPM: 124.0}, {WSFU: 750, GPM: 170.0}, {WSFU: 1000, GPM: 208.0},
}

func rows(pairs ...float64) []demand.Row {
	out := make([]demand.Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, demand.Row{DiameterIn: pairs[i], Max: pairs[i+1]})
	}
	return out
}

func sloped(slope float64, pairs ...float64) []demand.Row {
	out := rows(pairs...)
	for i := range out {
		out[i].SlopeFtPerFt = slope
	}
	return out
}

// builtinTables registers the default tables. Every registration is static
// data, so a failure is a programming error.
func builtinTables() *demand.Registry {
	reg := demand.NewRegistry()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(reg.AddCurve(demand.Curve{Key: codes.KeyHunterCurve, Points: hunter}))
	must(reg.AddCurve(demand.Curve{Key: codes.KeyUPCHunterCurve, Points: hunter}))

	var drain []demand.Row
	drain = append(drain, sloped(0.0104, 3, 36, 4, 180, 5, 390, 6, 700, 8, 1600)...)
	drain = append(drain, sloped(0.0208, 1.25, 1, 1.5, 3, 2, 21, 2.5, 24, 3, 42, 4, 216, 5, 480, 6, 840, 8, 1920)...)
	drain = append(drain, sloped(0.0417, 1.25, 1, 1.5, 3, 2, 26, 2.5, 31, 3, 50, 4, 250, 5, 575, 6, 1000, 8, 2300)...)
	must(reg.AddSanitaryDfu(demand.CapacityTable{Key: codes.KeyIPCSanitary, Rows: drain}))
	must(reg.AddSanitaryBranch(demand.CapacityTable{Key: codes.KeyIPCSanitary,
		Rows: rows(1.5, 3, 2, 6, 2.5, 12, 3, 20, 4, 160, 5, 360, 6, 620, 8, 1400)}))
	must(reg.AddSanitaryBranch(demand.CapacityTable{Key: codes.KeyUPCSanitary,
		Rows: rows(1.25, 1, 1.5, 1, 2, 8, 2.5, 14, 3, 35, 4, 216, 5, 428, 6, 720, 8, 2640)}))

	must(reg.AddVent(demand.VentTable{
		Key:        codes.KeyIPCVent,
		BranchRows: rows(1.5, 8, 2, 24, 2.5, 48, 3, 84, 4, 256, 5, 600, 6, 1380),
		StackRows:  rows(1.5, 10, 2, 30, 2.5, 42, 3, 102, 4, 540, 5, 1100, 6, 1900, 8, 3600),
	}))
	must(reg.AddVent(demand.VentTable{
		Key:        codes.KeyUPCVent,
		BranchRows: rows(1.25, 1, 1.5, 8, 2, 24, 3, 84, 4, 256),
		StackRows:  rows(1.5, 8, 2, 24, 3, 84, 4, 256, 5, 600, 6, 1380),
	}))

	must(reg.AddStormLeader(demand.CapacityTable{Key: codes.KeyIPCStorm,
		Rows: rows(2, 30, 3, 92, 4, 192, 5, 360, 6, 563, 8, 1208)}))
	must(reg.AddStormLeader(demand.CapacityTable{Key: codes.KeyUPCStorm,
		Rows: rows(2, 23, 3, 67, 4, 144, 5, 261, 6, 424, 8, 913)}))

	must(reg.AddGasMethod(demand.GasMethod{Key: codes.KeyLowPressureGas, Formula: demand.LowPressure}))
	must(reg.AddGasMethod(demand.GasMethod{Key: codes.KeyHighPressureGas, Formula: demand.HighPressure}))
	return reg
}

// Builtin returns a fresh snapshot of the built-in catalog.
func Builtin() *Snapshot {
	s := &Snapshot{
		Fittings: builtinFittings(),
		Tables:   builtinTables(),
		Profiles: codes.NewRegistry(codes.Builtin()...),
		Source:   SourceBuiltin,
	}
	s.setMaterials(builtinMaterials())
	return s
}
