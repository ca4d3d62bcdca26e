package duct

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ductolator/internal/calc/fittings"
	"Ductolator/internal/calc/friction"
	"Ductolator/internal/calc/props"
	"Ductolator/internal/catalog"
)

func ptr(v float64) *float64 { return &v }

func TestRoundDuctFromVelocity(t *testing.T) {
	res, err := Calculate(Input{DiameterIn: 18, VelocityFPM: 1200}, catalog.Builtin())
	require.NoError(t, err)
	assert.Equal(t, ModeRound, res.Mode)
	assert.InEpsilon(t, 2120.6, res.FlowCFM, 0.01)
	assert.Greater(t, res.FrictionInWCPer100Ft, 0.0)
	assert.Greater(t, res.Reynolds, 100000.0)
	assert.InDelta(t, math.Pow(1200/4005.0, 2), res.VelocityPressureInWC, 0.003)
	assert.Equal(t, DefaultLengthFt, res.Losses.StraightLengthFt)
	assert.Equal(t, "diameter_in", res.Fields[0].Name)
	assert.Equal(t, "total_loss_in_wc", res.Fields[len(res.Fields)-1].Name)
}

func TestVelocityWinsOverFlow(t *testing.T) {
	res, err := Calculate(Input{DiameterIn: 18, VelocityFPM: 1200, FlowCFM: 5000}, nil)
	require.NoError(t, err)
	assert.InEpsilon(t, 2120.6, res.FlowCFM, 0.01)

	var noted bool
	for _, l := range res.Trace {
		if l.Label == "Flow" && l.Section == "Input" {
			noted = true
		}
	}
	assert.True(t, noted)
}

func TestRoundDuctFromFriction(t *testing.T) {
	byFlow, err := Calculate(Input{DiameterIn: 14, FlowCFM: 1200}, nil)
	require.NoError(t, err)

	byFriction, err := Calculate(Input{DiameterIn: 14, FrictionInWCPer100Ft: byFlow.FrictionInWCPer100Ft}, nil)
	require.NoError(t, err)
	assert.InEpsilon(t, 1200, byFriction.FlowCFM, 0.01)
}

func TestRectangularUsesEquivalentDiameter(t *testing.T) {
	rect, err := Calculate(Input{WidthIn: 24, HeightIn: 12, VelocityFPM: 1000}, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeRectangular, rect.Mode)
	assert.InDelta(t, 2000, rect.FlowCFM, 1e-9)
	assert.InDelta(t, 18.3, rect.EquivalentDiameterIn, 0.1)
	assert.InDelta(t, 16, rect.HydraulicDiameterIn, 1e-9)

	round, err := Calculate(Input{DiameterIn: rect.EquivalentDiameterIn, FlowCFM: 2000}, nil)
	require.NoError(t, err)
	assert.InEpsilon(t, round.FrictionInWCPer100Ft, rect.FrictionInWCPer100Ft, 1e-9)

	// Velocity pressure follows the rectangular velocity, not the De velocity.
	assert.Less(t, rect.VelocityPressureInWC, round.VelocityPressureInWC)
}

func TestInverseSolveRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		flow, friction float64
	}{
		{2000, 0.08},
		{400, 0.1},
		{15000, 0.05},
	} {
		solved, err := Calculate(Input{FlowCFM: tc.flow, FrictionInWCPer100Ft: tc.friction}, nil)
		require.NoError(t, err)
		assert.Equal(t, ModeSolveRound, solved.Mode)

		check, err := Calculate(Input{DiameterIn: solved.DiameterIn, FlowCFM: tc.flow}, nil)
		require.NoError(t, err)
		assert.InEpsilon(t, tc.friction, check.FrictionInWCPer100Ft, 0.01)
	}
}

func TestRectangularReynoldsUsesHydraulicDiameter(t *testing.T) {
	rect, err := Calculate(Input{WidthIn: 40, HeightIn: 6, VelocityFPM: 1000}, nil)
	require.NoError(t, err)

	want := friction.Reynolds(1000.0/60, rect.HydraulicDiameterIn/12, rect.Air.KinematicViscosity)
	assert.InEpsilon(t, want, rect.Reynolds, 1e-9)
	assert.InDelta(t, 88800, rect.Reynolds, 1500)

	// Friction still follows the equivalent round duct.
	round, err := Calculate(Input{DiameterIn: rect.EquivalentDiameterIn, FlowCFM: rect.FlowCFM}, nil)
	require.NoError(t, err)
	assert.InEpsilon(t, round.FrictionInWCPer100Ft, rect.FrictionInWCPer100Ft, 1e-9)
	assert.Greater(t, round.Reynolds, rect.Reynolds)
}

func TestUnreachableFrictionTargetWarns(t *testing.T) {
	wide, err := Calculate(Input{FlowCFM: 100000, FrictionInWCPer100Ft: 0.0001}, nil)
	require.NoError(t, err)
	assert.Equal(t, maxDiameterIn, wide.DiameterIn)
	require.Len(t, wide.Warnings, 1)
	assert.Contains(t, wide.Warnings[0], "unreachable")
	assert.Contains(t, wide.Warnings[0], "diameter clamped")

	fast, err := Calculate(Input{DiameterIn: 6, FrictionInWCPer100Ft: 500}, nil)
	require.NoError(t, err)
	assert.Equal(t, maxVelocity, fast.VelocityFPM)
	require.Len(t, fast.Warnings, 1)
	assert.Contains(t, fast.Warnings[0], "velocity clamped")

	ok, err := Calculate(Input{FlowCFM: 2000, FrictionInWCPer100Ft: 0.08}, nil)
	require.NoError(t, err)
	assert.Empty(t, ok.Warnings)
}

func TestInsufficientInputs(t *testing.T) {
	for _, in := range []Input{
		{},
		{FlowCFM: 1000},
		{FrictionInWCPer100Ft: 0.1},
		{DiameterIn: 12},
		{WidthIn: 12, VelocityFPM: 800},
	} {
		_, err := Calculate(in, nil)
		assert.ErrorIs(t, err, ErrInsufficientInputs)
	}
}

func TestOutOfRangeAirFails(t *testing.T) {
	_, err := Calculate(Input{DiameterIn: 12, VelocityFPM: 800, TemperatureF: ptr(900)}, nil)
	var perr *props.PropertyResolutionError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "temperature_f", perr.Field)
}

func TestEquivalentLengthOverridesK(t *testing.T) {
	in := Input{
		DiameterIn:  12,
		VelocityFPM: 1000,
		LengthFt:    50,
		Fittings: []fittings.Request{
			{Name: "Custom elbow", Quantity: 2, K: ptr(0.5), EquivalentLengthFt: ptr(10)},
		},
	}
	res, err := Calculate(in, nil)
	require.NoError(t, err)
	assert.Equal(t, fittings.MethodEquivalentLength, res.Losses.Method)
	assert.InDelta(t, 70, res.Losses.TotalLengthFt, 1e-9)
	assert.InDelta(t, res.FrictionInWCPer100Ft/100*70, res.TotalPressureInWC, 1e-12)
}

func TestCoefficientMethodFromCatalog(t *testing.T) {
	in := Input{
		DiameterIn:  12,
		VelocityFPM: 1000,
		LengthFt:    50,
		Fittings:    []fittings.Request{{Name: "elbow 90 mitered", Quantity: 1}, {Name: "nope", Quantity: 1}},
	}
	res, err := Calculate(in, nil)
	require.NoError(t, err)
	assert.Equal(t, fittings.MethodCoefficient, res.Losses.Method)
	assert.InDelta(t, 1.2*res.VelocityPressureInWC, res.Losses.FittingLoss, 1e-12)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "nope")
}

func TestPresetAndMaterial(t *testing.T) {
	res, err := Calculate(Input{DiameterIn: 10, Preset: PresetResidentialSupply, Material: "flex-duct"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 700.0, res.VelocityFPM)

	galv, err := Calculate(Input{DiameterIn: 10, Preset: PresetResidentialSupply}, nil)
	require.NoError(t, err)
	assert.Greater(t, res.FrictionInWCPer100Ft, galv.FrictionInWCPer100Ft)

	res, err = Calculate(Input{DiameterIn: 10, VelocityFPM: 900, Preset: PresetLowNoise, Material: "unobtainium"}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 2)

	assert.Len(t, Presets(), 7)
}

func TestHandlerCalc(t *testing.T) {
	h := &Handler{Catalog: catalog.NewStore(nil, nil, nil)}

	body, _ := json.Marshal(Input{DiameterIn: 18, VelocityFPM: 1200})
	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/duct/calc", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InEpsilon(t, 2120.6, res.FlowCFM, 0.01)

	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/duct/calc", bytes.NewReader([]byte(`{"flow_cfm":100}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
