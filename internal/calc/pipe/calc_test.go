package pipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ductolator/internal/calc/fittings"
	"Ductolator/internal/calc/fluid"
	"Ductolator/internal/calc/props"
	"Ductolator/internal/catalog"
)

func ptr(v float64) *float64 { return &v }

func hasWarning(ws []string, sub string) bool {
	for _, w := range ws {
		if strings.Contains(w, sub) {
			return true
		}
	}
	return false
}

func TestHazenWilliamsAndDarcyAgree(t *testing.T) {
	res, err := Calculate(Input{FlowGPM: 50, InsideDiameterIn: 4, HazenWilliamsC: 140}, catalog.Builtin())
	require.NoError(t, err)

	hw, dw := res.HazenWilliams.PsiPer100, res.DarcyWeisbach.PsiPer100
	assert.Greater(t, hw, 0.0)
	assert.Greater(t, dw, 0.0)
	assert.InDelta(t, 0.184, res.HazenWilliams.FtPer100, 0.003)
	ratio := hw / dw
	assert.True(t, ratio > 0.1 && ratio < 10, "ratio %v", ratio)
	assert.Equal(t, 140.0, res.HazenWilliamsC)
	assert.False(t, res.Laminar)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "ipc-2021", res.Profile)
}

func TestExplicitDiameterWins(t *testing.T) {
	res, err := Calculate(Input{FlowGPM: 10, Material: "copper-l", NominalSize: "1", InsideDiameterIn: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.InsideDiameterIn)
	assert.Empty(t, res.NominalSize)

	res, err = Calculate(Input{FlowGPM: 10, Material: "copper-l", NominalSize: "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.025, res.InsideDiameterIn)
	assert.Equal(t, 150.0, res.HazenWilliamsC)

	aged, err := Calculate(Input{FlowGPM: 10, Material: "copper-l", NominalSize: "1", Aged: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 130.0, aged.HazenWilliamsC)
	assert.Greater(t, aged.HazenWilliams.PsiPer100, res.HazenWilliams.PsiPer100)
}

func TestNoDiameter(t *testing.T) {
	_, err := Calculate(Input{FlowGPM: 10}, nil)
	assert.ErrorIs(t, err, ErrNoDiameter)

	_, err = Calculate(Input{FlowGPM: 10, Material: "copper-l", NominalSize: "12"}, nil)
	assert.ErrorIs(t, err, ErrNoDiameter)

	_, err = Calculate(Input{FlowGPM: 10, Material: "nope", NominalSize: "1"}, nil)
	assert.ErrorIs(t, err, ErrNoDiameter)
}

func TestVelocityAndLaminarWarnings(t *testing.T) {
	fast, err := Calculate(Input{FlowGPM: 50, InsideDiameterIn: 1}, nil)
	require.NoError(t, err)
	assert.Greater(t, fast.VelocityFps, 8.0)
	assert.True(t, hasWarning(fast.Warnings, "exceeds"))

	hot, err := Calculate(Input{FlowGPM: 15, InsideDiameterIn: 1, Hot: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, hot.MaxVelocityFps)
	assert.True(t, hasWarning(hot.Warnings, "exceeds"))

	slow, err := Calculate(Input{FlowGPM: 0.05, InsideDiameterIn: 2}, nil)
	require.NoError(t, err)
	assert.True(t, slow.Laminar)
	assert.Less(t, slow.Reynolds, 2300.0)
	assert.True(t, hasWarning(slow.Warnings, "laminar"))
}

func TestFittingCoefficientApplied(t *testing.T) {
	in := Input{
		FlowGPM:          50,
		InsideDiameterIn: 2,
		LengthFt:         40,
		Fittings:         []fittings.Request{{Name: "Custom", Quantity: 2, K: ptr(0.5), EquivalentLengthFt: ptr(0)}},
	}
	res, err := Calculate(in, nil)
	require.NoError(t, err)
	assert.Equal(t, fittings.MethodCoefficient, res.Losses.Method)
	assert.InDelta(t, 1.0, res.Losses.SumK, 1e-12)

	vhPsi := res.VelocityHeadFt * res.Fluid.DensityLbFt3 / 144
	assert.InDelta(t, vhPsi, res.Losses.FittingLoss, 1e-12)
	assert.InDelta(t, res.Losses.RunLoss+res.Losses.FittingLoss, res.TotalPsi, 1e-12)
	assert.InDelta(t, res.DarcyWeisbach.PsiPer100*0.4, res.Losses.RunLoss, 1e-12)
}

func TestGlycolReducesC(t *testing.T) {
	res, err := Calculate(Input{
		FlowGPM:          20,
		InsideDiameterIn: 2,
		HazenWilliamsC:   140,
		Fluid:            fluid.Input{Type: fluid.EthyleneGlycol, AdditiveFraction: 0.3},
	}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 127.4, res.HazenWilliamsC, 1e-9)
}

func TestInvalidFluidFails(t *testing.T) {
	_, err := Calculate(Input{FlowGPM: 20, InsideDiameterIn: 2, Fluid: fluid.Input{TemperatureF: ptr(500)}}, nil)
	var perr *props.PropertyResolutionError
	assert.True(t, errors.As(err, &perr))
}

func TestSizeRoundTrip(t *testing.T) {
	for _, method := range []SizeMethod{SizeDarcy, SizeHazenWilliams} {
		sized, err := Size(SizeInput{FlowGPM: 50, TargetPsiPer100Ft: 2, Method: method, HazenWilliamsC: 140}, nil)
		require.NoError(t, err)
		require.Greater(t, sized.RequiredInsideIn, 0.0)

		check, err := Calculate(Input{FlowGPM: 50, InsideDiameterIn: sized.RequiredInsideIn, HazenWilliamsC: 140}, nil)
		require.NoError(t, err)
		got := check.DarcyWeisbach.PsiPer100
		if method == SizeHazenWilliams {
			got = check.HazenWilliams.PsiPer100
		}
		assert.InEpsilon(t, 2.0, got, 0.01, "method %s", method)
	}
}

func TestSizePicksNominal(t *testing.T) {
	res, err := Size(SizeInput{FlowGPM: 30, Material: "pvc-sch40"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.TargetPsiPer100Ft)
	require.NotEmpty(t, res.NominalSize)
	assert.GreaterOrEqual(t, res.NominalInsideIn, res.RequiredInsideIn)
	require.NotNil(t, res.Check)
	assert.LessOrEqual(t, res.Check.VelocityFps, 8.0)

	// A steep target needs a small bore; the pick is upsized to respect velocity.
	steep, err := Size(SizeInput{FlowGPM: 60, TargetPsiPer100Ft: 40, Material: "pvc-sch40"}, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, steep.Check.VelocityFps, 8.0)
	assert.Greater(t, steep.NominalInsideIn, steep.RequiredInsideIn)

	_, err = Size(SizeInput{FlowGPM: 30, Method: "guess"}, nil)
	assert.Error(t, err)
}

func TestSizeUnreachableTargetWarns(t *testing.T) {
	res, err := Size(SizeInput{FlowGPM: 20000, TargetPsiPer100Ft: 0.00001}, nil)
	require.NoError(t, err)
	assert.Equal(t, maxSolveIn, res.RequiredInsideIn)
	assert.True(t, hasWarning(res.Warnings, "unreachable"), "%v", res.Warnings)

	reachable, err := Size(SizeInput{FlowGPM: 50, TargetPsiPer100Ft: 2}, nil)
	require.NoError(t, err)
	assert.False(t, hasWarning(reachable.Warnings, "unreachable"))
}

func TestZeroFlowWarnsInsteadOfFailing(t *testing.T) {
	res, err := Calculate(Input{FlowGPM: 0, InsideDiameterIn: 2}, nil)
	require.NoError(t, err)
	assert.Zero(t, res.TotalPsi)
	assert.True(t, hasWarning(res.Warnings, "flow is not positive"))
	assert.NotEmpty(t, res.Fields)

	sized, err := Size(SizeInput{FlowGPM: -5}, nil)
	require.NoError(t, err)
	assert.Zero(t, sized.RequiredInsideIn)
	assert.Nil(t, sized.Check)
	assert.True(t, hasWarning(sized.Warnings, "flow is not positive"))
}

func TestHandlers(t *testing.T) {
	h := &Handler{Catalog: catalog.NewStore(nil, nil, nil)}

	body, _ := json.Marshal(Input{FlowGPM: 50, InsideDiameterIn: 4, HazenWilliamsC: 140})
	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/pipe/calc", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Greater(t, res.DarcyWeisbach.PsiPer100, 0.0)

	body, _ = json.Marshal(SizeInput{FlowGPM: 50, Material: "copper-l"})
	rec = httptest.NewRecorder()
	h.Size(rec, httptest.NewRequest(http.MethodPost, "/api/tools/pipe/size", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/pipe/calc", strings.NewReader(`{"flow_gpm":5}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
