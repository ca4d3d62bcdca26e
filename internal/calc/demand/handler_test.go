package demand

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Ductolator/internal/codes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	reg *Registry
}

func (f fakeResolver) TablesFor(id string) (*Registry, codes.Profile, []string) {
	p := codes.Profile{
		ID:               "test",
		SanitaryDfuKey:   "drain",
		VentSizingKey:    "vent",
		StormSizingKey:   "storm",
		GasSizingKey:     "gas-low",
		FixtureDemandKey: "hunter",
	}
	if id != "" && id != "test" {
		return f.reg, p, []string{"code profile " + id + " not found"}
	}
	return f.reg, p, nil
}

func (f fakeResolver) NominalFor(material string, requiredIn float64) (string, float64, bool) {
	if material != "steel" {
		return "", 0, false
	}
	return "1", 1.049, requiredIn <= 1.049
}

func post(t *testing.T, fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func TestFixturesHandler(t *testing.T) {
	h := &Handler{Resolver: fakeResolver{reg: testRegistry(t)}}
	rec := post(t, h.Fixtures, `{"rows":[{"name":"lav","default_fu":1,"quantity":5},{"name":"wc","default_fu":2.5,"override_fu":5,"quantity":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res FixturesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 10.0, res.TotalWSFU)
	assert.Equal(t, 8.0, res.DemandGPM)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Fields, 2)
	assert.Equal(t, "total_wsfu", res.Fields[0].Name)
}

func TestSanitaryHandlerUnknownProfileWarns(t *testing.T) {
	h := &Handler{Resolver: fakeResolver{reg: testRegistry(t)}}
	rec := post(t, h.Sanitary, `{"profile":"other","dfu":25,"slope_ft_per_ft":0.0208}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3.0, res.Sizing.DiameterIn)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "other")
}

func TestStormHandlerFromArea(t *testing.T) {
	h := &Handler{Resolver: fakeResolver{reg: testRegistry(t)}}
	rec := post(t, h.Storm, `{"roof_area_ft2":2000,"rainfall_in_per_hr":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 41.6, res.Sizing.Demand, 1e-9)
	assert.Equal(t, 3.0, res.Sizing.DiameterIn)
}

func TestVentHandlerAllowable(t *testing.T) {
	h := &Handler{Resolver: fakeResolver{reg: testRegistry(t)}}
	rec := post(t, h.Vent, `{"dfu":40,"developed_length_ft":200,"diameter_in":3,"stack":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 50.0, res.Sizing.Capacity, 1e-9)
	assert.InDelta(t, 0.8, res.Sizing.Utilization, 1e-9)

	rec = post(t, h.Vent, `{"dfu":6,"diameter_in":1.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res = Result{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 8.0, res.Sizing.Capacity)
	assert.Empty(t, res.Warnings)
}

func TestGasHandler(t *testing.T) {
	h := &Handler{Resolver: fakeResolver{reg: testRegistry(t)}}
	rec := post(t, h.Gas, `{"material":"steel","demand_cfh":100,"length_ft":100,"drop_in_wc":0.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res GasResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 0.811, res.RequiredIn, 0.002)
	assert.Equal(t, "1", res.Nominal)

	rec = post(t, h.Gas, `{"demand_cfh":100,"length_ft":100}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res = GasResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Zero(t, res.RequiredIn)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "drop")

	rec = post(t, h.Gas, `{"method":"missing","demand_cfh":100,"length_ft":100,"drop_in_wc":0.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Zero(t, res.RequiredIn)
	assert.NotEmpty(t, res.Warnings)
}

func TestHandlerRejectsBadJSON(t *testing.T) {
	h := &Handler{Resolver: fakeResolver{reg: testRegistry(t)}}
	rec := post(t, h.Sanitary, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
