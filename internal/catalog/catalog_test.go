package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ductolator/internal/calc/demand"
	"Ductolator/internal/codes"
	"Ductolator/internal/observability"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock, *observability.Metrics) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	m := observability.NewMetricsForTesting()
	return NewStore(clock, nil, m), clock, m
}

func TestBuiltinSnapshot(t *testing.T) {
	s := Builtin()
	m, ok := s.Material("PVC-SCH40")
	require.True(t, ok)
	id, ok := m.InsideDiameter("4")
	require.True(t, ok)
	assert.Equal(t, 4.026, id)

	n, ok := m.Smallest(2.1)
	require.True(t, ok)
	assert.Equal(t, "2-1/2", n.Nominal)

	_, ok = m.Smallest(20)
	assert.False(t, ok)

	assert.Empty(t, s.Profiles.Validate(s.tableHas))
	assert.NotEmpty(t, s.FittingsIn("duct"))
	assert.Len(t, s.FittingsIn(""), len(s.Fittings))

	reg, p, ws := s.TablesFor("")
	assert.Empty(t, ws)
	assert.Equal(t, "ipc-2021", p.ID)
	gpm, ws := reg.FixtureDemandGpm(p.FixtureDemandKey, 10)
	assert.Empty(t, ws)
	assert.Equal(t, 14.6, gpm)
}

func TestHazenWilliamsCFallback(t *testing.T) {
	assert.Equal(t, 130.0, Material{CNew: 150, CAged: 130}.HazenWilliamsC(true))
	assert.Equal(t, 150.0, Material{CNew: 150}.HazenWilliamsC(true))
	assert.Equal(t, 100.0, Material{CAged: 100}.HazenWilliamsC(false))
}

func TestReloadMergesJSONAndTables(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "materials.json", `[
		{"key":"hdpe","displayName":"HDPE DR11","cNew":150,"cAged":140,"roughnessFt":0.000005,
		 "sizes":[{"nominal":"2","insideDiameterIn":1.917}]},
		{"key":"bad","roughnessFt":-1},
		"not an object"
	]`)
	writeFile(t, dir, "fittings.json", `[{"category":"pipe","name":"Strainer","k":1.2,"equivalentLengthFt":0}]`)
	writeFile(t, dir, TablesFile, `{
		"stormLeaderTables":[{"key":"local-storm","rows":[{"diameterIn":3,"maxGpm":80},{"diameterIn":4,"maxGpm":170}]}],
		"sanitaryDfuTables":[{"key":"broken","rows":[]}],
		"codeProfiles":[{"id":"local","baseFamily":"IPC","sanitaryDfuKey":"ipc-710.1","ventSizingKey":"ipc-906.1",
			"stormSizingKey":"local-storm","gasSizingKey":"ifgc-402.4-low","fixtureDemandKey":"missing-curve"}]
	}`)

	store, clock, metrics := newTestStore(t)
	before := len(store.Current().Materials)
	clock.Advance(time.Hour)

	rep := store.Reload(dir)
	require.True(t, rep.Applied, rep.Errors)
	assert.Empty(t, rep.Errors)
	assert.Equal(t, 3, rep.Skipped)

	snap := store.Current()
	assert.Equal(t, before+1, len(snap.Materials))
	assert.Equal(t, dir, snap.Source)
	assert.Equal(t, clock.Now(), snap.LoadedAt)
	_, ok := snap.Material("hdpe")
	assert.True(t, ok)
	assert.True(t, snap.Tables.Has(demand.KindStorm, "local-storm"))
	assert.False(t, snap.Tables.Has(demand.KindSanitaryDfu, "broken"))

	p, ok := snap.Profiles.Get("local")
	require.True(t, ok)
	assert.Equal(t, "local-storm", p.StormSizingKey)

	var missingCurve bool
	for _, w := range rep.Warnings {
		if containsAll(w, "local", "missing-curve") {
			missingCurve = true
		}
	}
	assert.True(t, missingCurve, "expected a warning for the unregistered curve key")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CatalogRecordsSkipped))
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func TestReloadCSVAndTemplates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "materials.template.csv", "Key,DisplayName,CNew,CAged,RoughnessFt,WaveSpeedFps,Nominal,InsideDiameterIn\n"+
		"ductile,Ductile Iron,140,120,0.0008,4200,4,4.1\n"+
		"ductile,,,,,,6,6.1\n"+
		"ductile,,,,,,8,abc\n")
	writeFile(t, dir, "fittings.csv", "category,name,k,equivalentLengthFt\n"+
		"pipe,Reducer,0.3,\n"+
		"pipe,Bad,x,\n")

	store, _, _ := newTestStore(t)
	rep := store.Reload(dir)
	require.True(t, rep.Applied)
	assert.Equal(t, 2, rep.Skipped)
	require.NotEmpty(t, rep.Warnings)
	assert.Contains(t, rep.Warnings[0], "materials.template.csv")

	m, ok := store.Current().Material("ductile")
	require.True(t, ok)
	assert.Equal(t, 140.0, m.CNew)
	require.Len(t, m.Sizes, 2)
	assert.Equal(t, 6.1, m.Sizes[1].InsideIn)
}

func TestReloadMissingMandatoryKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "materials.json", `[{"key":"only","roughnessFt":0.0001}]`)

	store, _, metrics := newTestStore(t)
	before := store.Current()

	rep := store.Reload(dir)
	assert.False(t, rep.Applied)
	assert.NotEmpty(t, rep.Errors)
	assert.Same(t, before, store.Current())
	assert.Equal(t, len(before.Materials), len(store.Current().Materials))
	assert.Equal(t, len(before.Fittings), len(store.Current().Fittings))
	assert.Equal(t, rep.Errors, store.LastReport().Errors)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues("aborted")))

	rep = store.Reload(filepath.Join(dir, "nope"))
	assert.False(t, rep.Applied)
	assert.Same(t, before, store.Current())
}

func TestReloadMalformedMandatoryAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "materials.json", `{"not":"an array"}`)
	writeFile(t, dir, "fittings.json", `[]`)

	store, _, _ := newTestStore(t)
	before := store.Current()
	rep := store.Reload(dir)
	assert.False(t, rep.Applied)
	assert.Same(t, before, store.Current())
}

func TestReloadWithoutUsableRecordsAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "materials.json", `[{"key":"bad","roughnessFt":-1},{"roughnessFt":0.0001}]`)
	writeFile(t, dir, "fittings.json", `[]`)

	store, _, metrics := newTestStore(t)
	before := store.Current()
	rep := store.Reload(dir)
	assert.False(t, rep.Applied)
	require.Len(t, rep.Errors, 2)
	assert.Contains(t, rep.Errors[0], "no usable material records")
	assert.Contains(t, rep.Errors[1], "no usable fitting records")
	assert.Same(t, before, store.Current())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues("aborted")))
}

func TestHandlerGetAndReload(t *testing.T) {
	store, _, _ := newTestStore(t)
	h := &Handler{Store: store}

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Source   string              `json:"source"`
		Profiles []codes.Profile     `json:"profiles"`
		Tables   map[string][]string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, SourceBuiltin, view.Source)
	assert.Len(t, view.Profiles, 2)
	assert.Contains(t, view.Tables["gas"], codes.KeyLowPressureGas)

	rec = httptest.NewRecorder()
	h.Reload(rec, httptest.NewRequest(http.MethodPost, "/api/catalog/reload", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	h.Dir = t.TempDir()
	rec = httptest.NewRecorder()
	h.Reload(rec, httptest.NewRequest(http.MethodPost, "/api/catalog/reload", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
