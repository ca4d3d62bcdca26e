package batch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ductolator/internal/calc/pipe"
	"Ductolator/internal/catalog"
)

func TestSizePipesKeepsGoingPastFailures(t *testing.T) {
	res, err := SizePipes(PipeBatchInput{Items: []pipe.SizeInput{
		{FlowGPM: 20, Material: "copper-l"},
		{FlowGPM: 10, Method: "guess"},
		{FlowGPM: 80, Material: "pvc-sch40", Method: pipe.SizeHazenWilliams},
	}}, catalog.Builtin())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Results, 3)

	assert.Equal(t, 1, res.Results[1].Index)
	assert.NotEmpty(t, res.Results[1].Error)
	assert.Nil(t, res.Results[1].Result)

	require.NotNil(t, res.Results[2].Result)
	assert.Equal(t, pipe.SizeHazenWilliams, res.Results[2].Result.Method)
	assert.NotEmpty(t, res.Results[0].Result.NominalSize)
}

func TestSizePipesEmpty(t *testing.T) {
	_, err := SizePipes(PipeBatchInput{}, nil)
	assert.Error(t, err)
}

func TestHandlerPipe(t *testing.T) {
	h := &Handler{Catalog: catalog.NewStore(nil, nil, nil)}

	rec := httptest.NewRecorder()
	h.Pipe(rec, httptest.NewRequest(http.MethodPost, "/api/tools/pipe/batch",
		strings.NewReader(`{"items":[{"flow_gpm":25,"material":"pex"}]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = httptest.NewRecorder()
	h.Pipe(rec, httptest.NewRequest(http.MethodPost, "/api/tools/pipe/batch", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
