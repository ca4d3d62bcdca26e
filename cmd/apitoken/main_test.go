package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ductolator/internal/auth"
)

func TestRunIssuesAcceptedToken(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run("secret", "mech-team", time.Hour, clockwork.NewRealClock(), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	guard := &auth.TokenGuard{Key: []byte("secret")}
	h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(out.String()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunRejectsBadArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	clock := clockwork.NewFakeClock()
	assert.Equal(t, 2, run("secret", "", time.Hour, clock, &out, &errOut))
	assert.Equal(t, 1, run("", "mech-team", time.Hour, clock, &out, &errOut))
	assert.Empty(t, out.String())
}
