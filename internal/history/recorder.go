// Package history stores each successful calculation request with its result.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"Ductolator/internal/observability"
	"Ductolator/internal/repo"
)

const (
	maxBodyBytes = 1 << 20
	defaultLimit = 50
	maxLimit     = 500
	writeTimeout = 2 * time.Second
)

// Recorder wraps calculation handlers. With a nil Repo it passes requests
// through untouched and the list endpoint reports history as disabled.
type Recorder struct {
	Repo    repo.HistoryRepository
	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

func New(r repo.HistoryRepository, clock clockwork.Clock, logger *slog.Logger, m *observability.Metrics) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{Repo: r, Clock: clock, Logger: logger, Metrics: m}
}

func (h *Recorder) Enabled() bool {
	return h != nil && h.Repo != nil
}

type capture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *capture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *capture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Record stores the request body, the JSON response and its warnings for
// every 200 response of next. A storage failure is logged and never reaches
// the caller.
func (h *Recorder) Record(kind string, next http.HandlerFunc) http.HandlerFunc {
	if !h.Enabled() {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var input []byte
		if r.Body != nil && isJSON(r.Header.Get("Content-Type")) {
			var err error
			input, err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				http.Error(w, "Invalid request payload", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(input))
		}

		c := &capture{ResponseWriter: w, status: http.StatusOK}
		next(c, r)
		if c.status != http.StatusOK || !isJSON(c.Header().Get("Content-Type")) {
			return
		}

		rec := repo.Record{
			ID:        uuid.New(),
			Kind:      kind,
			Result:    bytes.TrimSpace(c.body.Bytes()),
			CreatedAt: h.Clock.Now().UTC(),
		}
		if json.Valid(input) {
			rec.Input = input
		}
		var parsed struct {
			Warnings []string `json:"warnings"`
		}
		if json.Unmarshal(rec.Result, &parsed) == nil {
			rec.Warnings = parsed.Warnings
		}
		if h.Metrics != nil && len(rec.Warnings) > 0 {
			h.Metrics.CalculationWarnings.WithLabelValues(kind).Add(float64(len(rec.Warnings)))
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), writeTimeout)
		defer cancel()
		outcome := "ok"
		if err := h.Repo.Insert(ctx, rec); err != nil {
			outcome = "error"
			h.Logger.Error("history insert failed", "kind", kind, "id", rec.ID, "error", err)
		}
		if h.Metrics != nil {
			h.Metrics.HistoryWrites.WithLabelValues(outcome).Inc()
		}
	}
}

// List serves GET /api/history?kind=&limit=.
func (h *Recorder) List(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}
	records, err := h.Repo.List(r.Context(), r.URL.Query().Get("kind"), limit)
	if err != nil {
		h.Logger.Error("history list failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []repo.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func isJSON(contentType string) bool {
	return contentType == "" || strings.HasPrefix(contentType, "application/json")
}
