package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"Ductolator/internal/auth"
	"Ductolator/internal/calc/air"
	"Ductolator/internal/calc/batch"
	"Ductolator/internal/calc/demand"
	"Ductolator/internal/calc/duct"
	"Ductolator/internal/calc/importer"
	"Ductolator/internal/calc/pipe"
	"Ductolator/internal/calc/report"
	"Ductolator/internal/catalog"
	"Ductolator/internal/config"
	"Ductolator/internal/history"
	"Ductolator/internal/logging"
	"Ductolator/internal/observability"
	"Ductolator/internal/repo"
)

func CORS(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		router.ServeHTTP(w, r)
	})
}

// Deps are the long-lived collaborators the routes share.
type Deps struct {
	Config   *config.Config
	Catalog  *catalog.Store
	History  *history.Recorder
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

func HandleList(router *mux.Router, d Deps) {
	limiter := auth.NewIPRateLimiter(rate.Limit(d.Config.RateLimitRPS), d.Config.RateLimitBurst)
	limiter.Rejected = d.Metrics.RateLimited
	guard := &auth.TokenGuard{Key: []byte(d.Config.APITokenKey), Logger: d.Logger}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware, guard.Middleware)

	// calc wraps a calculation handler with metrics and history.
	calc := func(kind string, h http.HandlerFunc) http.HandlerFunc {
		return d.Metrics.Instrument(kind, d.History.Record(kind, h))
	}

	ductH := &duct.Handler{Catalog: d.Catalog}
	pipeH := &pipe.Handler{Catalog: d.Catalog}
	batchH := &batch.Handler{Catalog: d.Catalog}
	demandH := &demand.Handler{Resolver: d.Catalog}
	importH := &importer.Handler{Resolver: d.Catalog}
	airH := &air.Handler{}
	reportH := &report.Handler{Clock: d.Clock}
	catalogH := &catalog.Handler{Store: d.Catalog, Dir: d.Config.CatalogDir}

	api.HandleFunc("/tools/duct/calc", calc("duct", ductH.Calc)).Methods("POST")
	api.HandleFunc("/tools/duct/presets", ductH.Presets).Methods("GET")
	api.HandleFunc("/tools/pipe/calc", calc("pipe", pipeH.Calc)).Methods("POST")
	api.HandleFunc("/tools/pipe/size", calc("pipe-size", pipeH.Size)).Methods("POST")
	api.HandleFunc("/tools/pipe/batch", calc("pipe-batch", batchH.Pipe)).Methods("POST")
	api.HandleFunc("/tools/demand/fixtures", calc("fixtures", demandH.Fixtures)).Methods("POST")
	api.HandleFunc("/tools/demand/fixtures/import", calc("fixtures-import", importH.Fixtures)).Methods("POST")
	api.HandleFunc("/tools/demand/sanitary", calc("sanitary", demandH.Sanitary)).Methods("POST")
	api.HandleFunc("/tools/demand/vent", calc("vent", demandH.Vent)).Methods("POST")
	api.HandleFunc("/tools/demand/storm", calc("storm", demandH.Storm)).Methods("POST")
	api.HandleFunc("/tools/demand/gas", calc("gas", demandH.Gas)).Methods("POST")
	api.HandleFunc("/tools/air/mix", calc("air-mix", airH.Mix)).Methods("POST")
	api.HandleFunc("/tools/report/pdf", reportH.PDF).Methods("POST")
	api.HandleFunc("/tools/report/xlsx", reportH.XLSX).Methods("POST")

	api.HandleFunc("/catalog", catalogH.Get).Methods("GET")
	api.HandleFunc("/catalog/reload", catalogH.Reload).Methods("POST")
	api.HandleFunc("/history", d.History.List).Methods("GET")

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
}

// openHistory connects the history store when DATABASE_URL is set.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repo.HistoryRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("history disabled: DATABASE_URL not set")
		return nil, func() {}, nil
	}
	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	r := repo.NewPostgresHistoryDB(db)
	if err := r.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return r, func() { db.Close() }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	clock := clockwork.NewRealClock()

	store := catalog.NewStore(clock, logger, metrics)
	if cfg.CatalogDir != "" {
		// An aborted load keeps the built-in catalog; the report is logged by the store.
		store.Reload(cfg.CatalogDir)
	}

	historyRepo, closeDB, err := openHistory(ctx, cfg, logger)
	if err != nil {
		logger.Error("history store", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	router := mux.NewRouter()
	HandleList(router, Deps{
		Config:   cfg,
		Catalog:  store,
		History:  history.New(historyRepo, clock, logger, metrics),
		Metrics:  metrics,
		Gatherer: reg,
		Clock:    clock,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           CORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "tls", cfg.TLS())
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
