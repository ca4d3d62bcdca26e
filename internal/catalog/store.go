package catalog

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"Ductolator/internal/calc/demand"
	"Ductolator/internal/codes"
	"Ductolator/internal/observability"
)

// Store holds the active snapshot. Readers take Current without locking;
// Reload swaps in a complete new snapshot or leaves the old one in place.
type Store struct {
	current atomic.Pointer[Snapshot]
	last    atomic.Pointer[Report]
	reload  sync.Mutex

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore starts from the built-in catalog.
func NewStore(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{clock: clock, logger: logger, metrics: metrics}
	snap := Builtin()
	snap.LoadedAt = clock.Now()
	if ws := snap.Profiles.Validate(snap.tableHas); len(ws) > 0 {
		snap.Warnings = ws
	}
	s.swap(snap)
	s.last.Store(&Report{Dir: SourceBuiltin, Applied: true, Materials: len(snap.Materials), Fittings: len(snap.Fittings)})
	return s
}

func (s *Store) swap(snap *Snapshot) {
	s.current.Store(snap)
	if s.metrics != nil {
		s.metrics.CatalogMaterials.Set(float64(len(snap.Materials)))
		s.metrics.CatalogFittings.Set(float64(len(snap.Fittings)))
	}
}

func (s *Store) Current() *Snapshot { return s.current.Load() }

// LastReport returns the report of the most recent load attempt.
func (s *Store) LastReport() Report { return *s.last.Load() }

// Reload loads dir and activates the result if the load succeeded.
func (s *Store) Reload(dir string) Report {
	s.reload.Lock()
	defer s.reload.Unlock()

	log := s.logger.With("dir", dir)
	snap, rep := Load(dir)
	for _, w := range rep.Warnings {
		log.Warn("catalog load warning", "warning", w)
	}
	if s.metrics != nil {
		s.metrics.CatalogRecordsSkipped.Add(float64(rep.Skipped))
	}
	if snap == nil {
		for _, e := range rep.Errors {
			log.Error("catalog load aborted", "error", e)
		}
		if s.metrics != nil {
			s.metrics.CatalogReloads.WithLabelValues("aborted").Inc()
		}
		s.last.Store(&rep)
		return rep
	}
	snap.LoadedAt = s.clock.Now()
	s.swap(snap)
	s.last.Store(&rep)
	if s.metrics != nil {
		s.metrics.CatalogReloads.WithLabelValues("ok").Inc()
	}
	log.Info("catalog loaded", "materials", rep.Materials, "fittings", rep.Fittings, "warnings", len(rep.Warnings))
	return rep
}

func (s *Store) TablesFor(profileID string) (*demand.Registry, codes.Profile, []string) {
	return s.Current().TablesFor(profileID)
}

func (s *Store) NominalFor(material string, requiredIn float64) (string, float64, bool) {
	return s.Current().NominalFor(material, requiredIn)
}
