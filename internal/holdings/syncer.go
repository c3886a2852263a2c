// Package holdings keeps the local holdings cache in step with the holdings
// endpoint and decides when cached rows are served instead of fresh ones.
//
// A network fetch always reconciles: cached symbols absent from the new
// snapshot are deleted and every fetched row is upserted. GetHoldings prefers
// availability over freshness and answers from the cache whenever a fetch or
// store call fails and cached rows exist. RefreshHoldings has no such fallback.
package holdings

import (
	"context"
	"sync"
	"time"

	"folio/internal/connectivity"
	"folio/internal/database"
	"folio/internal/metrics"
	"folio/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Store interface {
	GetAll(ctx context.Context) ([]database.HoldingRow, error)
	Upsert(ctx context.Context, rows []database.HoldingRow) error
	Delete(ctx context.Context, symbols []string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	LastUpdated(ctx context.Context) (time.Time, bool, error)
}

type Source interface {
	FetchHoldings(ctx context.Context) ([]models.Holding, error)
}

type Option func(*Syncer)

func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithSerializedReconcile makes fetch-and-reconcile runs of one Syncer
// mutually exclusive. Without it concurrent runs may interleave and the last
// upsert of a symbol wins.
func WithSerializedReconcile() Option {
	return func(s *Syncer) { s.serialize = true }
}

type Syncer struct {
	store     Store
	source    Source
	network   connectivity.Oracle
	log       *logrus.Logger
	now       func() time.Time
	serialize bool
	mu        sync.Mutex
}

func NewSyncer(store Store, source Source, network connectivity.Oracle, log *logrus.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		store:   store,
		source:  source,
		network: network,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHoldings returns the holdings to display, sorted by symbol. While online
// every call fetches, so forceRefresh only documents the caller's intent.
func (s *Syncer) GetHoldings(ctx context.Context, forceRefresh bool) ([]models.Holding, error) {
	hs, result, err := s.getHoldings(ctx)
	if err == nil {
		metrics.SyncOutcomes.WithLabelValues("get", result).Inc()
		return hs, nil
	}
	return s.recoverFromCache(ctx, err)
}

func (s *Syncer) getHoldings(ctx context.Context) ([]models.Holding, string, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, "", err
	}
	online := s.network.Available()

	switch {
	case count == 0 && !online:
		return nil, "", ErrNoDataNoNetwork
	case !online:
		hs, err := s.loadFromCache(ctx)
		return hs, "cache", err
	default:
		// Online, an empty cache, a forced refresh and a warm cache all go to
		// the network; recoverFromCache turns a failure into cached rows.
		return s.fetchAndLoad(ctx)
	}
}

func (s *Syncer) fetchAndLoad(ctx context.Context) ([]models.Holding, string, error) {
	if err := s.reconcile(ctx); err != nil {
		return nil, "", err
	}
	rows, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, "", err
	}
	return toDomain(rows), "network", nil
}

func (s *Syncer) loadFromCache(ctx context.Context) ([]models.Holding, error) {
	rows, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoCachedData
	}
	return toDomain(rows), nil
}

// recoverFromCache substitutes cached rows for a fetch or store failure.
// Policy errors and the caller's own cancellation pass through untouched, as
// does the original error when the cache is empty or unreadable.
func (s *Syncer) recoverFromCache(ctx context.Context, cause error) ([]models.Holding, error) {
	if policyError(cause) || ctx.Err() != nil {
		metrics.SyncOutcomes.WithLabelValues("get", "error").Inc()
		return nil, cause
	}
	rows, err := s.store.GetAll(ctx)
	if err != nil {
		s.log.Warnf("read cache for fallback failed: %v", err)
	}
	if err != nil || len(rows) == 0 {
		s.log.Errorf("get holdings failed: %v", cause)
		metrics.SyncOutcomes.WithLabelValues("get", "error").Inc()
		return nil, cause
	}
	s.log.WithError(cause).WithField("rows", len(rows)).Warn("serving cached holdings after sync failure")
	metrics.SyncOutcomes.WithLabelValues("get", "fallback").Inc()
	return toDomain(rows), nil
}

// RefreshHoldings fetches and reconciles without any cache fallback.
func (s *Syncer) RefreshHoldings(ctx context.Context) error {
	if err := s.reconcile(ctx); err != nil {
		s.log.Warnf("refresh holdings failed: %v", err)
		metrics.SyncOutcomes.WithLabelValues("refresh", "error").Inc()
		return err
	}
	metrics.SyncOutcomes.WithLabelValues("refresh", "network").Inc()
	return nil
}

// ClearCache drops every cached row. Store failures are only logged.
func (s *Syncer) ClearCache(ctx context.Context) {
	if err := s.store.DeleteAll(ctx); err != nil {
		s.log.Warnf("clear holdings cache failed: %v", err)
		metrics.SyncOutcomes.WithLabelValues("clear", "error").Inc()
		return
	}
	metrics.CachedRows.Set(0)
	metrics.SyncOutcomes.WithLabelValues("clear", "cache").Inc()
}

// LastSynced reports when the cache was last written; ok is false when empty.
func (s *Syncer) LastSynced(ctx context.Context) (time.Time, bool, error) {
	return s.store.LastUpdated(ctx)
}

// reconcile replaces the cached snapshot with a freshly fetched one. Fetch
// errors are returned unchanged.
func (s *Syncer) reconcile(ctx context.Context) error {
	if !s.network.Available() {
		return ErrNoNetwork
	}
	if s.serialize {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	log := s.log.WithField("run", uuid.NewString())

	fetched, err := s.source.FetchHoldings(ctx)
	if err != nil {
		return err
	}
	rows := toRows(fetched, s.now())

	cached, err := s.store.GetAll(ctx)
	if err != nil {
		return err
	}
	stale := staleSymbols(cached, rows)
	if len(stale) > 0 {
		if err := s.store.Delete(ctx, stale); err != nil {
			return err
		}
	}
	if err := s.store.Upsert(ctx, rows); err != nil {
		return err
	}

	metrics.ReconciledRows.WithLabelValues("deleted").Add(float64(len(stale)))
	metrics.ReconciledRows.WithLabelValues("upserted").Add(float64(len(rows)))
	metrics.CachedRows.Set(float64(len(rows)))
	log.WithFields(logrus.Fields{"deleted": len(stale), "upserted": len(rows)}).Info("holdings reconciled")
	return nil
}
