package main

import (
	"context"
	"os"

	"folio/internal/config"
	"folio/internal/connectivity"
	"folio/internal/database"
	"folio/internal/holdings"
	"folio/internal/models"
	"folio/internal/remote"
	"folio/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// env is the wiring shared by every subcommand.
type env struct {
	cfg  *config.Config
	log  *logrus.Logger
	db   *sqlx.DB
	repo *database.Repo
}

func openEnv(ctx context.Context) (*env, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)

	db, err := database.Open(ctx, database.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db, repo: database.New(db, log)}, nil
}

func (e *env) Close() error { return e.db.Close() }

// portfolio wires the sync stack against the configured remote endpoint. A
// probe mode runs a single check instead of a background ticker.
func (e *env) portfolio(ctx context.Context) *service.PortfolioService {
	client := remote.NewClient(remote.Config{
		URL:        e.cfg.HoldingsURL,
		Timeout:    e.cfg.HTTPTimeout,
		RatePerSec: e.cfg.FetchRatePerSec,
		Burst:      e.cfg.FetchBurst,
	}, e.log)

	var network connectivity.Oracle
	switch e.cfg.ConnectivityMode {
	case config.ConnectivityAlways:
		network = connectivity.Static(true)
	case config.ConnectivityNever:
		network = connectivity.Static(false)
	default:
		prober := connectivity.NewProber(connectivity.ProberConfig{ProbeURL: e.cfg.ConnectivityProbeURL}, e.log)
		prober.Check(ctx)
		network = prober
	}
	return service.NewPortfolioService(holdings.NewSyncer(e.repo, client, network, e.log), e.log)
}

// fileSource serves a snapshot saved in the remote wire format.
type fileSource struct {
	path string
}

func (f fileSource) FetchHoldings(context.Context) ([]models.Holding, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return remote.DecodeSnapshot(fh)
}
