package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"folio/internal/config"
	"folio/internal/connectivity"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/holdings"
	"folio/internal/presenter"
	"folio/internal/remote"
	"folio/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		logger.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	repo := database.New(db, logger)
	client := remote.NewClient(remote.Config{
		URL:        cfg.HoldingsURL,
		Timeout:    cfg.HTTPTimeout,
		RatePerSec: cfg.FetchRatePerSec,
		Burst:      cfg.FetchBurst,
	}, logger)

	var opts []holdings.Option
	if cfg.SyncSerialize {
		opts = append(opts, holdings.WithSerializedReconcile())
	}
	syncer := holdings.NewSyncer(repo, client, newOracle(ctx, cfg, logger), logger, opts...)
	portfolio := service.NewPortfolioService(syncer, logger)
	p := presenter.New(portfolio, logger)

	if err := service.NewRefresher(p, logger).Start(ctx, cfg.RefreshSchedule); err != nil {
		logger.Fatalf("refresher: %v", err)
	}
	go p.Load(ctx)

	if cfg.LogLevel < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	rg := gin.Default()
	handlers.NewHandler(p, portfolio, logger).Register(rg)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: rg}
	go func() {
		logger.Infof("viewer listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}

func newOracle(ctx context.Context, cfg *config.Config, logger *logrus.Logger) connectivity.Oracle {
	switch cfg.ConnectivityMode {
	case config.ConnectivityAlways:
		return connectivity.Static(true)
	case config.ConnectivityNever:
		return connectivity.Static(false)
	}
	prober := connectivity.NewProber(connectivity.ProberConfig{
		ProbeURL: cfg.ConnectivityProbeURL,
		Interval: cfg.ConnectivityInterval,
	}, logger)
	prober.Start(ctx)
	return prober
}
