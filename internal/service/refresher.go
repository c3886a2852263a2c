package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher periodically refreshes the portfolio in the background.
type Refresher struct {
	target Refreshable
	log    *logrus.Logger
}

func NewRefresher(target Refreshable, log *logrus.Logger) *Refresher {
	return &Refresher{target: target, log: log}
}

// Start schedules refreshes with a cron spec such as "@every 15m" and stops
// them when ctx is done. An empty spec disables background refresh.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	if spec == "" {
		r.log.Info("background refresh disabled")
		return nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(r.log))))
	if _, err := c.AddFunc(spec, func() { r.run(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	r.log.Infof("background refresh scheduled %s", spec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		r.log.Info("background refresh stopping")
	}()
	return nil
}

func (r *Refresher) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.target.Refresh(ctx); err != nil {
		r.log.Warnf("background refresh failed: %v", err)
	}
}
