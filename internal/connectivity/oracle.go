// Package connectivity answers whether an internet-capable, validated network
// is usable right now.
package connectivity

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/sirupsen/logrus"
)

type Oracle interface {
	Available() bool
}

// Static always gives the same answer.
type Static bool

func (s Static) Available() bool { return bool(s) }

// InterfaceLister reports the host's network interfaces.
type InterfaceLister func(ctx context.Context) (psnet.InterfaceStatList, error)

type ProberConfig struct {
	ProbeURL string
	Interval time.Duration
	Timeout  time.Duration
}

// Prober keeps the result of the last connectivity check. A network counts as
// available when some non-loopback interface is up with an address and the
// probe URL answers with a 2xx status.
type Prober struct {
	cfg        ProberConfig
	client     *http.Client
	interfaces InterfaceLister
	log        *logrus.Logger
	online     atomic.Bool
}

func NewProber(cfg ProberConfig, log *logrus.Logger) *Prober {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Prober{
		cfg:        cfg,
		client:     &http.Client{Timeout: cfg.Timeout},
		interfaces: psnet.InterfacesWithContext,
		log:        log,
	}
}

func (p *Prober) Available() bool {
	return p.online.Load()
}

// Check runs one probe and stores its result.
func (p *Prober) Check(ctx context.Context) bool {
	online := p.hasActiveInterface(ctx) && p.validated(ctx)
	if prev := p.online.Swap(online); prev != online {
		p.log.WithField("online", online).Info("connectivity changed")
	}
	return online
}

// Start probes once synchronously, then on every interval until ctx is done.
func (p *Prober) Start(ctx context.Context) {
	p.Check(ctx)
	go func() {
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.log.Info("connectivity prober stopping")
				return
			case <-ticker.C:
				p.Check(ctx)
			}
		}
	}()
}

func (p *Prober) hasActiveInterface(ctx context.Context) bool {
	ifaces, err := p.interfaces(ctx)
	if err != nil {
		p.log.Warnf("list network interfaces failed: %v", err)
		return false
	}
	for _, iface := range ifaces {
		if hasFlag(iface.Flags, "up") && !hasFlag(iface.Flags, "loopback") && len(iface.Addrs) > 0 {
			return true
		}
	}
	return false
}

func (p *Prober) validated(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.ProbeURL, nil)
	if err != nil {
		p.log.Warnf("bad connectivity probe url: %v", err)
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debugf("connectivity probe failed: %v", err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
