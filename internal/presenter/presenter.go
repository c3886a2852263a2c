// Package presenter holds the portfolio screen state and publishes every
// transition to its subscribers.
package presenter

import (
	"context"
	"sync"

	"folio/internal/models"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindLoading Kind = "loading"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const (
	msgLoadFailed    = "failed to load portfolio"
	msgRefreshFailed = "failed to refresh portfolio"
)

// State is an immutable snapshot. Summary is set only for KindSuccess and
// Message only for KindError.
type State struct {
	Kind            Kind                     `json:"kind"`
	Summary         *models.PortfolioSummary `json:"summary,omitempty"`
	SummaryExpanded bool                     `json:"summary_expanded"`
	Message         string                   `json:"message,omitempty"`
}

func Loading() State { return State{Kind: KindLoading} }

func Success(summary models.PortfolioSummary, expanded bool) State {
	return State{Kind: KindSuccess, Summary: &summary, SummaryExpanded: expanded}
}

func Failure(message string) State { return State{Kind: KindError, Message: message} }

// Portfolio is the use case the presenter drives: service.PortfolioService.
type Portfolio interface {
	GetPortfolio(ctx context.Context, forceRefresh bool) (models.PortfolioSummary, error)
	Refresh(ctx context.Context) error
}

type Presenter struct {
	portfolio Portfolio
	log       *logrus.Logger

	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]chan State
}

// New returns a presenter in the Loading state. Callers trigger the first
// fetch with Load.
func New(p Portfolio, log *logrus.Logger) *Presenter {
	return &Presenter{
		portfolio: p,
		log:       log,
		state:     Loading(),
		subs:      map[int]chan State{},
	}
}

func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Load always bypasses the freshness shortcut of the sync layer.
func (p *Presenter) Load(ctx context.Context) {
	p.set(Loading())

	summary, err := p.portfolio.GetPortfolio(ctx, true)
	if err != nil {
		p.log.WithError(err).Warn("portfolio load failed")
		p.set(Failure(messageOr(err, msgLoadFailed)))
		return
	}
	p.set(Success(summary, false))
}

func (p *Presenter) Retry(ctx context.Context) {
	p.Load(ctx)
}

// Refresh forces a network sync and reloads on success. A failure replaces
// the state only when no data is on screen.
func (p *Presenter) Refresh(ctx context.Context) error {
	if err := p.portfolio.Refresh(ctx); err != nil {
		p.log.WithError(err).Warn("portfolio refresh failed")
		p.mu.Lock()
		if p.state.Kind != KindSuccess {
			p.setLocked(Failure(messageOr(err, msgRefreshFailed)))
		}
		p.mu.Unlock()
		return err
	}
	p.Load(ctx)
	return nil
}

func (p *Presenter) ToggleExpansion() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Kind != KindSuccess {
		return
	}
	p.setLocked(Success(*p.state.Summary, !p.state.SummaryExpanded))
}

// Subscribe returns a channel that always holds the most recent state not yet
// received, starting with the current one. A slow reader skips intermediate
// states. The returned func unsubscribes and closes the channel.
func (p *Presenter) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	ch <- p.state
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
			close(ch)
		})
	}
}

func (p *Presenter) set(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setLocked(s)
}

func (p *Presenter) setLocked(s State) {
	p.state = s
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func messageOr(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
