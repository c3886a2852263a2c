package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"folio/internal/metrics"
	"folio/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

type Config struct {
	URL        string
	Timeout    time.Duration
	RatePerSec float64 // 0 disables throttling
	Burst      int
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("holdings endpoint returned %d: %s", e.Code, e.Body)
}

// Client fetches the current holdings snapshot over HTTP.
type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	log     *logrus.Logger
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}

	st := gobreaker.Settings{
		Name:        "holdings-endpoint",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	}

	return &Client{
		url:     cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(st),
		limiter: limiter,
		log:     log,
	}
}

func (c *Client) FetchHoldings(ctx context.Context) ([]models.Holding, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Warnf("fetch holdings failed: %v", err)
		return nil, err
	}
	return res.([]models.Holding), nil
}

func (c *Client) fetch(ctx context.Context) ([]models.Holding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return DecodeSnapshot(resp.Body)
}
