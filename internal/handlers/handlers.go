package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"folio/internal/presenter"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// CacheService is the cache side of service.PortfolioService.
type CacheService interface {
	ClearCache(ctx context.Context)
	LastSynced(ctx context.Context) (time.Time, bool, error)
}

type Handler struct {
	presenter *presenter.Presenter
	cache     CacheService
	log       *logrus.Logger
}

func NewHandler(p *presenter.Presenter, cache CacheService, log *logrus.Logger) *Handler {
	return &Handler{presenter: p, cache: cache, log: log}
}

func (h *Handler) Register(rg *gin.Engine) {
	rg.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	rg.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rg.GET("/portfolio", h.GetPortfolio)
	rg.GET("/portfolio/stream", h.StreamPortfolio)
	rg.POST("/portfolio/retry", h.Retry)
	rg.POST("/portfolio/refresh", h.Refresh)
	rg.POST("/portfolio/toggle", h.ToggleExpansion)

	rg.GET("/cache/status", h.CacheStatus)
	rg.DELETE("/cache", h.ClearCache)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.presenter.State())
}

func (h *Handler) StreamPortfolio(c *gin.Context) {
	states, unsubscribe := h.presenter.Subscribe()
	defer unsubscribe()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", st)
			return true
		}
	})
}

func (h *Handler) Retry(c *gin.Context) {
	h.presenter.Retry(c.Request.Context())
	c.JSON(http.StatusOK, h.presenter.State())
}

// Refresh reports the resulting state even when the sync failed; the
// presenter decides whether the failure is visible.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.presenter.Refresh(c.Request.Context()); err != nil {
		h.log.Warnf("refresh intent failed: %v", err)
	}
	c.JSON(http.StatusOK, h.presenter.State())
}

func (h *Handler) ToggleExpansion(c *gin.Context) {
	h.presenter.ToggleExpansion()
	c.JSON(http.StatusOK, h.presenter.State())
}

func (h *Handler) CacheStatus(c *gin.Context) {
	ts, ok, err := h.cache.LastSynced(c.Request.Context())
	if err != nil {
		h.log.Errorf("read cache status failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var lastUpdated interface{}
	if ok {
		lastUpdated = ts.UTC().Format(time.RFC3339Nano)
	}
	c.JSON(http.StatusOK, gin.H{"last_updated": lastUpdated, "has_data": ok})
}

func (h *Handler) ClearCache(c *gin.Context) {
	h.cache.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
