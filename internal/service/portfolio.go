package service

import (
	"context"
	"time"

	"folio/internal/models"
	"github.com/sirupsen/logrus"
)

// HoldingsProvider is the sync side of the portfolio: holdings.Syncer.
type HoldingsProvider interface {
	GetHoldings(ctx context.Context, forceRefresh bool) ([]models.Holding, error)
	RefreshHoldings(ctx context.Context) error
	ClearCache(ctx context.Context)
	LastSynced(ctx context.Context) (time.Time, bool, error)
}

type PortfolioService struct {
	holdings HoldingsProvider
	log      *logrus.Logger
}

func NewPortfolioService(h HoldingsProvider, log *logrus.Logger) *PortfolioService {
	return &PortfolioService{holdings: h, log: log}
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, forceRefresh bool) (models.PortfolioSummary, error) {
	hs, err := s.holdings.GetHoldings(ctx, forceRefresh)
	if err != nil {
		return models.PortfolioSummary{}, err
	}
	summary := ComputeSummary(hs)
	s.log.WithFields(logrus.Fields{
		"holdings":      len(summary.Holdings),
		"current_value": summary.CurrentValue.StringFixed(2),
	}).Debug("portfolio computed")
	return summary, nil
}

func (s *PortfolioService) Refresh(ctx context.Context) error {
	return s.holdings.RefreshHoldings(ctx)
}

func (s *PortfolioService) ClearCache(ctx context.Context) {
	s.holdings.ClearCache(ctx)
}

func (s *PortfolioService) LastSynced(ctx context.Context) (time.Time, bool, error) {
	return s.holdings.LastSynced(ctx)
}
