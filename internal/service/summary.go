package service

import (
	"folio/internal/models"
	"github.com/shopspring/decimal"
)

// ComputeSummary reduces holdings to portfolio totals. The input is copied,
// never modified.
func ComputeSummary(holdings []models.Holding) models.PortfolioSummary {
	if len(holdings) == 0 {
		return models.EmptySummary()
	}

	currentValue := decimal.Zero
	totalInvestment := decimal.Zero
	totalPnL := decimal.Zero
	todaysPnL := decimal.Zero
	for _, h := range holdings {
		currentValue = currentValue.Add(h.CurrentValue())
		totalInvestment = totalInvestment.Add(h.TotalInvestment())
		totalPnL = totalPnL.Add(h.TotalPnL())
		todaysPnL = todaysPnL.Add(h.TodaysPnL())
	}

	return models.PortfolioSummary{
		Holdings:           append([]models.Holding(nil), holdings...),
		CurrentValue:       currentValue,
		TotalInvestment:    totalInvestment,
		TotalPnL:           totalPnL,
		TodaysPnL:          todaysPnL,
		TotalPnLPercentage: models.Percentage(totalPnL, totalInvestment),
		IsInProfit:         !totalPnL.IsNegative(),
	}
}
