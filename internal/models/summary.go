package models

import "github.com/shopspring/decimal"

type PortfolioSummary struct {
	Holdings           []Holding       `json:"holdings"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	TotalInvestment    decimal.Decimal `json:"total_investment"`
	TotalPnL           decimal.Decimal `json:"total_pnl"`
	TodaysPnL          decimal.Decimal `json:"todays_pnl"`
	TotalPnLPercentage decimal.Decimal `json:"total_pnl_percentage"`
	IsInProfit         bool            `json:"is_in_profit"`
}

// EmptySummary is the summary of a portfolio with no holdings.
func EmptySummary() PortfolioSummary {
	return PortfolioSummary{
		Holdings:           []Holding{},
		CurrentValue:       decimal.Zero,
		TotalInvestment:    decimal.Zero,
		TotalPnL:           decimal.Zero,
		TodaysPnL:          decimal.Zero,
		TotalPnLPercentage: decimal.Zero,
		IsInProfit:         false,
	}
}
