package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestHolding_DerivedValues(t *testing.T) {
	h := Holding{Symbol: "AAPL", Quantity: 10, LTP: d("150"), AvgPrice: d("140"), Close: d("148")}

	assert.True(t, h.CurrentValue().Equal(d("1500")), "current value: %s", h.CurrentValue())
	assert.True(t, h.TotalInvestment().Equal(d("1400")), "investment: %s", h.TotalInvestment())
	assert.True(t, h.TotalPnL().Equal(d("100")), "pnl: %s", h.TotalPnL())
	assert.True(t, h.TodaysPnL().Equal(d("-20")), "todays pnl: %s", h.TodaysPnL())
	assert.True(t, h.TotalPnL().Equal(h.CurrentValue().Sub(h.TotalInvestment())))
}

func TestHolding_PnLPercentage(t *testing.T) {
	h := Holding{Symbol: "INFY", Quantity: 4, LTP: d("110"), AvgPrice: d("100"), Close: d("105")}
	assert.True(t, h.PnLPercentage().Equal(d("10")), "got %s", h.PnLPercentage())

	loss := Holding{Symbol: "TCS", Quantity: 2, LTP: d("75"), AvgPrice: d("100"), Close: d("80")}
	assert.True(t, loss.PnLPercentage().Equal(d("-25")), "got %s", loss.PnLPercentage())
}

func TestHolding_ZeroInvestment(t *testing.T) {
	cases := []Holding{
		{Symbol: "FREE", Quantity: 10, LTP: d("50"), AvgPrice: decimal.Zero, Close: d("45")},
		{Symbol: "NONE", Quantity: 0, LTP: d("50"), AvgPrice: d("40"), Close: d("45")},
	}
	for _, h := range cases {
		t.Run(h.Symbol, func(t *testing.T) {
			assert.NotPanics(t, func() { h.PnLPercentage() })
			assert.True(t, h.PnLPercentage().IsZero())
		})
	}
}

func TestEmptySummary(t *testing.T) {
	s := EmptySummary()
	assert.NotNil(t, s.Holdings)
	assert.Empty(t, s.Holdings)
	assert.True(t, s.CurrentValue.IsZero())
	assert.True(t, s.TotalInvestment.IsZero())
	assert.True(t, s.TotalPnL.IsZero())
	assert.True(t, s.TodaysPnL.IsZero())
	assert.True(t, s.TotalPnLPercentage.IsZero())
	assert.False(t, s.IsInProfit)
}
