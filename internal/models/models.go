package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Holding is one stock position as reported by the holdings endpoint.
type Holding struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	LTP      decimal.Decimal `json:"ltp"`
	AvgPrice decimal.Decimal `json:"avg_price"`
	Close    decimal.Decimal `json:"close"`
}

func (h Holding) qty() decimal.Decimal {
	return decimal.NewFromInt(h.Quantity)
}

func (h Holding) CurrentValue() decimal.Decimal {
	return h.LTP.Mul(h.qty())
}

func (h Holding) TotalInvestment() decimal.Decimal {
	return h.AvgPrice.Mul(h.qty())
}

func (h Holding) TotalPnL() decimal.Decimal {
	return h.CurrentValue().Sub(h.TotalInvestment())
}

func (h Holding) TodaysPnL() decimal.Decimal {
	return h.Close.Sub(h.LTP).Mul(h.qty())
}

// PnLPercentage is zero when nothing was invested.
func (h Holding) PnLPercentage() decimal.Decimal {
	return Percentage(h.TotalPnL(), h.TotalInvestment())
}

// Percentage returns part/whole*100, or zero when whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
