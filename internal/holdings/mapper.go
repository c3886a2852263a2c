package holdings

import (
	"time"

	"folio/internal/database"
	"folio/internal/models"
)

func toRows(hs []models.Holding, now time.Time) []database.HoldingRow {
	ts := now.UnixMilli()
	rows := make([]database.HoldingRow, 0, len(hs))
	for _, h := range hs {
		rows = append(rows, database.HoldingRow{
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			LTP:         h.LTP,
			AvgPrice:    h.AvgPrice,
			Close:       h.Close,
			LastUpdated: ts,
		})
	}
	return rows
}

func toDomain(rows []database.HoldingRow) []models.Holding {
	hs := make([]models.Holding, 0, len(rows))
	for _, r := range rows {
		hs = append(hs, models.Holding{
			Symbol:   r.Symbol,
			Quantity: r.Quantity,
			LTP:      r.LTP,
			AvgPrice: r.AvgPrice,
			Close:    r.Close,
		})
	}
	return hs
}

// staleSymbols returns the cached symbols missing from the fetched rows, in
// cache order.
func staleSymbols(cached, fetched []database.HoldingRow) []string {
	keep := make(map[string]struct{}, len(fetched))
	for _, r := range fetched {
		keep[r.Symbol] = struct{}{}
	}
	var stale []string
	for _, r := range cached {
		if _, ok := keep[r.Symbol]; !ok {
			stale = append(stale, r.Symbol)
		}
	}
	return stale
}
