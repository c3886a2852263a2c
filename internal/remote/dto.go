package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"folio/internal/models"
	"github.com/shopspring/decimal"
)

var ErrInvalidSnapshot = errors.New("invalid holdings snapshot")

type holdingsResponse struct {
	Data *userHoldingData `json:"data"`
}

type userHoldingData struct {
	UserHolding []holdingDTO `json:"userHolding"`
}

type holdingDTO struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	LTP      decimal.Decimal `json:"ltp"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
	Close    decimal.Decimal `json:"close"`
}

// DecodeSnapshot reads a holdings document in the endpoint's wire format.
// Rows sharing a symbol collapse into the last one, in first-seen order.
func DecodeSnapshot(r io.Reader) ([]models.Holding, error) {
	var resp holdingsResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidSnapshot)
	}

	res := make([]models.Holding, 0, len(resp.Data.UserHolding))
	index := map[string]int{}
	for _, dto := range resp.Data.UserHolding {
		if err := dto.validate(); err != nil {
			return nil, err
		}
		h := dto.toDomain()
		if i, ok := index[h.Symbol]; ok {
			res[i] = h
			continue
		}
		index[h.Symbol] = len(res)
		res = append(res, h)
	}
	return res, nil
}

func (d holdingDTO) validate() error {
	if d.Symbol == "" {
		return fmt.Errorf("%w: holding without symbol", ErrInvalidSnapshot)
	}
	if d.Quantity < 0 || d.LTP.IsNegative() || d.AvgPrice.IsNegative() || d.Close.IsNegative() {
		return fmt.Errorf("%w: negative value for %s", ErrInvalidSnapshot, d.Symbol)
	}
	return nil
}

func (d holdingDTO) toDomain() models.Holding {
	return models.Holding{
		Symbol:   d.Symbol,
		Quantity: d.Quantity,
		LTP:      d.LTP,
		AvgPrice: d.AvgPrice,
		Close:    d.Close,
	}
}
