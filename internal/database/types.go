package database

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HoldingRow is the persisted form of a holding. LastUpdated is epoch millis.
type HoldingRow struct {
	Symbol      string          `db:"symbol" json:"symbol"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	LTP         decimal.Decimal `db:"ltp" json:"ltp"`
	AvgPrice    decimal.Decimal `db:"avg_price" json:"avg_price"`
	Close       decimal.Decimal `db:"close" json:"close"`
	LastUpdated int64           `db:"last_updated" json:"last_updated"`
}

// StorageError reports a failed store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("holdings store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
