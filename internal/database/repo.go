package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

const upsertHolding = `INSERT INTO holdings (symbol, quantity, ltp, avg_price, close, last_updated)
VALUES (:symbol, :quantity, :ltp, :avg_price, :close, :last_updated)
ON CONFLICT (symbol) DO UPDATE SET
	quantity = excluded.quantity,
	ltp = excluded.ltp,
	avg_price = excluded.avg_price,
	close = excluded.close,
	last_updated = excluded.last_updated`

func (r *Repo) GetAll(ctx context.Context) ([]HoldingRow, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT symbol, quantity, ltp, avg_price, close, last_updated FROM holdings ORDER BY symbol ASC`)
	if err != nil {
		return nil, &StorageError{Op: "get all", Err: err}
	}
	defer rows.Close()
	res := []HoldingRow{}
	for rows.Next() {
		var h HoldingRow
		if err := rows.StructScan(&h); err != nil {
			return nil, &StorageError{Op: "scan holding", Err: err}
		}
		res = append(res, h)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "get all", Err: err}
	}
	return res, nil
}

// Upsert writes every row, replacing any row stored under the same symbol.
func (r *Repo) Upsert(ctx context.Context, rows []HoldingRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "upsert", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, upsertHolding)
	if err != nil {
		return &StorageError{Op: "upsert", Err: err}
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			r.log.WithField("symbol", row.Symbol).Warnf("upsert holding failed: %v", err)
			return &StorageError{Op: "upsert " + row.Symbol, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "upsert", Err: err}
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM holdings WHERE symbol IN (?)`, symbols)
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM holdings`); err != nil {
		return &StorageError{Op: "delete all", Err: err}
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM holdings`); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}

// LastUpdated returns the newest write time; ok is false for an empty table.
func (r *Repo) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	var ms sql.NullInt64
	if err := r.db.GetContext(ctx, &ms, `SELECT MAX(last_updated) FROM holdings`); err != nil {
		return time.Time{}, false, &StorageError{Op: "last updated", Err: err}
	}
	if !ms.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms.Int64), true, nil
}
