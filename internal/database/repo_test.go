package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holdings.db")
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func row(symbol string, qty int64, ltp, avg, close string, ts int64) HoldingRow {
	return HoldingRow{
		Symbol:      symbol,
		Quantity:    qty,
		LTP:         decimal.RequireFromString(ltp),
		AvgPrice:    decimal.RequireFromString(avg),
		Close:       decimal.RequireFromString(close),
		LastUpdated: ts,
	}
}

func symbols(rows []HoldingRow) []string {
	res := []string{}
	for _, r := range rows {
		res = append(res, r.Symbol)
	}
	return res
}

func TestRepo_EmptyStore(t *testing.T) {
	r := New(setupDB(t), logrus.New())
	ctx := context.Background()

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, ok, err := r.LastUpdated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepo_UpsertAndGetAllSorted(t *testing.T) {
	r := New(setupDB(t), logrus.New())
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []HoldingRow{
		row("TCS", 3, "3400.75", "3300", "3390", 1000),
		row("INFY", 8, "1500.25", "1450.5", "1490", 1000),
		row("RELIANCE", 10, "2500.5", "2400", "2480", 1000),
	}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"INFY", "RELIANCE", "TCS"}, symbols(all))

	infy := all[0]
	assert.Equal(t, int64(8), infy.Quantity)
	assert.True(t, infy.LTP.Equal(decimal.RequireFromString("1500.25")), "ltp %s", infy.LTP)
	assert.True(t, infy.AvgPrice.Equal(decimal.RequireFromString("1450.5")), "avg %s", infy.AvgPrice)
	assert.True(t, infy.Close.Equal(decimal.NewFromInt(1490)), "close %s", infy.Close)
	assert.Equal(t, int64(1000), infy.LastUpdated)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRepo_UpsertReplacesExistingSymbol(t *testing.T) {
	r := New(setupDB(t), logrus.New())
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []HoldingRow{row("AAPL", 10, "150", "140", "148", 1000)}))
	require.NoError(t, r.Upsert(ctx, []HoldingRow{row("AAPL", 15, "155", "141", "153", 2000)}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(15), all[0].Quantity)
	assert.True(t, all[0].LTP.Equal(decimal.NewFromInt(155)))
	assert.True(t, all[0].AvgPrice.Equal(decimal.NewFromInt(141)))
	assert.True(t, all[0].Close.Equal(decimal.NewFromInt(153)))
	assert.Equal(t, int64(2000), all[0].LastUpdated)

	ts, ok, err := r.LastUpdated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.UnixMilli(2000), ts)
}

func TestRepo_UpsertEmptyIsNoop(t *testing.T) {
	r := New(setupDB(t), logrus.New())
	require.NoError(t, r.Upsert(context.Background(), nil))
	require.NoError(t, r.Upsert(context.Background(), []HoldingRow{}))
}

func TestRepo_Delete(t *testing.T) {
	r := New(setupDB(t), logrus.New())
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []HoldingRow{
		row("AAPL", 10, "150", "140", "148", 1),
		row("GOOGL", 5, "2800", "2700", "2790", 1),
		row("TSLA", 3, "800", "750", "795", 1),
	}))

	require.NoError(t, r.Delete(ctx, []string{"TSLA", "MISSING"}))
	require.NoError(t, r.Delete(ctx, nil))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOGL"}, symbols(all))
}

func TestRepo_SymbolsAreCaseSensitive(t *testing.T) {
	r := New(setupDB(t), logrus.New())
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []HoldingRow{
		row("abc", 1, "1", "1", "1", 1),
		row("ABC", 2, "2", "2", "2", 1),
	}))
	require.NoError(t, r.Delete(ctx, []string{"abc"}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC"}, symbols(all))
}

func TestRepo_DeleteAll(t *testing.T) {
	r := New(setupDB(t), logrus.New())
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []HoldingRow{
		row("AAPL", 10, "150", "140", "148", 1),
		row("GOOGL", 5, "2800", "2700", "2790", 1),
	}))
	require.NoError(t, r.DeleteAll(ctx))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRepo_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "holdings.db")
	ctx := context.Background()

	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	require.NoError(t, New(db, logrus.New()).Upsert(ctx, []HoldingRow{row("AAPL", 10, "150", "140", "148", 1)}))
	require.NoError(t, db.Close())

	db, err = Open(ctx, Config{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer db.Close()
	n, err := New(db, logrus.New()).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepo_ClosedDBReturnsStorageError(t *testing.T) {
	db := setupDB(t)
	r := New(db, logrus.New())
	require.NoError(t, db.Close())

	_, err := r.Count(context.Background())
	require.Error(t, err)
	var se *StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "count", se.Op)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestRepo_Postgres(t *testing.T) {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set; skipping integration tests")
	}
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DriverPostgres, DSN: url})
	require.NoError(t, err)
	defer db.Close()

	r := New(db, logrus.New())
	require.NoError(t, r.DeleteAll(ctx))
	require.NoError(t, r.Upsert(ctx, []HoldingRow{
		row("RELIANCE", 10, "2500.5", "2400", "2480", 1000),
		row("TCS", 5, "3400.75", "3300", "3390", 1000),
	}))
	require.NoError(t, r.Upsert(ctx, []HoldingRow{row("TCS", 6, "3410", "3300", "3390", 2000)}))
	require.NoError(t, r.Delete(ctx, []string{"RELIANCE"}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "TCS", all[0].Symbol)
	assert.Equal(t, int64(6), all[0].Quantity)
	assert.True(t, all[0].LTP.Equal(decimal.NewFromInt(3410)), "ltp %s", all[0].LTP)
	require.NoError(t, r.DeleteAll(ctx))
}
