package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type Config struct {
	Driver string
	DSN    string
}

const schema = `CREATE TABLE IF NOT EXISTS holdings (
	symbol TEXT PRIMARY KEY,
	quantity BIGINT NOT NULL,
	ltp NUMERIC NOT NULL,
	avg_price NUMERIC NOT NULL,
	close NUMERIC NOT NULL,
	last_updated BIGINT NOT NULL
)`

// Open connects to the holdings store and makes sure the schema exists.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return &StorageError{Op: "migrate", Err: err}
	}
	return nil
}

func sqliteDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("sqlite DSN is empty")
	}
	if !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:") {
		path := dsn
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("create database directory: %w", err)
		}
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn, nil
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", nil
}
