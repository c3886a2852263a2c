package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ConnectivityProbe  = "probe"
	ConnectivityAlways = "always"
	ConnectivityNever  = "never"
)

type Config struct {
	DBDriver string
	DBDSN    string

	HoldingsURL     string
	HTTPTimeout     time.Duration
	FetchRatePerSec float64
	FetchBurst      int

	ConnectivityMode     string
	ConnectivityProbeURL string
	ConnectivityInterval time.Duration

	RefreshSchedule string
	SyncSerialize   bool

	HTTPAddr string
	LogLevel logrus.Level
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	level, err := logrus.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		DBDriver:             strings.ToLower(v.GetString("db_driver")),
		DBDSN:                v.GetString("db_dsn"),
		HoldingsURL:          v.GetString("holdings_url"),
		HTTPTimeout:          v.GetDuration("http_timeout"),
		FetchRatePerSec:      v.GetFloat64("fetch_rate_per_sec"),
		FetchBurst:           v.GetInt("fetch_burst"),
		ConnectivityMode:     strings.ToLower(v.GetString("connectivity_mode")),
		ConnectivityProbeURL: v.GetString("connectivity_probe_url"),
		ConnectivityInterval: v.GetDuration("connectivity_interval"),
		RefreshSchedule:      v.GetString("refresh_schedule"),
		SyncSerialize:        v.GetBool("sync_serialize"),
		HTTPAddr:             v.GetString("http_addr"),
		LogLevel:             level,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "data/holdings.db")

	v.SetDefault("holdings_url", "https://35dee773a9ec441e9f38d5fc249406ce.api.mockbin.io/")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("fetch_rate_per_sec", 2)
	v.SetDefault("fetch_burst", 2)

	v.SetDefault("connectivity_mode", ConnectivityProbe)
	v.SetDefault("connectivity_probe_url", "https://clients3.google.com/generate_204")
	v.SetDefault("connectivity_interval", "30s")

	v.SetDefault("refresh_schedule", "@every 15m")
	v.SetDefault("sync_serialize", false)

	v.SetDefault("http_addr", "127.0.0.1:8080")
	v.SetDefault("log_level", "info")
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.HoldingsURL == "" {
		return fmt.Errorf("HOLDINGS_URL is required")
	}
	switch c.ConnectivityMode {
	case ConnectivityProbe, ConnectivityAlways, ConnectivityNever:
	default:
		return fmt.Errorf("CONNECTIVITY_MODE must be probe, always or never, got %q", c.ConnectivityMode)
	}
	if c.ConnectivityMode == ConnectivityProbe && c.ConnectivityInterval <= 0 {
		return fmt.Errorf("CONNECTIVITY_INTERVAL must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}
