package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/models"
)

// Supported values for DATA_SOURCE.
const (
	SourceCSV        = "csv"
	SourceClickHouse = "clickhouse"
	SourcePostgres   = "postgres"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string
	Env          string
	// Dataset configuration
	DataSource     string
	DataCSVPath    string
	ChannelScale   string
	ReloadInterval time.Duration
	ClickHouseDSN  string
	PostgresDSN    string
	// Database connection pooling configuration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	CHMaxOpenConns    int
	// View cache
	RedisAddr    string
	CacheEnabled bool
	CacheTTL     time.Duration
	// Tracing configuration
	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64
	// Default performance targets, overridable per request
	TargetROAS       float64
	TargetACOS       float64
	TargetCPA        float64
	MinSpend         float64
	FlagMinSpend     float64
	MinOrdersPromote int
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}
	def := models.DefaultThresholds()

	cfg.Port = getenv("PORT", "8787")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "adinsights")
	cfg.Env = getenv("ENV", "production")

	cfg.DataSource = strings.ToLower(getenv("DATA_SOURCE", SourceCSV))
	cfg.DataCSVPath = getenv("DATA_CSV_PATH", "data/ads_performance.csv")
	cfg.ChannelScale = getenv("CHANNEL_SCALE", "")
	// a zero interval disables automatic reloads
	cfg.ReloadInterval = envDuration("RELOAD_INTERVAL", 5*time.Minute)
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default")
	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")

	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 10)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)
	cfg.CHMaxOpenConns = envInt("CH_MAX_OPEN_CONNS", 10)

	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.CacheEnabled = envBool("CACHE_ENABLED", false)
	cfg.CacheTTL = envDuration("CACHE_TTL", 10*time.Minute)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TracingEndpoint = getenv("TRACING_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	cfg.TargetROAS = envFloat("TARGET_ROAS", def.TargetROAS)
	cfg.TargetACOS = envFloat("TARGET_ACOS", def.TargetACOS)
	cfg.TargetCPA = envFloat("TARGET_CPA", def.TargetCPA)
	cfg.MinSpend = envFloat("MIN_SPEND", def.MinSpend)
	cfg.FlagMinSpend = envFloat("FLAG_MIN_SPEND", def.FlagMinSpend)
	cfg.MinOrdersPromote = envInt("MIN_ORDERS_PROMOTE", int(def.MinOrdersPromote))

	return cfg
}

// Thresholds returns the configured default targets after validation.
func (c Config) Thresholds() (models.TargetThresholds, error) {
	th := models.TargetThresholds{
		TargetROAS:       c.TargetROAS,
		TargetACOS:       c.TargetACOS,
		TargetCPA:        c.TargetCPA,
		MinSpend:         c.MinSpend,
		FlagMinSpend:     c.FlagMinSpend,
		MinOrdersPromote: int64(c.MinOrdersPromote),
	}
	if err := th.Validate(); err != nil {
		return models.TargetThresholds{}, err
	}
	return th, nil
}

// Scale parses CHANNEL_SCALE.
func (c Config) Scale() (dataset.ChannelScale, error) {
	cs, err := dataset.ParseChannelScale(c.ChannelScale)
	if err != nil {
		return nil, fmt.Errorf("CHANNEL_SCALE: %w", err)
	}
	return cs, nil
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
