package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/adinsights/internal/models"
)

// ClickHouse wraps a ClickHouse DB connection holding performance rows.
type ClickHouse struct {
	DB *sql.DB
}

const clickhouseSchema = `CREATE TABLE IF NOT EXISTS ad_performance (
       date          Date,
       channel       LowCardinality(String),
       campaign      String,
       campaign_type LowCardinality(String),
       product       String,
       category      LowCardinality(String),
       keyword       String,
       impressions   Int64,
       clicks        Int64,
       add_to_cart   Nullable(Int64),
       orders        Int64,
       cost          Float64,
       revenue       Float64
   ) ENGINE=MergeTree() ORDER BY (date, channel, campaign)`

// InitClickHouse connects to ClickHouse and ensures the performance table
// exists.
func InitClickHouse(dsn string, maxOpenConns int) (*ClickHouse, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), clickhouseSchema); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &ClickHouse{DB: db}, nil
}

// Name identifies the source in logs and metrics.
func (c *ClickHouse) Name() string { return "clickhouse" }

// Load reads the whole performance table.
func (c *ClickHouse) Load(ctx context.Context) (models.Dataset, error) {
	if c == nil || c.DB == nil {
		return models.Dataset{}, ErrUnavailable
	}
	rows, err := c.DB.QueryContext(ctx, `SELECT * FROM `+PerformanceTable+` ORDER BY date`)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("query performance: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanPerformance(rows)
}

// Close terminates the ClickHouse connection.
func (c *ClickHouse) Close() {
	if c != nil && c.DB != nil {
		if err := c.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
