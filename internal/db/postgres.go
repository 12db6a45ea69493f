package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the performance table if it doesn't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS ad_performance (
    date DATE NOT NULL,
    channel TEXT NOT NULL,
    campaign TEXT NOT NULL,
    campaign_type TEXT NOT NULL,
    product TEXT NOT NULL,
    category TEXT NOT NULL,
    keyword TEXT NOT NULL,
    impressions BIGINT NOT NULL DEFAULT 0,
    clicks BIGINT NOT NULL DEFAULT 0,
    add_to_cart BIGINT,
    orders BIGINT NOT NULL DEFAULT 0,
    cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    revenue DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ad_performance_date ON ad_performance (date);
CREATE INDEX IF NOT EXISTS idx_ad_performance_channel ON ad_performance (channel);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.EnsureSchema(context.Background()); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// EnsureSchema creates the performance table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Name identifies the source in logs and metrics.
func (p *Postgres) Name() string { return "postgres" }

// Load reads the whole performance table.
func (p *Postgres) Load(ctx context.Context) (models.Dataset, error) {
	if p == nil || p.DB == nil {
		return models.Dataset{}, ErrUnavailable
	}
	rows, err := p.DB.QueryContext(ctx, `SELECT * FROM `+PerformanceTable+` ORDER BY date`)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("query performance: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanPerformance(rows)
}

// CopyPerformance bulk-inserts recs in one transaction using COPY. The
// add_to_cart column is written as NULL when hasATC is false.
func (p *Postgres) CopyPerformance(ctx context.Context, ds models.Dataset) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin copy: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(PerformanceTable,
		models.ColDate, models.ColChannel, models.ColCampaign, models.ColCampaignType,
		models.ColProduct, models.ColCategory, models.ColKeyword, models.ColImpressions,
		models.ColClicks, models.ColAddToCart, models.ColOrders, models.ColCost, models.ColRevenue))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}

	for _, r := range ds.Records {
		var atc any
		if ds.HasAddToCart {
			atc = r.AddToCart
		}
		if _, err := stmt.ExecContext(ctx, r.Date, r.Channel, r.Campaign, r.CampaignType,
			r.Product, r.Category, r.Keyword, r.Impressions, r.Clicks, atc, r.Orders, r.Cost, r.Revenue); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy row: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit copy: %w", err)
	}
	zap.L().Info("Copied performance rows", zap.Int("rows", ds.Len()))
	return nil
}
