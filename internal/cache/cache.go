// Package cache stores rendered views in Redis so repeated requests for the
// same selection skip the aggregation pipeline.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/filters"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/observability"
)

// ErrMiss is returned by Get when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "adinsights:view:"

// ViewCache is a JSON view cache over Redis. A nil *ViewCache is a valid,
// always-missing cache.
type ViewCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics observability.MetricsRegistry
}

// New returns a cache writing entries with the given ttl.
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *ViewCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &ViewCache{client: client, ttl: ttl, logger: logger, metrics: metrics}
}

// Key identifies a view for one dataset version, selection and set of
// targets. A reload bumps the version, so stale entries are never read.
func Key(view string, version uint64, c filters.Criteria, th models.TargetThresholds) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(view)
	b.WriteString(":v")
	b.WriteString(strconv.FormatUint(version, 10))
	b.WriteByte(':')
	b.WriteString(c.Key())
	for _, f := range []float64{th.TargetROAS, th.TargetACOS, th.TargetCPA, th.MinSpend, th.FlagMinSpend} {
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		b.WriteByte('|')
	}
	b.WriteString(strconv.FormatInt(th.MinOrdersPromote, 10))
	return b.String()
}

// Get decodes the entry at key into dst.
func (c *ViewCache) Get(ctx context.Context, key string, dst any) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.IncrementCacheLookups("miss")
		return ErrMiss
	}
	if err != nil {
		c.metrics.IncrementCacheLookups("error")
		return fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.metrics.IncrementCacheLookups("error")
		return fmt.Errorf("cache decode: %w", err)
	}
	c.metrics.IncrementCacheLookups("hit")
	return nil
}

// Set stores v at key with the cache ttl.
func (c *ViewCache) Set(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Fetch returns the cached value for key or builds, stores and returns a
// fresh one. Cache failures are logged and never fail the request.
func Fetch[T any](ctx context.Context, c *ViewCache, key string, build func() (T, error)) (T, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		c.logger.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := build()
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		c.logger.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
