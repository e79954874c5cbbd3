package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReportCache stores aggregated vendor reports in Redis. Keys embed a
// per-vendor version counter; bumping the version orphans every cached
// report for that vendor at once, so there is no key sweep to get wrong.
type ReportCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func Connect(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return rdb, nil
}

func NewReportCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl, logger: logger}
}

func versionKey(vendorEmail string) string {
	return fmt.Sprintf("reports:ver:%s", vendorEmail)
}

func reportKey(vendorEmail string, version int64, name string, start, end time.Time) string {
	return fmt.Sprintf("reports:%s:v%d:%s:%s:%s",
		vendorEmail, version, name, start.Format("20060102"), end.Format("20060102"))
}

func (c *ReportCache) version(ctx context.Context, vendorEmail string) (int64, error) {
	version, err := c.rdb.Get(ctx, versionKey(vendorEmail)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return version, err
}

// Get unmarshals a cached report into dest and reports whether it was found.
func (c *ReportCache) Get(ctx context.Context, vendorEmail, name string, start, end time.Time, dest interface{}) bool {
	version, err := c.version(ctx, vendorEmail)
	if err != nil {
		c.logger.Warn("report cache version lookup failed", zap.Error(err))
		return false
	}

	data, err := c.rdb.Get(ctx, reportKey(vendorEmail, version, name, start, end)).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("report cache read failed", zap.Error(err))
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("report cache decode failed", zap.Error(err))
		return false
	}
	return true
}

// Set caches a computed report under the vendor's current version.
func (c *ReportCache) Set(ctx context.Context, vendorEmail, name string, start, end time.Time, report interface{}) {
	version, err := c.version(ctx, vendorEmail)
	if err != nil {
		c.logger.Warn("report cache version lookup failed", zap.Error(err))
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("report cache encode failed", zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, reportKey(vendorEmail, version, name, start, end), data, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the vendor's version so readers skip every stale entry.
// Failures are logged; report data simply ages out through the TTL.
func (c *ReportCache) Invalidate(ctx context.Context, vendorEmail string) {
	if err := c.rdb.Incr(ctx, versionKey(vendorEmail)).Err(); err != nil {
		c.logger.Warn("report cache invalidation failed",
			zap.String("vendor", vendorEmail), zap.Error(err))
	}
}
