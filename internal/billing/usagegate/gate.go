// internal/billing/usagegate/gate.go
package usagegate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smartreceipt-billing/internal/common/database"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/common/metrics"
	"smartreceipt-billing/internal/models"
)

// CanSubmitScan is the pure gate decision. The -1 limit sentinel means
// unlimited scans.
func CanSubmitScan(usage models.Usage) bool {
	if usage.ScanLimit == models.UnlimitedScans {
		return true
	}
	return usage.ScanCount < usage.ScanLimit
}

// UsageFetcher is the backend call behind the gate.
type UsageFetcher interface {
	GetUsage(ctx context.Context, year, month int) (*models.Usage, error)
}

// Gate answers "may this user submit another scan" against cached usage
// figures, falling back to the backend on a cache miss. Usage is treated as
// an immutable snapshot for one decision; it is re-fetched, never mutated.
type Gate struct {
	fetcher UsageFetcher
	redis   *database.RedisClient
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time
}

func NewGate(fetcher UsageFetcher, redisClient *database.RedisClient, ttl time.Duration, log logger.Logger) *Gate {
	return &Gate{
		fetcher: fetcher,
		redis:   redisClient,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

func (g *Gate) cacheKey(year, month int) string {
	return fmt.Sprintf("usage:%d:%02d", year, month)
}

// Check returns the gate decision for the current period.
func (g *Gate) Check(ctx context.Context) (bool, error) {
	usage, err := g.currentUsage(ctx)
	if err != nil {
		return false, err
	}

	allowed := CanSubmitScan(*usage)
	decision := "allowed"
	if !allowed {
		decision = "blocked"
	}
	metrics.UsageGateDecisions.WithLabelValues(decision).Inc()

	if !allowed {
		g.log.Info("scan submission blocked by quota", map[string]interface{}{
			"scanCount": usage.ScanCount,
			"scanLimit": usage.ScanLimit,
		})
	}
	return allowed, nil
}

// currentUsage reads the cache first, then the backend. A cache write
// failure is logged and ignored; the decision still stands.
func (g *Gate) currentUsage(ctx context.Context) (*models.Usage, error) {
	now := g.now()
	year, month := now.Year(), int(now.Month())
	key := g.cacheKey(year, month)

	if g.redis != nil {
		cached, err := g.redis.Get(ctx, key)
		if err == nil {
			var usage models.Usage
			if jsonErr := json.Unmarshal([]byte(cached), &usage); jsonErr == nil {
				return &usage, nil
			}
			// Corrupt entry; fall through to a fresh fetch.
			_ = g.redis.Del(ctx, key)
		} else if err != redis.Nil {
			g.log.WithError(err).Warn("usage cache read failed", nil)
		}
	}

	usage, err := g.fetcher.GetUsage(ctx, year, month)
	if err != nil {
		return nil, err
	}

	if g.redis != nil {
		if raw, jsonErr := json.Marshal(usage); jsonErr == nil {
			if err := g.redis.Set(ctx, key, raw, g.ttl); err != nil {
				g.log.WithError(err).Warn("usage cache write failed", nil)
			}
		}
	}
	return usage, nil
}

// Invalidate drops the cached figures for the current period. Called after
// every scan submission and after every successful payment, since both move
// the numerator or the denominator.
func (g *Gate) Invalidate(ctx context.Context) error {
	if g.redis == nil {
		return nil
	}
	now := g.now()
	return g.redis.Del(ctx, g.cacheKey(now.Year(), int(now.Month())))
}
