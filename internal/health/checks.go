package health

import (
	"context"
	"errors"
	"time"

	"github.com/vyrodovalexey/avgitgw/internal/cache"
)

// checkTimeout bounds a single dependency probe.
const checkTimeout = 5 * time.Second

// Pinger is the dependency surface for database readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck probes the user store connection.
func DatabaseCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) Check {
		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Status: StatusHealthy}
	}
}

// CacheCheck probes the attribution cache. A disabled cache is healthy;
// an unreachable one only degrades readiness since attribution falls back
// to the store.
func CacheCheck(c cache.Cache) CheckFunc {
	return func(ctx context.Context) Check {
		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()

		_, err := c.Exists(ctx, "health:probe")
		switch {
		case err == nil:
			return Check{Status: StatusHealthy}
		case errors.Is(err, cache.ErrCacheDisabled):
			return Check{Status: StatusHealthy, Message: "cache disabled"}
		default:
			return Check{Status: StatusDegraded, Message: err.Error()}
		}
	}
}
