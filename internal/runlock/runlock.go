package runlock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockKey = "wishsender:run:lock"

// Guard is a cross-instance mutex for check runs, held for the duration of
// one pass. It is an optimization on top of the storage-level dedup index,
// not the guarantee itself: when redis is unreachable it fails open and lets
// the run proceed.
type Guard struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewGuard(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Guard {
	return &Guard{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire returns true when this instance may run. The TTL bounds how long a
// crashed holder can block others.
func (g *Guard) Acquire(ctx context.Context) bool {
	ok, err := g.rdb.SetNX(ctx, lockKey, 1, g.ttl).Result()
	if err != nil {
		g.logger.Warn("Run lock check failed, allowing run",
			zap.Error(err),
		)
		return true
	}
	if !ok {
		g.logger.Info("Another instance holds the run lock, skipping",
			zap.String("key", lockKey),
		)
	}
	return ok
}

// Release drops the lock early so a manual trigger does not have to wait out
// the TTL.
func (g *Guard) Release(ctx context.Context) {
	if err := g.rdb.Del(ctx, lockKey).Err(); err != nil {
		g.logger.Warn("Failed to release run lock", zap.Error(err))
	}
}
