package distributed

import (
	"context"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/pkg/distributed"

	"github.com/redis/go-redis/v9"
)

const (
	lockTTL            = 10 * time.Second
	lockAcquireTimeout = 5 * time.Second
)

// RedisStreamLocker extends the in-process per-stream guard with a Redis
// SET NX lock so control transitions stay exclusive across instances.
type RedisStreamLocker struct {
	client *redis.Client
	local  ports.StreamLocker
}

func NewRedisStreamLocker(client *redis.Client, local ports.StreamLocker) ports.StreamLocker {
	return &RedisStreamLocker{
		client: client,
		local:  local,
	}
}

func (l *RedisStreamLocker) WithStreamLock(ctx context.Context, streamID domain.StreamID, fn func() error) error {
	return l.local.WithStreamLock(ctx, streamID, func() error {
		lock := distributed.NewLock(l.client, "yacoolo:lock:stream:"+string(streamID), lockTTL)
		if err := lock.Acquire(ctx, lockAcquireTimeout); err != nil {
			return err
		}
		defer lock.Release(ctx)

		return fn()
	})
}
