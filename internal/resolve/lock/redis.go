package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL       = 15 * time.Second
	defaultRetryWait = 50 * time.Millisecond
)

// releaseScript deletes the key only when the holder token still matches, so
// a lock that expired and was re-acquired elsewhere is never released by the
// previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis serializes enrollment per group across processes using SET NX with
// a TTL. The TTL guarantees a crashed holder cannot wedge enrollment for a
// group; it is sized well above the enroll+insert window.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

// NewRedis constructs a redis-backed enrollment lock.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, ttl: defaultTTL, retryWait: defaultRetryWait}
}

// Acquire polls SET NX until the group lock is held or ctx expires.
func (l *Redis) Acquire(ctx context.Context, group string) (func(), error) {
	key := "facesign:enroll-lock:" + group
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire enrollment lock for %q: %w", group, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire enrollment lock for %q: %w", group, ctx.Err())
		case <-time.After(l.retryWait):
		}
	}

	release := func() {
		// Best effort: the TTL reclaims the lock if this fails.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, nil
}
