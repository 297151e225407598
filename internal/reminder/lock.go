package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker serializes scans across processes. Acquire reports false when
// another holder owns the lock; release must be called once when acquired.
type Locker interface {
	Acquire(ctx context.Context) (release func(), acquired bool, err error)
}

// LocalLocker always acquires. It is used by single-instance deployments.
type LocalLocker struct{}

// Acquire implements Locker.
func (LocalLocker) Acquire(context.Context) (func(), bool, error) {
	return func() {}, true, nil
}

// releaseScript deletes the key only if it still holds our token, so an
// expired lease never removes a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a lease held in redis with SET NX and a TTL.
type RedisLocker struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client redis.UniversalClient, key string, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, key: key, ttl: ttl, logger: logger}
}

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			l.logger.Warn("failed to release scan lock", zap.String("key", l.key), zap.Error(err))
		}
	}
	return release, true, nil
}
