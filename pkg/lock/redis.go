package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB"`
	TTL      time.Duration `envconfig:"LOCK_TTL" default:"10s"`
}

// release deletes the key only while it still holds our token.
var release = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

const retryInterval = 20 * time.Millisecond

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedis returns a Locker shared by every process talking to the same Redis.
// The TTL bounds how long a crashed holder can block a key.
func NewRedis(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) Locker {
	return &redisLocker{client: client, ttl: ttl, log: log.Named("lock")}
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

func (l *redisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	token := uuid.NewString()
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "redis setnx %s", key)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, token) })
	}, nil
}

func (l *redisLocker) release(key, token string) {
	// the caller's ctx may already be done
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	deleted, err := release.Run(ctx, l.client, []string{key}, token).Int()
	switch {
	case err != nil:
		l.log.Error("release lock, held until ttl", zap.String("key", key), zap.Duration("ttl", l.ttl), zap.Error(err))
	case deleted == 0:
		l.log.Warn("lock expired before release", zap.String("key", key), zap.Duration("ttl", l.ttl))
	}
}
