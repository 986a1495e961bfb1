package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"progress-service/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	// PrefixSession namespaces session keys.
	PrefixSession = "session:"

	// TTLSessionData is used when the config has no TTL.
	TTLSessionData = 7 * 24 * time.Hour
)

// raiseScript sets the hash field to ARGV[1] unless the current value is
// already greater, refreshes the TTL and returns the resulting value.
var raiseScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], ARGV[2]) or '0')
local candidate = tonumber(ARGV[1])
if candidate > current then
	redis.call('HSET', KEYS[1], ARGV[2], candidate)
	current = candidate
end
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return current
`)

// RedisStore keeps each session in one hash: session:{id}:records, a field per
// exercise type.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return NewRedisStoreWithClient(client, cfg.TTL()), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = TTLSessionData
	}
	return &RedisStore{client: client, ttl: ttl}
}

func recordsKey(sessionID string) string {
	return PrefixSession + sessionID + ":records"
}

func (s *RedisStore) Get(ctx context.Context, sessionID, exerciseType string) (int, bool, error) {
	if sessionID == "" {
		return 0, false, ErrSessionKeyEmpty
	}

	raw, err := s.client.HGet(ctx, recordsKey(sessionID), exerciseType).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		// A corrupt entry is treated as a miss.
		return 0, false, nil
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, exerciseType string, value int) error {
	if sessionID == "" {
		return ErrSessionKeyEmpty
	}

	key := recordsKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, exerciseType, value)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Raise(ctx context.Context, sessionID, exerciseType string, value int) (int, error) {
	if sessionID == "" {
		return 0, ErrSessionKeyEmpty
	}

	result, err := raiseScript.Run(ctx, s.client,
		[]string{recordsKey(sessionID)},
		value, exerciseType, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return result, nil
}

func (s *RedisStore) Forget(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionKeyEmpty
	}
	if err := s.client.Del(ctx, recordsKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
