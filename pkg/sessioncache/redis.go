package sessioncache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStore implements Store on Redis so sessions survive process restarts
// and are shared across instances.
type RedisStore struct {
	rdb    *redis.Client
	logger ectologger.Logger
}

// NewRedisStore connects to Redis and returns a session store.
func NewRedisStore(cfg RedisConfig, logger ectologger.Logger) (*RedisStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Infof("Connected to Redis at %s", addr)

	return &RedisStore{
		rdb:    rdb,
		logger: logger,
	}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func sessionKey(sessionID, slot string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, slot)
}

func (s *RedisStore) Put(ctx context.Context, sessionID, slot string, entry Entry, ttl time.Duration) error {
	ctx, span := tracing.StartSpan(ctx, "sessioncache.RedisStore.Put")
	defer span.End()

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode session entry: %w", err)
	}
	return s.rdb.Set(ctx, sessionKey(sessionID, slot), body, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID, slot string) (Entry, error) {
	ctx, span := tracing.StartSpan(ctx, "sessioncache.RedisStore.Get")
	defer span.End()

	body, err := s.rdb.Get(ctx, sessionKey(sessionID, slot)).Bytes()
	if err == redis.Nil {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	if err := json.Unmarshal(body, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to decode session entry: %w", err)
	}
	return entry, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, slot string) error {
	ctx, span := tracing.StartSpan(ctx, "sessioncache.RedisStore.Delete")
	defer span.End()

	return s.rdb.Del(ctx, sessionKey(sessionID, slot)).Err()
}
