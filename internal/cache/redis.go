package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dedene/iconfilter-cli/internal/phrases"
)

const (
	redisPrefix  = "iconfilter:rules:"
	storeTimeout = 5 * time.Second
)

// RedisStore keeps rule tables in Redis, one string value per key.
// Redis expires entries itself after the TTL.
type RedisStore struct {
	client *redis.Client
	addr   string
	ttl    time.Duration
}

// OpenRedis connects to the server named by rawURL and pings it.
func OpenRedis(rawURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return &RedisStore{client: client, addr: opts.Addr, ttl: ttl}, nil
}

func redisKey(key string) string {
	return redisPrefix + key
}

// Load implements Store.
func (s *RedisStore) Load(key string) ([]phrases.Rule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading rule cache: %w", err)
	}

	return decode(data, key, s.ttl), nil
}

// Save implements Store. A non-positive TTL stores nothing.
func (s *RedisStore) Save(key string, rules []phrases.Rule) error {
	if s.ttl <= 0 {
		return nil
	}

	data, err := encode(key, rules)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := s.client.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing rule cache: %w", err)
	}

	return nil
}

// Clear deletes every key under the rules prefix.
func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	iter := s.client.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("clearing rule cache: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("clearing rule cache: %w", err)
	}

	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}

	return s.client.Close()
}

// Location implements Store.
func (s *RedisStore) Location() string { return "redis://" + s.addr }
