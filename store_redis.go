package driftwatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient captures the subset of redis.Client used by the store.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

type redisStore struct {
	client RedisClient
	prefix string
}

func newRedisStore(client RedisClient, prefix string) EntryStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) Driver() Driver {
	return DriverRedis
}

func (s *redisStore) Get(ctx context.Context, id string) (*Entry, bool, error) {
	if s.client == nil {
		return nil, false, errors.New("redis cache client unavailable")
	}
	body, err := s.client.Get(ctx, s.cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	entry, err := decodeEntry(body)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

func (s *redisStore) Put(ctx context.Context, id string, entry *Entry) error {
	if s.client == nil {
		return errors.New("redis cache client unavailable")
	}
	body, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	// No redis-side expiration: the engine owns TTL semantics so expired
	// entries stay visible to stats until a read evicts them.
	return s.client.Set(ctx, s.cacheKey(id), body, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if s.client == nil {
		return errors.New("redis cache client unavailable")
	}
	return s.client.Del(ctx, s.cacheKey(id)).Err()
}

func (s *redisStore) List(ctx context.Context) (map[string]*Entry, error) {
	if s.client == nil {
		return nil, errors.New("redis cache client unavailable")
	}
	entries := make(map[string]*Entry)
	err := s.scanKeys(ctx, func(key string) error {
		body, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		entry, err := decodeEntry(body)
		if err != nil {
			return err
		}
		entries[strings.TrimPrefix(key, s.prefix+":")] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *redisStore) Flush(ctx context.Context) (int, error) {
	if s.client == nil {
		return 0, errors.New("redis cache client unavailable")
	}
	removed := 0
	err := s.scanKeys(ctx, func(key string) error {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

func (s *redisStore) scanKeys(ctx context.Context, fn func(key string) error) error {
	pattern := s.cacheKey("*")
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := fn(key); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (s *redisStore) cacheKey(id string) string {
	return s.prefix + ":" + id
}

func encodeEntry(entry *Entry) ([]byte, error) {
	return json.Marshal(entry)
}

func decodeEntry(body []byte) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
