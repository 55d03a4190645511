package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore узкий интерфейс внешнего eventually-consistent хранилища.
// Записи могут становиться видимыми с задержкой, чтения могут быть
// устаревшими — вся координация поверх него (блокировки, дедупликация)
// считается best-effort. Каждая операция выполняется ровно один раз,
// ретраи оставлены вызывающему коду.
type KeyValueStore interface {
	// Get возвращает значение или ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Put записывает значение; ttl <= 0 означает "без срока жизни".
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// ListKeys перечисляет ключи по префиксу.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

type redisKeyValueStore struct {
	redis *RedisDB
}

func NewKeyValueStore(redis *RedisDB) KeyValueStore {
	return &redisKeyValueStore{redis: redis}
}

func (s *redisKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.redis.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}
	return val, nil
}

func (s *redisKeyValueStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *redisKeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *redisKeyValueStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.redis.Client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("kv list %q: %w", prefix, err)
	}
	return keys, nil
}
