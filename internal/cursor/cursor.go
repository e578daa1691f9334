// Package cursor keeps search queries in Redis behind short random tokens,
// so that page buttons can reference a query without exceeding the
// 64 bytes Telegram allows for callback data.
package cursor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 24 * time.Hour

var ErrExpired = errors.New("cursor expired")

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(token string) string {
	return fmt.Sprintf("cursor:%s", token)
}

// Put stores query and returns the token that refers to it.
func (s *Store) Put(ctx context.Context, query string) (string, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.rdb.Set(ctx, key(token), query, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store cursor: %w", err)
	}
	return token, nil
}

// Get resolves token back to its query and refreshes its TTL.
func (s *Store) Get(ctx context.Context, token string) (string, error) {
	query, err := s.rdb.GetEx(ctx, key(token), s.ttl).Result()
	if err == redis.Nil {
		return "", ErrExpired
	} else if err != nil {
		return "", fmt.Errorf("load cursor: %w", err)
	}
	return query, nil
}
