package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis, for running more than one instance
// of the service. Sessions expire with the token they belong to.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr and returns a RedisStore whose
// entries expire after ttl.
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

func sessionKey(token string) string {
	return "session:" + token
}

// Put stores a session under the given token.
func (r *RedisStore) Put(token string, s *Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(context.Background(), sessionKey(token), body, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns the session stored under the given token.
func (r *RedisStore) Get(token string) (*Session, error) {
	body, err := r.client.Get(context.Background(), sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete removes the session stored under the given token.
func (r *RedisStore) Delete(token string) error {
	if err := r.client.Del(context.Background(), sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
