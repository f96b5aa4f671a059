package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix = "session:"
	stagedPrefix  = "staged:"
)

// RedisStore implements Store using Redis key expiry for TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed store and checks connectivity.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) SaveSession(ctx context.Context, sess Session, ttl time.Duration) error {
	return s.set(ctx, sessionPrefix+sess.ID, sess, ttl)
}

func (s *RedisStore) LookupSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.get(ctx, sessionPrefix+id, &sess)
	return sess, err
}

func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveStaged(ctx context.Context, u StagedUpload, ttl time.Duration) error {
	return s.set(ctx, stagedPrefix+u.ID, u, ttl)
}

func (s *RedisStore) LookupStaged(ctx context.Context, id string) (StagedUpload, error) {
	var u StagedUpload
	err := s.get(ctx, stagedPrefix+id, &u)
	return u, err
}

// TakeStaged claims the entry with GETDEL.
func (s *RedisStore) TakeStaged(ctx context.Context, id string) (StagedUpload, error) {
	var u StagedUpload
	key := stagedPrefix + id
	data, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("take %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return u, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return u, nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
