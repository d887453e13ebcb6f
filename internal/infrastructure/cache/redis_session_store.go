package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medisync/backend/internal/domain/dispensing"
	"github.com/medisync/backend/internal/infrastructure/config"
)

const defaultSessionKeyPrefix = "dispensing:session:"

// RedisSessionStore keeps dispensing sessions in Redis. Suitable when
// multiple instances serve the same operators or sessions must survive a
// restart.
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionStore connects to Redis and verifies the connection
func NewRedisSessionStore(cfg config.RedisConfig, ttl time.Duration) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSessionStore{
		client:    client,
		keyPrefix: defaultSessionKeyPrefix,
		ttl:       ttl,
	}, nil
}

// NewRedisSessionStoreWithClient creates a store with an existing client,
// useful for tests or when sharing a client across components
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = defaultSessionKeyPrefix
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisSessionStore) key(operatorID uuid.UUID) string {
	return s.keyPrefix + operatorID.String()
}

// Get returns the operator's session, or (nil, nil) when none exists
func (s *RedisSessionStore) Get(ctx context.Context, operatorID uuid.UUID) (*dispensing.Session, error) {
	data, err := s.client.Get(ctx, s.key(operatorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session dispensing.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Put stores the session, refreshing its TTL
func (s *RedisSessionStore) Put(ctx context.Context, session *dispensing.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.OperatorID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Delete removes the operator's session
func (s *RedisSessionStore) Delete(ctx context.Context, operatorID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(operatorID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
