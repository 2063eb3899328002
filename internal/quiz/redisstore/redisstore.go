// Package redisstore keeps quiz sessions in Redis so several server
// processes can share them. Expiry is delegated to Redis key TTLs.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kdrama-dashboard/internal/quiz"
)

const DefaultKeyPrefix = "kdrama:session:"

type Store struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// New wraps an existing client. An empty prefix uses DefaultKeyPrefix.
func New(client *redis.Client, ttl time.Duration, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, ttl: ttl, prefix: prefix}
}

// Open dials Redis and pings it before returning the store.
func Open(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return New(client, ttl, ""), nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (quiz.GameState, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return quiz.GameState{}, quiz.ErrSessionNotFound
		}
		return quiz.GameState{}, err
	}

	var state quiz.GameState
	if err := json.Unmarshal(payload, &state); err != nil {
		return quiz.GameState{}, fmt.Errorf("%w: %v", quiz.ErrCorruptState, err)
	}
	if err := state.Validate(); err != nil {
		return quiz.GameState{}, err
	}
	return state, nil
}

// Save writes the state and refreshes the key TTL. A non-positive ttl keeps
// the key forever.
func (s *Store) Save(ctx context.Context, sessionID string, state quiz.GameState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.key(sessionID), payload, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}
