// Package handoff carries the initiating user's identity across the OAuth
// redirect, which may land on a different origin than the one that started the
// flow. One store, one get/set/clear contract; the fixed TTL is the only
// lifetime control.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
)

const keyPrefix = "oauth:handoff:"

// Record is what survives the redirect, keyed by the opaque state token.
// Pending marks a flow parked at the wrong origin, waiting to be resumed at
// the canonical one.
type Record struct {
	UserID      string            `json:"userId"`
	Integration model.Integration `json:"integration"`
	Pending     bool              `json:"pending"`
}

type Store interface {
	Set(ctx context.Context, state string, rec Record) error
	// Get returns nil without error when the state is unknown or expired.
	Get(ctx context.Context, state string) (*Record, error)
	Clear(ctx context.Context, state string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Set(ctx context.Context, state string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal handoff record: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+state, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store handoff record: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, state string) (*Record, error) {
	data, err := s.client.Get(ctx, keyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load handoff record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal handoff record: %w", err)
	}
	return &rec, nil
}

func (s *redisStore) Clear(ctx context.Context, state string) error {
	return s.client.Del(ctx, keyPrefix+state).Err()
}
