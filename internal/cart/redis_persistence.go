package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/mercagoods/storefront-backend/pkg/redis"
)

// RedisPersistence stores each cart as one JSON value with a TTL, so
// abandoned carts expire on their own.
type RedisPersistence struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisPersistence wires the shared redis client as a cart backend.
func NewRedisPersistence(client *redisclient.Client, ttl time.Duration) (*RedisPersistence, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisPersistence{client: client, ttl: ttl}, nil
}

func (r *RedisPersistence) Load(ctx context.Context, key string) (*State, error) {
	raw, err := r.client.Get(ctx, r.client.CartKey(key))
	if err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("reading cart state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding cart state: %w", err)
	}
	if state.Items == nil {
		return nil, fmt.Errorf("decoding cart state: missing items list")
	}
	return &state, nil
}

func (r *RedisPersistence) Save(ctx context.Context, key string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding cart state: %w", err)
	}
	return r.client.Set(ctx, r.client.CartKey(key), raw, r.ttl)
}

func (r *RedisPersistence) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.CartKey(key))
}
