package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GuestStore keeps carts for visitors who have not signed in. A missing
// cart loads as an empty one.
type GuestStore interface {
	Load(ctx context.Context, guestID string) (Cart, error)
	Save(ctx context.Context, guestID string, c Cart) error
	Delete(ctx context.Context, guestID string) error
}

type RedisGuestStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuestStore(client *redis.Client, ttl time.Duration) *RedisGuestStore {
	return &RedisGuestStore{client: client, ttl: ttl}
}

func (s *RedisGuestStore) Load(ctx context.Context, guestID string) (Cart, error) {
	data, err := s.client.Get(ctx, guestKey(guestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{Lines: []Line{}}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("unmarshal guest cart failed: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return c, nil
}

// Save refreshes the TTL on every write so active guests keep their cart.
func (s *RedisGuestStore) Save(ctx context.Context, guestID string, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal guest cart failed: %w", err)
	}
	if err := s.client.Set(ctx, guestKey(guestID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisGuestStore) Delete(ctx context.Context, guestID string) error {
	if err := s.client.Del(ctx, guestKey(guestID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func guestKey(guestID string) string {
	return fmt.Sprintf("guest_cart:%s", guestID)
}

// InMemoryGuestStore is used when no Redis address is configured.
type InMemoryGuestStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

func NewInMemoryGuestStore() *InMemoryGuestStore {
	return &InMemoryGuestStore{carts: make(map[string]Cart)}
}

func (s *InMemoryGuestStore) Load(_ context.Context, guestID string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[guestID]
	if !ok {
		return Cart{Lines: []Line{}}, nil
	}
	return c.Clone(), nil
}

func (s *InMemoryGuestStore) Save(_ context.Context, guestID string, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[guestID] = c.Clone()
	return nil
}

func (s *InMemoryGuestStore) Delete(_ context.Context, guestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, guestID)
	return nil
}
