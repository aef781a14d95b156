package favorite

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrAlreadyFavorite = errors.New("product already in favorites")
	ErrNotFavorite     = errors.New("product not in favorites")
)

// Entry is one saved product, oldest first in listings.
type Entry struct {
	ProductID string
	AddedAt   time.Time
}

// Repository provides access to a user's saved products.
type Repository interface {
	List(ctx context.Context, userID string) ([]Entry, error)
	Add(ctx context.Context, userID, productID string, at time.Time) error
	Remove(ctx context.Context, userID, productID string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]map[string]time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: map[string]map[string]time.Time{}}
}

func (r *InMemoryRepository) List(_ context.Context, userID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.data[userID]))
	for pid, at := range r.data[userID] {
		out = append(out, Entry{ProductID: pid, AddedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) Add(_ context.Context, userID, productID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	favs, ok := r.data[userID]
	if !ok {
		favs = map[string]time.Time{}
		r.data[userID] = favs
	}
	if _, exists := favs[productID]; exists {
		return ErrAlreadyFavorite
	}
	favs[productID] = at
	return nil
}

func (r *InMemoryRepository) Remove(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[userID][productID]; !exists {
		return ErrNotFavorite
	}
	delete(r.data[userID], productID)
	return nil
}
