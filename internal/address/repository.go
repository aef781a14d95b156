package address

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("address not found")
)

// Repository scopes every operation to the owning user.
type Repository interface {
	List(ctx context.Context, userID string) ([]Address, error)
	Get(ctx context.Context, userID, id string) (Address, error)
	// Create and Update clear the user's other defaults when a.IsDefault
	// is set.
	Create(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	SetDefault(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu   sync.Mutex
	data map[string][]Address // keyed by userID
}

func NewInMemoryRepository(seed map[string][]Address) *InMemoryRepository {
	if seed == nil {
		seed = map[string][]Address{}
	}
	return &InMemoryRepository{data: seed}
}

func (r *InMemoryRepository) List(_ context.Context, userID string) ([]Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]Address{}, r.data[userID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, id string) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.data[userID] {
		if a.ID == id {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) clearDefault(userID, except string) {
	for i := range r.data[userID] {
		if r.data[userID][i].ID != except {
			r.data[userID][i].IsDefault = false
		}
	}
}

func (r *InMemoryRepository) Create(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.IsDefault {
		r.clearDefault(a.UserID, a.ID)
	}
	r.data[a.UserID] = append(r.data[a.UserID], a)
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.data[a.UserID] {
		if existing.ID == a.ID {
			if a.IsDefault {
				r.clearDefault(a.UserID, a.ID)
			}
			a.CreatedAt = existing.CreatedAt
			r.data[a.UserID][i] = a
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) SetDefault(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.data[userID] {
		if r.data[userID][i].ID == id {
			r.clearDefault(userID, id)
			r.data[userID][i].IsDefault = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[userID]
	for i, a := range addrs {
		if a.ID == id {
			r.data[userID] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
