package promo

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound   = errors.New("promo code not found")
	ErrCodeExists = errors.New("promo code already exists")
)

type Repository interface {
	List(ctx context.Context) ([]Promotion, error)
	GetByID(ctx context.Context, id string) (Promotion, error)
	// GetByCode expects an already normalized code.
	GetByCode(ctx context.Context, code string) (Promotion, error)
	Create(ctx context.Context, p Promotion) (Promotion, error)
	Update(ctx context.Context, p Promotion) (Promotion, error)
	Delete(ctx context.Context, id string) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	promo map[string]Promotion
}

func NewInMemoryRepository(seed []Promotion) *InMemoryRepository {
	r := &InMemoryRepository{promo: make(map[string]Promotion, len(seed))}
	for _, p := range seed {
		r.promo[p.ID] = p
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Promotion, 0, len(r.promo))
	for _, p := range r.promo {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.promo[id]
	if !ok {
		return Promotion{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) GetByCode(_ context.Context, code string) (Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.promo {
		if p.Code == code {
			return p, nil
		}
	}
	return Promotion{}, ErrNotFound
}

// codeTaken must be called with mu held.
func (r *InMemoryRepository) codeTaken(code, exceptID string) bool {
	for id, p := range r.promo {
		if id != exceptID && p.Code == code {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, p Promotion) (Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codeTaken(p.Code, "") {
		return Promotion{}, ErrCodeExists
	}
	r.promo[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Promotion) (Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promo[p.ID]; !ok {
		return Promotion{}, ErrNotFound
	}
	if r.codeTaken(p.Code, p.ID) {
		return Promotion{}, ErrCodeExists
	}
	r.promo[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promo[id]; !ok {
		return ErrNotFound
	}
	delete(r.promo, id)
	return nil
}
