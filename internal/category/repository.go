package category

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound   = errors.New("category not found")
	ErrSlugExists = errors.New("category slug already exists")
)

// Repository provides access to category rows.
type Repository interface {
	// List returns up to limit categories ordered by type then name; an
	// empty typ lists every type.
	List(ctx context.Context, typ Type, limit int) ([]Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	GetBySlug(ctx context.Context, slug string) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	return &InMemoryRepository{storage: append([]Category{}, seed...)}
}

func (r *InMemoryRepository) List(_ context.Context, typ Type, limit int) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0, len(r.storage))
	for _, c := range r.storage {
		if typ == "" || c.Type == typ {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) find(match func(Category) bool) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if match(c) {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Category, error) {
	return r.find(func(c Category) bool { return c.ID == id })
}

func (r *InMemoryRepository) GetBySlug(_ context.Context, slug string) (Category, error) {
	return r.find(func(c Category) bool { return c.Slug == slug })
}

func (r *InMemoryRepository) slugTaken(c Category) bool {
	for _, other := range r.storage {
		if other.ID != c.ID && other.Slug == c.Slug {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(c) {
		return Category{}, ErrSlugExists
	}
	r.storage = append(r.storage, c)
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == c.ID {
			if r.slugTaken(c) {
				return Category{}, ErrSlugExists
			}
			c.CreatedAt = r.storage[i].CreatedAt
			r.storage[i] = c
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

// Delete detaches children the way ON DELETE SET NULL does.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			for j := range r.storage {
				if r.storage[j].ParentID != nil && *r.storage[j].ParentID == id {
					r.storage[j].ParentID = nil
				}
			}
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.storage), nil
}
