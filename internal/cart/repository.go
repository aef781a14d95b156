package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("cart not found")
)

// Repository persists account-bound carts. Guest carts live in a GuestStore.
type Repository interface {
	GetCart(ctx context.Context, userID string) (Cart, error)
	CreateCart(ctx context.Context, userID string) (Cart, error)
	UpsertLine(ctx context.Context, cartID string, line Line) error
	DeleteLine(ctx context.Context, cartID, variantID string) error
	ClearLines(ctx context.Context, cartID string) error
	// MergeLines applies all lines or none.
	MergeLines(ctx context.Context, cartID string, lines []Line, policy MergePolicy) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	carts  map[string]Cart   // by user id
	owners map[string]string // cart id -> user id
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{
		carts:  make(map[string]Cart, len(seed)),
		owners: make(map[string]string, len(seed)),
	}
	for _, c := range seed {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		r.carts[c.UserID] = c.Clone()
		r.owners[c.ID] = c.UserID
	}
	return r
}

func (r *InMemoryRepository) GetCart(_ context.Context, userID string) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c.Clone(), nil
}

func (r *InMemoryRepository) CreateCart(_ context.Context, userID string) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[userID]; ok {
		return c.Clone(), nil
	}
	c := Cart{ID: uuid.NewString(), UserID: userID, Lines: []Line{}}
	r.carts[userID] = c
	r.owners[c.ID] = userID
	return c.Clone(), nil
}

// update must be called with mu held.
func (r *InMemoryRepository) update(cartID string, fn func(c *Cart)) error {
	userID, ok := r.owners[cartID]
	if !ok {
		return ErrNotFound
	}
	c := r.carts[userID].Clone()
	fn(&c)
	r.carts[userID] = c
	return nil
}

func (r *InMemoryRepository) UpsertLine(_ context.Context, cartID string, line Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(cartID, func(c *Cart) {
		c.Merge([]Line{line}, MergeOverwrite)
	})
}

func (r *InMemoryRepository) DeleteLine(_ context.Context, cartID, variantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(cartID, func(c *Cart) { c.RemoveLine(variantID) })
}

func (r *InMemoryRepository) ClearLines(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(cartID, func(c *Cart) { c.Clear() })
}

func (r *InMemoryRepository) MergeLines(_ context.Context, cartID string, lines []Line, policy MergePolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(cartID, func(c *Cart) { c.Merge(lines, policy) })
}
