package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStatusChanged means the order left the expected status before the
	// update landed.
	ErrStatusChanged = errors.New("order status changed")
)

type Repository interface {
	// CreateWithLines stores the header and every line atomically.
	CreateWithLines(ctx context.Context, o Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// List returns every order, or only those in status when it is set.
	List(ctx context.Context, status Status) ([]Order, error)
	// UpdateStatus moves the order to status only while it is still in from.
	UpdateStatus(ctx context.Context, id string, from, status Status, at time.Time) error
	Summary(ctx context.Context) (Summary, error)
	Recent(ctx context.Context, limit int) ([]Order, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make(map[string]Order, len(seed))}
	for _, o := range seed {
		r.orders[o.ID] = o
	}
	return r
}

func (r *InMemoryRepository) CreateWithLines(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]Line, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	r.orders[o.ID] = o
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// newestFirst must be called with mu held.
func (r *InMemoryRepository) newestFirst(keep func(Order) bool) []Order {
	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(o Order) bool { return o.UserID == userID }), nil
}

func (r *InMemoryRepository) List(_ context.Context, status Status) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(o Order) bool { return status == "" || o.Status == status }), nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, from, status Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrStatusChanged
	}
	o.Status = status
	o.UpdatedAt = at
	r.orders[id] = o
	return nil
}

func (r *InMemoryRepository) Summary(_ context.Context) (Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Summary{Revenue: decimal.Zero}
	for _, o := range r.orders {
		s.Count++
		if o.Status != StatusCancelled {
			s.Revenue = s.Revenue.Add(o.Total)
		}
	}
	return s, nil
}

func (r *InMemoryRepository) Recent(_ context.Context, limit int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.newestFirst(func(Order) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
