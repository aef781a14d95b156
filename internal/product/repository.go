package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrDuplicate       = errors.New("product slug or variant sku already exists")
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	// GetByVariant returns the product owning variantID.
	GetByVariant(ctx context.Context, variantID string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	// Update replaces the product row together with its variants and images.
	Update(ctx context.Context, p Product) (Product, error)
	SetFlags(ctx context.Context, id string, active, featured bool) error
	Delete(ctx context.Context, id string) error
	Inventory(ctx context.Context, maxStock *int) ([]InventoryItem, error)
	// UpdateStock applies all updates or none.
	UpdateStock(ctx context.Context, updates []StockUpdate) error
	Count(ctx context.Context) (int, error)
	LowStockCount(ctx context.Context, threshold int) (int, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Product, 0, len(seed))}
	for _, p := range seed {
		r.storage = append(r.storage, clone(p))
	}
	return r
}

func clone(p Product) Product {
	p.Variants = append([]Variant{}, p.Variants...)
	p.Images = append([]Image{}, p.Images...)
	return p
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if !f.IncludeInactive && !p.Active {
			continue
		}
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		if f.CategoryID != "" && !p.Categories.Has(f.CategoryID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(p.Slug, q) {
			continue
		}
		out = append(out, clone(p))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch f.Sort {
		case SortPriceAsc:
			return a.Price.LessThan(b.Price)
		case SortPriceDesc:
			return a.Price.GreaterThan(b.Price)
		case SortFeatured:
			if a.Featured != b.Featured {
				return a.Featured
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) find(match func(Product) bool) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if match(p) {
			return clone(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Product, error) {
	return r.find(func(p Product) bool { return p.ID == id })
}

func (r *InMemoryRepository) GetBySlug(_ context.Context, slug string) (Product, error) {
	return r.find(func(p Product) bool { return p.Slug == slug })
}

func (r *InMemoryRepository) GetByVariant(_ context.Context, variantID string) (Product, error) {
	p, err := r.find(func(p Product) bool {
		_, ok := p.Variant(variantID)
		return ok
	})
	if errors.Is(err, ErrNotFound) {
		return Product{}, ErrVariantNotFound
	}
	return p, err
}

// conflicts reports a slug or sku clash with any product other than p.
func (r *InMemoryRepository) conflicts(p Product) bool {
	skus := make(map[string]bool, len(p.Variants))
	for _, v := range p.Variants {
		if skus[v.SKU] {
			return true
		}
		skus[v.SKU] = true
	}
	for _, other := range r.storage {
		if other.ID == p.ID {
			continue
		}
		if other.Slug == p.Slug {
			return true
		}
		for _, v := range other.Variants {
			if skus[v.SKU] {
				return true
			}
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(p) {
		return Product{}, ErrDuplicate
	}
	r.storage = append(r.storage, clone(p))
	return clone(p), nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID != p.ID {
			continue
		}
		if r.conflicts(p) {
			return Product{}, ErrDuplicate
		}
		p.CreatedAt = r.storage[i].CreatedAt
		r.storage[i] = clone(p)
		return clone(p), nil
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) SetFlags(_ context.Context, id string, active, featured bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Active = active
			r.storage[i].Featured = featured
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Inventory(_ context.Context, maxStock *int) ([]InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]InventoryItem, 0)
	for _, p := range r.storage {
		for _, v := range p.Variants {
			if maxStock != nil && v.Stock > *maxStock {
				continue
			}
			out = append(out, InventoryItem{
				VariantID: v.ID, ProductID: p.ID, ProductTitle: p.Title, ProductSlug: p.Slug,
				Size: v.Size, SKU: v.SKU, Stock: v.Stock,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductTitle != out[j].ProductTitle {
			return out[i].ProductTitle < out[j].ProductTitle
		}
		return out[i].Size < out[j].Size
	})
	return out, nil
}

func (r *InMemoryRepository) UpdateStock(_ context.Context, updates []StockUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	type loc struct{ p, v int }
	found := make([]loc, len(updates))
	for n, u := range updates {
		ok := false
		for i := range r.storage {
			for j := range r.storage[i].Variants {
				if r.storage[i].Variants[j].ID == u.VariantID {
					found[n], ok = loc{i, j}, true
				}
			}
		}
		if !ok {
			return fmt.Errorf("update stock %s: %w", u.VariantID, ErrVariantNotFound)
		}
	}
	for n, u := range updates {
		r.storage[found[n].p].Variants[found[n].v].Stock = u.Stock
	}
	return nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.storage), nil
}

func (r *InMemoryRepository) LowStockCount(ctx context.Context, threshold int) (int, error) {
	items, err := r.Inventory(ctx, &threshold)
	return len(items), err
}
