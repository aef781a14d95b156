package recommended

import (
	"context"

	"github.com/wichananm65/jersey-shop-backend/internal/product"
)

const (
	defaultLimit = 8
	maxLimit     = 48
)

type Products interface {
	List(ctx context.Context, q product.ListQuery) ([]product.Product, error)
}

// Service provides the featured product strip for the home page.
type Service struct {
	products Products
}

func NewService(products Products) *Service {
	return &Service{products: products}
}

// List returns up to limit featured products, newest first, starting at offset.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Item, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	featured, err := s.products.List(ctx, product.ListQuery{FeaturedOnly: true, Sort: product.SortNewest})
	if err != nil {
		return nil, err
	}
	if offset >= len(featured) {
		return []Item{}, nil
	}
	featured = featured[offset:]
	if len(featured) > limit {
		featured = featured[:limit]
	}

	out := make([]Item, 0, len(featured))
	for _, p := range featured {
		out = append(out, Item{
			ProductID: p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Price:     p.Price,
			SalePrice: p.SalePrice,
			Image:     p.CoverImage(),
		})
	}
	return out, nil
}
