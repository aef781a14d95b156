package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/product"
)

// Products resolves saved ids into the storefront view.
type Products interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

// Favorite is a saved kit as shown on the account page.
type Favorite struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

type Service struct {
	repo     Repository
	products Products
	now      func() time.Time
}

func NewService(repo Repository, products Products) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

// GetFavorites skips products that have since been hidden from the store.
func (s *Service) GetFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	out := make([]Favorite, 0, len(entries))
	for _, e := range entries {
		p, err := s.products.GetByID(ctx, e.ProductID)
		if apperr.KindOf(err) == apperr.KindNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.Active {
			continue
		}
		out = append(out, Favorite{
			ProductID: p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Price:     p.Price,
			UnitPrice: p.UnitPrice(),
			Image:     p.CoverImage(),
			AddedAt:   e.AddedAt,
		})
	}
	return out, nil
}

func (s *Service) AddFavorite(ctx context.Context, userID, productID string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Active {
		return apperr.NotFound("PRODUCT_NOT_FOUND", "product not found")
	}
	return mapErr(s.repo.Add(ctx, userID, productID, s.now().UTC()))
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, productID string) error {
	return mapErr(s.repo.Remove(ctx, userID, productID))
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyFavorite):
		return apperr.Conflict("ALREADY_FAVORITE", "product already in favorites")
	case errors.Is(err, ErrNotFavorite):
		return apperr.Validation("NOT_FAVORITE", "product not in favorites")
	default:
		return apperr.Persistence(err)
	}
}
