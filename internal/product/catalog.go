package product

import (
	"context"

	"github.com/wichananm65/jersey-shop-backend/internal/cart"
)

// Catalog answers the cart's variant lookups from the product repository.
type Catalog struct {
	repo Repository
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Variant reports the current price and stock for variantID. Variants of
// inactive products cannot be added.
func (c *Catalog) Variant(ctx context.Context, variantID string) (cart.Snapshot, error) {
	p, err := c.repo.GetByVariant(ctx, variantID)
	if err != nil {
		return cart.Snapshot{}, mapErr(err)
	}
	v, ok := p.Variant(variantID)
	if !ok || !p.Active {
		return cart.Snapshot{}, mapErr(ErrVariantNotFound)
	}
	return cart.Snapshot{
		Line: cart.Line{
			VariantID: v.ID,
			ProductID: p.ID,
			Title:     p.Title,
			Size:      v.Size,
			UnitPrice: p.UnitPrice(),
			Image:     p.CoverImage(),
			Slug:      p.Slug,
		},
		Stock: v.Stock,
	}, nil
}
