package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/slug"
)

// CategoryLookup resolves a category slug for listing filters.
type CategoryLookup interface {
	IDBySlug(ctx context.Context, categorySlug string) (string, error)
}

// Input is the admin product form. Variants and images replace the
// stored ones; a variant keeps its id when the form echoes it back.
type Input struct {
	Title           string           `json:"title" validate:"required"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"salePrice"`
	Active          *bool            `json:"isActive"`
	Featured        bool             `json:"isFeatured"`
	Categories      Categories       `json:"categories"`
	MetaTitle       string           `json:"metaTitle"`
	MetaDescription string           `json:"metaDescription"`
	Variants        []Variant        `json:"variants" validate:"dive"`
	Images          []Image          `json:"images" validate:"dive"`
}

func (in Input) check() error {
	if in.Price.IsNegative() {
		return apperr.Validation("INVALID_PRODUCT", "price cannot be negative")
	}
	if in.SalePrice != nil && (in.SalePrice.IsNegative() || in.SalePrice.GreaterThan(in.Price)) {
		return apperr.Validation("INVALID_PRODUCT", "sale price must be between 0 and the regular price")
	}
	sizes := make(map[string]bool, len(in.Variants))
	for _, v := range in.Variants {
		key := strings.ToUpper(strings.TrimSpace(v.Size))
		if sizes[key] {
			return apperr.Validation("INVALID_PRODUCT", "each size may only appear once")
		}
		sizes[key] = true
	}
	return nil
}

type Service struct {
	repo       Repository
	categories CategoryLookup
	lowStock   int
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryLookup, lowStockThreshold int) *Service {
	return &Service{repo: repo, categories: categories, lowStock: lowStockThreshold, now: time.Now}
}

// ListQuery is the storefront listing request.
type ListQuery struct {
	FeaturedOnly bool
	CategorySlug string
	Search       string
	Sort         Sort
}

// List returns active products. An unknown category slug yields an empty
// list rather than an error.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Product, error) {
	f := Filter{FeaturedOnly: q.FeaturedOnly, Search: strings.TrimSpace(q.Search), Sort: q.Sort}
	if q.CategorySlug != "" && q.CategorySlug != "all" && s.categories != nil {
		id, err := s.categories.IDBySlug(ctx, q.CategorySlug)
		if apperr.KindOf(err) == apperr.KindNotFound {
			return []Product{}, nil
		}
		if err != nil {
			return nil, apperr.Persistence(err)
		}
		f.CategoryID = id
	}
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

// AdminList includes inactive products.
func (s *Service) AdminList(ctx context.Context, search string) ([]Product, error) {
	out, err := s.repo.List(ctx, Filter{IncludeInactive: true, Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

// GetBySlug serves the storefront; inactive products are hidden.
func (s *Service) GetBySlug(ctx context.Context, productSlug string) (Product, error) {
	p, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return Product{}, mapErr(err)
	}
	if !p.Active {
		return Product{}, mapErr(ErrNotFound)
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	return p, mapErr(err)
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	if err := in.check(); err != nil {
		return Product{}, err
	}
	now := s.now().UTC()
	p := Product{ID: uuid.NewString(), CreatedAt: now}
	s.apply(&p, in, nil, now)
	created, err := s.repo.Create(ctx, p)
	return created, mapErr(err)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	if err := in.check(); err != nil {
		return Product{}, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, mapErr(err)
	}
	owned := make(map[string]bool, len(existing.Variants))
	for _, v := range existing.Variants {
		owned[v.ID] = true
	}
	s.apply(&existing, in, owned, s.now().UTC())
	updated, err := s.repo.Update(ctx, existing)
	return updated, mapErr(err)
}

// apply copies the form onto p. Variant ids not already owned by p are
// replaced with fresh ones.
func (s *Service) apply(p *Product, in Input, owned map[string]bool, now time.Time) {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = slug.Make(in.Slug)
	if p.Slug == "" {
		p.Slug = slug.Make(in.Title)
	}
	p.Description = in.Description
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.Active = in.Active == nil || *in.Active
	p.Featured = in.Featured
	p.Categories = in.Categories
	p.MetaTitle = in.MetaTitle
	p.MetaDescription = in.MetaDescription
	p.UpdatedAt = now

	p.Variants = make([]Variant, 0, len(in.Variants))
	for _, v := range in.Variants {
		if !owned[v.ID] {
			v.ID = uuid.NewString()
		}
		v.ProductID = p.ID
		v.Size = strings.TrimSpace(v.Size)
		v.SKU = strings.TrimSpace(v.SKU)
		p.Variants = append(p.Variants, v)
	}
	p.Images = make([]Image, 0, len(in.Images))
	for i, img := range in.Images {
		p.Images = append(p.Images, Image{ID: uuid.NewString(), URL: img.URL, AltText: img.AltText, Position: i})
	}
}

func (s *Service) SetFlags(ctx context.Context, id string, active, featured *bool) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, mapErr(err)
	}
	if active != nil {
		p.Active = *active
	}
	if featured != nil {
		p.Featured = *featured
	}
	if err := s.repo.SetFlags(ctx, id, p.Active, p.Featured); err != nil {
		return Product{}, mapErr(err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return mapErr(s.repo.Delete(ctx, id))
}

// Inventory lists every variant, or only those at or below the low-stock
// threshold when lowOnly is set.
func (s *Service) Inventory(ctx context.Context, lowOnly bool) ([]InventoryItem, error) {
	var limit *int
	if lowOnly {
		limit = &s.lowStock
	}
	items, err := s.repo.Inventory(ctx, limit)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

func (s *Service) UpdateStock(ctx context.Context, updates []StockUpdate) error {
	if len(updates) == 0 {
		return apperr.Validation("INVALID_STOCK", "no stock updates given")
	}
	for _, u := range updates {
		if u.Stock < 0 {
			return apperr.Validation("INVALID_STOCK", "stock cannot be negative")
		}
	}
	return mapErr(s.repo.UpdateStock(ctx, updates))
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

func (s *Service) LowStockCount(ctx context.Context) (int, error) {
	n, err := s.repo.LowStockCount(ctx, s.lowStock)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("PRODUCT_NOT_FOUND", "product not found")
	case errors.Is(err, ErrVariantNotFound):
		return apperr.NotFound("VARIANT_NOT_FOUND", "variant not found")
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("PRODUCT_EXISTS", "a product with this slug or sku already exists")
	default:
		return apperr.Persistence(err)
	}
}
