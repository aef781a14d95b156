package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categories holds the optional category reference for each axis a jersey
// is classified along.
type Categories struct {
	TeamID       *string `json:"teamId,omitempty"`
	LeagueID     *string `json:"leagueId,omitempty"`
	CountryID    *string `json:"countryId,omitempty"`
	SeasonID     *string `json:"seasonId,omitempty"`
	JerseyTypeID *string `json:"jerseyTypeId,omitempty"`
}

// Has reports whether id is one of the referenced categories.
func (c Categories) Has(id string) bool {
	for _, ref := range []*string{c.TeamID, c.LeagueID, c.CountryID, c.SeasonID, c.JerseyTypeID} {
		if ref != nil && *ref == id {
			return true
		}
	}
	return false
}

// Variant is a purchasable size of a product.
type Variant struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Size      string `json:"size" validate:"required"`
	SKU       string `json:"sku" validate:"required"`
	Stock     int    `json:"stock" validate:"gte=0"`
}

type Image struct {
	ID       string `json:"id"`
	URL      string `json:"url" validate:"required"`
	AltText  string `json:"altText,omitempty"`
	Position int    `json:"position"`
}

// Product maps to the `products` table; variants and images are loaded
// alongside it.
type Product struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"salePrice,omitempty"`
	Active          bool             `json:"isActive"`
	Featured        bool             `json:"isFeatured"`
	Categories      Categories       `json:"categories"`
	MetaTitle       string           `json:"metaTitle,omitempty"`
	MetaDescription string           `json:"metaDescription,omitempty"`
	Variants        []Variant        `json:"variants"`
	Images          []Image          `json:"images"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// UnitPrice is the price a shopper pays: the sale price when one is set.
func (p Product) UnitPrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// CoverImage is the URL of the lowest-positioned image, or "".
func (p Product) CoverImage() string {
	url, best := "", -1
	for _, img := range p.Images {
		if best == -1 || img.Position < best {
			url, best = img.URL, img.Position
		}
	}
	return url
}

func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// InventoryItem is one variant row of the admin stock sheet.
type InventoryItem struct {
	VariantID    string `json:"variantId"`
	ProductID    string `json:"productId"`
	ProductTitle string `json:"productTitle"`
	ProductSlug  string `json:"productSlug"`
	Size         string `json:"size"`
	SKU          string `json:"sku"`
	Stock        int    `json:"stock"`
}

type StockUpdate struct {
	VariantID string `json:"variantId" validate:"required"`
	Stock     int    `json:"stock" validate:"gte=0"`
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortFeatured  Sort = "featured"
)

// Filter narrows a product listing. Zero value lists active products,
// newest first.
type Filter struct {
	IncludeInactive bool
	FeaturedOnly    bool
	CategoryID      string
	Search          string
	Sort            Sort
}
