package recommended

import "github.com/shopspring/decimal"

// Item is the product card shown in the storefront's featured strip.
type Item struct {
	ProductID string           `json:"productId"`
	Title     string           `json:"title"`
	Slug      string           `json:"slug"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
	Image     string           `json:"image,omitempty"`
}
