// Package pricing turns cart lines into a priced order.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/cart"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func ParseShippingMethod(s string) (ShippingMethod, error) {
	switch m := ShippingMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case ShippingStandard, ShippingExpress:
		return m, nil
	case "":
		return ShippingStandard, nil
	default:
		return "", apperr.Validation("INVALID_SHIPPING_METHOD", "shipping method must be standard or express")
	}
}

// ShippingRules: standard is free at or above FreeThreshold, express is flat.
type ShippingRules struct {
	FreeThreshold decimal.Decimal
	StandardPrice decimal.Decimal
	ExpressPrice  decimal.Decimal
}

func DefaultShippingRules() ShippingRules {
	return ShippingRules{
		FreeThreshold: decimal.NewFromInt(150),
		StandardPrice: decimal.RequireFromString("9.99"),
		ExpressPrice:  decimal.RequireFromString("15.00"),
	}
}

func (r ShippingRules) Cost(method ShippingMethod, subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch method {
	case ShippingStandard:
		if subtotal.GreaterThanOrEqual(r.FreeThreshold) {
			return decimal.Zero, nil
		}
		return r.StandardPrice, nil
	case ShippingExpress:
		return r.ExpressPrice, nil
	default:
		return decimal.Zero, apperr.Validation("INVALID_SHIPPING_METHOD", "shipping method must be standard or express")
	}
}

// Priced is derived from a cart and never stored on its own.
type Priced struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

type Calculator struct {
	rules ShippingRules
}

func NewCalculator(rules ShippingRules) *Calculator {
	return &Calculator{rules: rules}
}

func Subtotal(lines []cart.Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount())
	}
	return sum
}

// Quote prices lines without rounding the sums. discount is rounded to
// cents and clamped to [0, subtotal] so total is built from the same parts
// that are stored and shown.
func (c *Calculator) Quote(lines []cart.Line, method ShippingMethod, discount decimal.Decimal) (Priced, error) {
	subtotal := Subtotal(lines)
	shipping, err := c.rules.Cost(method, subtotal)
	if err != nil {
		return Priced{}, err
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	discount = decimal.Min(discount.Round(2), subtotal)

	total := subtotal.Sub(discount).Add(shipping)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Priced{Subtotal: subtotal, ShippingCost: shipping, Discount: discount, Total: total}, nil
}

// Round2 is applied only when values leave the service.
func (p Priced) Round2() Priced {
	return Priced{
		Subtotal:     p.Subtotal.Round(2),
		ShippingCost: p.ShippingCost.Round(2),
		Discount:     p.Discount.Round(2),
		Total:        p.Total.Round(2),
	}
}
