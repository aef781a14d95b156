package promo

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

// Promotion codes are stored uppercase. Orders keep the code string, not
// a reference, so edits never change a placed order.
type Promotion struct {
	ID        string           `json:"id"`
	Code      string           `json:"code"`
	Kind      Kind             `json:"type"`
	Value     decimal.Decimal  `json:"value"`
	MinOrder  *decimal.Decimal `json:"minOrder,omitempty"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
	Active    bool             `json:"isActive"`
	CreatedAt time.Time        `json:"createdAt"`
}

const (
	ReasonNotFoundOrInactive = "NOT_FOUND_OR_INACTIVE"
	ReasonExpired            = "EXPIRED"
	ReasonBelowMinimum       = "BELOW_MINIMUM"
)

var reasonMessages = map[string]string{
	ReasonNotFoundOrInactive: "this promo code is not valid",
	ReasonExpired:            "this promo code has expired",
	ReasonBelowMinimum:       "your order does not reach the minimum for this promo code",
}

type Result struct {
	OK             bool            `json:"ok"`
	Code           string          `json:"code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Reason         string          `json:"reason,omitempty"`
}

// Err converts a rejected result into a validation error.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return apperr.Validation(r.Reason, reasonMessages[r.Reason])
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate applies the checks in order and stops at the first failure.
// p is nil when no promotion matched the code.
func Evaluate(p *Promotion, subtotal decimal.Decimal, now time.Time) Result {
	if p == nil || !p.Active {
		return Result{Reason: ReasonNotFoundOrInactive}
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return Result{Code: p.Code, Reason: ReasonExpired}
	}
	if p.MinOrder != nil && subtotal.LessThan(*p.MinOrder) {
		return Result{Code: p.Code, Reason: ReasonBelowMinimum}
	}

	var raw decimal.Decimal
	switch p.Kind {
	case KindPercentage:
		raw = subtotal.Mul(p.Value).Div(decimal.NewFromInt(100))
	case KindFixed:
		raw = p.Value
	}
	amount := decimal.Min(subtotal, raw)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return Result{OK: true, Code: p.Code, DiscountAmount: amount}
}
