package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/pricing"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// fulfilment is the forward path; cancelled sits outside it.
var fulfilment = []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}

func (s Status) step() int {
	for i, st := range fulfilment {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool {
	return s == StatusCancelled || s.step() >= 0
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition allows moving forward along the fulfilment path (steps may
// be skipped) and cancelling anything not yet terminal.
func (s Status) CanTransition(to Status) bool {
	if !s.Valid() || !to.Valid() || s.IsTerminal() || s == to {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return to.step() > s.step()
}

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

// AddressSnapshot is copied into the order so later address book edits do
// not change it.
type AddressSnapshot struct {
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"addressLine1" validate:"required"`
	Line2      string `json:"addressLine2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

func (a AddressSnapshot) Trimmed() AddressSnapshot {
	return AddressSnapshot{
		FullName:   strings.TrimSpace(a.FullName),
		Phone:      strings.TrimSpace(a.Phone),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

// Value stores the snapshot as JSONB.
func (a AddressSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AddressSnapshot) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = AddressSnapshot{}
		return nil
	default:
		return fmt.Errorf("address snapshot: unsupported type %T", src)
	}
}

// Line is frozen at purchase time; catalog edits never reach it.
type Line struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	Title     string          `json:"productTitle"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

type Order struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"userId"`
	Lines          []Line                 `json:"items"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	ShippingCost   decimal.Decimal        `json:"shippingCost"`
	Discount       decimal.Decimal        `json:"discount"`
	Total          decimal.Decimal        `json:"total"`
	ShippingMethod pricing.ShippingMethod `json:"shippingMethod"`
	PaymentMethod  PaymentMethod          `json:"paymentMethod"`
	Address        AddressSnapshot        `json:"addressSnapshot"`
	PromoCode      string                 `json:"promoCodeUsed,omitempty"`
	Status         Status                 `json:"status"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// Summary feeds the admin dashboard. Revenue excludes cancelled orders.
type Summary struct {
	Count   int             `json:"orderCount"`
	Revenue decimal.Decimal `json:"revenue"`
}
