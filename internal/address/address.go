package address

import (
	"time"

	"github.com/wichananm65/jersey-shop-backend/internal/order"
)

// Address is one saved shipping address. At most one per user is the
// default.
type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	FullName   string    `json:"fullName" validate:"required"`
	Phone      string    `json:"phone,omitempty"`
	Line1      string    `json:"addressLine1" validate:"required"`
	Line2      string    `json:"addressLine2,omitempty"`
	City       string    `json:"city" validate:"required"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postalCode" validate:"required"`
	Country    string    `json:"country" validate:"required"`
	Label      string    `json:"label,omitempty"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Snapshot freezes the address for an order.
func (a Address) Snapshot() order.AddressSnapshot {
	return order.AddressSnapshot{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}.Trimmed()
}

func fromSnapshot(s order.AddressSnapshot) Address {
	return Address{
		FullName:   s.FullName,
		Phone:      s.Phone,
		Line1:      s.Line1,
		Line2:      s.Line2,
		City:       s.City,
		State:      s.State,
		PostalCode: s.PostalCode,
		Country:    s.Country,
	}
}
