package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/cart"
	"github.com/wichananm65/jersey-shop-backend/internal/pricing"
	"github.com/wichananm65/jersey-shop-backend/internal/promo"
)

type CartSource interface {
	CartClearer
	Get(ctx context.Context, id cart.Identity) (cart.Cart, error)
}

type PromoValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (promo.Result, error)
}

// AddressBook resolves saved addresses and stores new ones from checkout.
type AddressBook interface {
	Snapshot(ctx context.Context, userID, addressID string) (AddressSnapshot, error)
	SaveSnapshot(ctx context.Context, userID string, snap AddressSnapshot) error
}

// Checkout prices the current cart and places orders from it.
type Checkout struct {
	carts        CartSource
	calc         *pricing.Calculator
	promos       PromoValidator
	addresses    AddressBook
	materializer *Materializer
	log          *slog.Logger
	now          func() time.Time
}

func NewCheckout(carts CartSource, calc *pricing.Calculator, promos PromoValidator, addresses AddressBook, m *Materializer, logger *slog.Logger) *Checkout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checkout{carts: carts, calc: calc, promos: promos, addresses: addresses, materializer: m, log: logger, now: time.Now}
}

type Quote struct {
	pricing.Priced
	ShippingMethod pricing.ShippingMethod `json:"shippingMethod"`
	PromoCode      string                 `json:"promoCode,omitempty"`
	ItemCount      int                    `json:"itemCount"`
}

func (c *Checkout) price(ctx context.Context, crt cart.Cart, method, code string) (Quote, error) {
	m, err := pricing.ParseShippingMethod(method)
	if err != nil {
		return Quote{}, err
	}

	discount := decimal.Zero
	applied := ""
	if code != "" {
		res, err := c.promos.Validate(ctx, code, pricing.Subtotal(crt.Lines), c.now())
		if err != nil {
			return Quote{}, err
		}
		if !res.OK {
			return Quote{}, res.Err()
		}
		discount = res.DiscountAmount.Round(2)
		applied = res.Code
	}

	priced, err := c.calc.Quote(crt.Lines, m, discount)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Priced: priced, ShippingMethod: m, PromoCode: applied, ItemCount: crt.ItemCount()}, nil
}

// Quote prices the caller's cart without side effects.
func (c *Checkout) Quote(ctx context.Context, id cart.Identity, method, code string) (Quote, error) {
	crt, err := c.carts.Get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	return c.price(ctx, crt, method, code)
}

type PlaceInput struct {
	ShippingMethod string           `json:"shippingMethod"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	PromoCode      string           `json:"promoCode"`
	AddressID      string           `json:"addressId"`
	Address        *AddressSnapshot `json:"address"`
	SaveAddress    bool             `json:"saveAddress"`
}

// Place checks preconditions before touching promos or pricing so a
// rejected checkout never alters the cart.
func (c *Checkout) Place(ctx context.Context, userID string, in PlaceInput) (Order, error) {
	crt, err := c.carts.Get(ctx, cart.Account(userID))
	if err != nil {
		return Order{}, err
	}

	var addr AddressSnapshot
	switch {
	case in.AddressID != "" && c.addresses != nil:
		addr, err = c.addresses.Snapshot(ctx, userID, in.AddressID)
		if err != nil {
			return Order{}, err
		}
	case in.Address != nil:
		addr = in.Address.Trimmed()
	}

	if err := checkPreconditions(crt, in.PaymentMethod, addr); err != nil {
		return Order{}, err
	}

	q, err := c.price(ctx, crt, in.ShippingMethod, in.PromoCode)
	if err != nil {
		return Order{}, err
	}

	o, err := c.materializer.PlaceOrder(ctx, PlaceRequest{
		UserID:         userID,
		Cart:           crt,
		Priced:         q.Priced,
		ShippingMethod: q.ShippingMethod,
		PaymentMethod:  in.PaymentMethod,
		Address:        addr,
		PromoCode:      q.PromoCode,
	})
	if err != nil {
		return Order{}, err
	}

	if in.SaveAddress && in.AddressID == "" && c.addresses != nil {
		if err := c.addresses.SaveSnapshot(ctx, userID, addr); err != nil {
			c.log.Warn("checkout address not saved", "user_id", userID, "error", err)
		}
	}
	return o, nil
}
