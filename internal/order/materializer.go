package order

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/cart"
	"github.com/wichananm65/jersey-shop-backend/internal/pricing"
)

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CartClearer empties the cart an order was placed from.
type CartClearer interface {
	Clear(ctx context.Context, id cart.Identity) error
}

type PlaceRequest struct {
	UserID         string
	Cart           cart.Cart
	Priced         pricing.Priced
	ShippingMethod pricing.ShippingMethod
	PaymentMethod  PaymentMethod
	Address        AddressSnapshot
	PromoCode      string
}

// checkPreconditions runs the checks that must leave the cart untouched
// when they fail. The first failure wins.
func checkPreconditions(c cart.Cart, payment PaymentMethod, addr AddressSnapshot) error {
	if c.IsEmpty() {
		return apperr.Validation("EMPTY_CART", "your cart is empty")
	}
	if err := validate.Struct(addr.Trimmed()); err != nil {
		field := "address"
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return apperr.Validation("MISSING_ADDRESS_FIELD", field+" is required")
	}
	switch payment {
	case PaymentCOD:
		return nil
	case PaymentCard:
		return apperr.Unavailable("NOT_IMPLEMENTED", "card payment is not available yet, please choose cash on delivery")
	default:
		return apperr.Validation("INVALID_PAYMENT_METHOD", "payment method must be cod or card")
	}
}

type Materializer struct {
	repo  Repository
	carts CartClearer
	log   *slog.Logger
	now   func() time.Time
}

func NewMaterializer(repo Repository, carts CartClearer, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{repo: repo, carts: carts, log: logger, now: time.Now}
}

// PlaceOrder turns a priced cart into an order. Header and lines are
// written in one transaction; the cart is cleared only afterwards. A
// failed clear is logged and does not undo the order.
func (m *Materializer) PlaceOrder(ctx context.Context, req PlaceRequest) (Order, error) {
	if err := checkPreconditions(req.Cart, req.PaymentMethod, req.Address); err != nil {
		return Order{}, err
	}

	now := m.now().UTC()
	o := Order{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		Lines:          make([]Line, 0, len(req.Cart.Lines)),
		Subtotal:       req.Priced.Subtotal,
		ShippingCost:   req.Priced.ShippingCost,
		Discount:       req.Priced.Discount,
		Total:          req.Priced.Total,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		Address:        req.Address.Trimmed(),
		PromoCode:      req.PromoCode,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, l := range req.Cart.Lines {
		o.Lines = append(o.Lines, Line{
			ID:        uuid.NewString(),
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Title:     l.Title,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	if err := m.repo.CreateWithLines(ctx, o); err != nil {
		m.log.Error("order not persisted", "user_id", req.UserID, "error", err)
		return Order{}, apperr.Persistence(err)
	}

	if err := m.carts.Clear(ctx, cart.Account(req.UserID)); err != nil {
		m.log.Warn("cart not cleared after checkout", "user_id", req.UserID, "order_id", o.ID, "error", err)
	}
	m.log.Info("order placed", "order_id", o.ID, "user_id", o.UserID, "total", o.Total.StringFixed(2), "lines", len(o.Lines))
	return o, nil
}
