package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/cart"
	"github.com/wichananm65/jersey-shop-backend/internal/pricing"
	"github.com/wichananm65/jersey-shop-backend/internal/promo"
)

type fakeCarts struct {
	carts    map[string]cart.Cart
	clearErr error
}

func (f *fakeCarts) Get(_ context.Context, id cart.Identity) (cart.Cart, error) {
	c, ok := f.carts[id.ID()]
	if !ok {
		return cart.Cart{Lines: []cart.Line{}}, nil
	}
	return c.Clone(), nil
}

func (f *fakeCarts) Clear(_ context.Context, id cart.Identity) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.carts, id.ID())
	return nil
}

type failingRepo struct {
	*InMemoryRepository
}

func (failingRepo) CreateWithLines(context.Context, Order) error {
	return errors.New("insert order lines: connection reset")
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validAddress() AddressSnapshot {
	return AddressSnapshot{FullName: "Sam Doe", Line1: "12 High St", City: "Leeds", PostalCode: "LS1 1AA", Country: "GB"}
}

func cartOfTwo() cart.Cart {
	return cart.Cart{ID: "c-1", UserID: "u-1", Lines: []cart.Line{
		{VariantID: "v1", ProductID: "p1", Title: "Home Kit", Size: "M", UnitPrice: d("40.00"), Quantity: 2},
	}}
}

func newCheckoutFixture(repo Repository, carts *fakeCarts, promos []promo.Promotion) *Checkout {
	m := NewMaterializer(repo, carts, nil)
	calc := pricing.NewCalculator(pricing.DefaultShippingRules())
	return NewCheckout(carts, calc, promo.NewValidator(promo.NewInMemoryRepository(promos)), nil, m, nil)
}

func TestPlaceOrder_CardIsUnavailableAndCartKept(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": cartOfTwo()}}
	m := NewMaterializer(repo, carts, nil)

	_, err := m.PlaceOrder(context.Background(), PlaceRequest{
		UserID: "u-1", Cart: cartOfTwo(), PaymentMethod: PaymentCard, Address: validAddress(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	assert.Equal(t, "NOT_IMPLEMENTED", apperr.CodeOf(err))

	assert.Equal(t, 2, carts.carts["u-1"].ItemCount())
	orders, _ := repo.List(context.Background(), "")
	assert.Empty(t, orders)
}

func TestPlaceOrder_MissingCityKeepsCartAndCreatesNoOrder(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": cartOfTwo()}}
	m := NewMaterializer(repo, carts, nil)

	addr := validAddress()
	addr.City = "   "
	_, err := m.PlaceOrder(context.Background(), PlaceRequest{
		UserID: "u-1", Cart: cartOfTwo(), PaymentMethod: PaymentCOD, Address: addr,
	})
	require.Error(t, err)
	assert.Equal(t, "MISSING_ADDRESS_FIELD", apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "city")

	assert.Equal(t, 2, carts.carts["u-1"].ItemCount())
	orders, _ := repo.List(context.Background(), "")
	assert.Empty(t, orders)
}

func TestPlaceOrder_EmptyCartFirst(t *testing.T) {
	m := NewMaterializer(NewInMemoryRepository(nil), &fakeCarts{carts: map[string]cart.Cart{}}, nil)

	_, err := m.PlaceOrder(context.Background(), PlaceRequest{UserID: "u-1", PaymentMethod: PaymentCard})
	assert.Equal(t, "EMPTY_CART", apperr.CodeOf(err))
}

func TestPlaceOrder_PersistsSnapshotAndClearsCart(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": cartOfTwo()}}
	m := NewMaterializer(repo, carts, nil)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	priced := pricing.Priced{Subtotal: d("80"), ShippingCost: d("9.99"), Discount: d("10"), Total: d("79.99")}
	o, err := m.PlaceOrder(context.Background(), PlaceRequest{
		UserID: "u-1", Cart: cartOfTwo(), Priced: priced, ShippingMethod: pricing.ShippingStandard,
		PaymentMethod: PaymentCOD, Address: validAddress(), PromoCode: "FIXED10",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.Total.Equal(d("79.99")))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "Home Kit", o.Lines[0].Title)

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "FIXED10", stored.PromoCode)
	assert.Len(t, stored.Lines, 1)

	_, still := carts.carts["u-1"]
	assert.False(t, still)
}

func TestPlaceOrder_PersistenceFailureKeepsCart(t *testing.T) {
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": cartOfTwo()}}
	m := NewMaterializer(failingRepo{NewInMemoryRepository(nil)}, carts, nil)

	_, err := m.PlaceOrder(context.Background(), PlaceRequest{
		UserID: "u-1", Cart: cartOfTwo(), PaymentMethod: PaymentCOD, Address: validAddress(),
	})
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	assert.Equal(t, 2, carts.carts["u-1"].ItemCount())
}

func TestPlaceOrder_ClearFailureStillReturnsOrder(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": cartOfTwo()}, clearErr: errors.New("redis down")}
	m := NewMaterializer(repo, carts, nil)

	o, err := m.PlaceOrder(context.Background(), PlaceRequest{
		UserID: "u-1", Cart: cartOfTwo(), PaymentMethod: PaymentCOD, Address: validAddress(),
	})
	require.NoError(t, err)
	_, err = repo.GetByID(context.Background(), o.ID)
	assert.NoError(t, err)
}

func TestCheckout_PlaceWithPromo(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": cartOfTwo()}}
	minOrder := d("50")
	co := newCheckoutFixture(repo, carts, []promo.Promotion{
		{ID: "p1", Code: "FIXED10", Kind: promo.KindFixed, Value: d("10"), MinOrder: &minOrder, Active: true},
	})

	addr := validAddress()
	o, err := co.Place(context.Background(), "u-1", PlaceInput{
		ShippingMethod: "standard", PaymentMethod: PaymentCOD, PromoCode: " fixed10", Address: &addr,
	})
	require.NoError(t, err)
	assert.True(t, o.Subtotal.Equal(d("80")))
	assert.True(t, o.Discount.Equal(d("10")))
	assert.True(t, o.ShippingCost.Equal(d("9.99")))
	assert.True(t, o.Total.Equal(d("79.99")))
	assert.Equal(t, "FIXED10", o.PromoCode)
}

func TestCheckout_InvalidPromoBlocksOrder(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": cartOfTwo()}}
	co := newCheckoutFixture(repo, carts, nil)

	addr := validAddress()
	_, err := co.Place(context.Background(), "u-1", PlaceInput{PaymentMethod: PaymentCOD, PromoCode: "BOGUS", Address: &addr})
	assert.Equal(t, "NOT_FOUND_OR_INACTIVE", apperr.CodeOf(err))
	assert.Equal(t, 2, carts.carts["u-1"].ItemCount())
}

func TestCheckout_QuoteForGuest(t *testing.T) {
	carts := &fakeCarts{carts: map[string]cart.Cart{"g-1": cartOfTwo()}}
	co := newCheckoutFixture(NewInMemoryRepository(nil), carts, []promo.Promotion{
		{ID: "p2", Code: "SAVE20", Kind: promo.KindPercentage, Value: d("20"), Active: true},
	})

	q, err := co.Quote(context.Background(), cart.Guest("g-1"), "", "save20")
	require.NoError(t, err)
	assert.True(t, q.Total.Equal(d("73.99")))
	assert.Equal(t, pricing.ShippingStandard, q.ShippingMethod)
	assert.Equal(t, 2, q.ItemCount)
}

func TestCheckout_PercentagePromoStoresCentExactAmounts(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	carts := &fakeCarts{carts: map[string]cart.Cart{"u-1": {ID: "c-1", UserID: "u-1", Lines: []cart.Line{
		{VariantID: "v1", ProductID: "p1", Title: "Away Kit", Size: "L", UnitPrice: d("89.90"), Quantity: 1},
	}}}}
	co := newCheckoutFixture(repo, carts, []promo.Promotion{
		{ID: "p3", Code: "SAVE15", Kind: promo.KindPercentage, Value: d("15"), Active: true},
	})

	addr := validAddress()
	o, err := co.Place(context.Background(), "u-1", PlaceInput{
		ShippingMethod: "standard", PaymentMethod: PaymentCOD, PromoCode: "SAVE15", Address: &addr,
	})
	require.NoError(t, err)
	assert.Equal(t, "13.49", o.Discount.String())
	assert.True(t, o.Total.Equal(d("86.40")), o.Total.String())
	assert.True(t, o.Total.Equal(o.Subtotal.Sub(o.Discount).Add(o.ShippingCost)))

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(o.Total))
	assert.True(t, stored.Discount.Equal(o.Discount))
}
