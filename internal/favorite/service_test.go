package favorite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/product"
)

func seeded() (*Service, *product.InMemoryRepository) {
	sale := decimal.RequireFromString("59.99")
	products := product.NewInMemoryRepository([]product.Product{
		{ID: "p1", Title: "Arsenal 24/25 Home", Slug: "arsenal-24-25-home", Price: decimal.RequireFromString("79.99"), SalePrice: &sale, Active: true,
			Images: []product.Image{{ID: "i1", URL: "/img/ars-front.jpg"}}},
		{ID: "p2", Title: "Juventus 24/25 Away", Slug: "juventus-24-25-away", Price: decimal.RequireFromString("69.99"), Active: true},
		{ID: "p3", Title: "Retro Brazil 1970", Slug: "retro-brazil-1970", Price: decimal.RequireFromString("99"), Active: false},
	})
	svc := NewService(NewInMemoryRepository(), product.NewService(products, nil, 5))
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		t0 = t0.Add(time.Minute)
		return t0
	}
	return svc, products
}

func TestAddAndList(t *testing.T) {
	svc, _ := seeded()
	ctx := context.Background()

	if err := svc.AddFavorite(ctx, "u-1", "p2"); err != nil {
		t.Fatalf("add p2: %v", err)
	}
	if err := svc.AddFavorite(ctx, "u-1", "p1"); err != nil {
		t.Fatalf("add p1: %v", err)
	}

	favs, err := svc.GetFavorites(ctx, "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(favs) != 2 || favs[0].ProductID != "p2" || favs[1].ProductID != "p1" {
		t.Fatalf("expected p2 then p1, got %+v", favs)
	}
	if !favs[1].UnitPrice.Equal(decimal.RequireFromString("59.99")) || favs[1].Image != "/img/ars-front.jpg" {
		t.Fatalf("unexpected storefront view %+v", favs[1])
	}

	other, _ := svc.GetFavorites(ctx, "u-2")
	if len(other) != 0 {
		t.Fatalf("favorites leaked across users: %+v", other)
	}
}

func TestAddFavorite_Errors(t *testing.T) {
	svc, _ := seeded()
	ctx := context.Background()

	if err := svc.AddFavorite(ctx, "u-1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AddFavorite(ctx, "u-1", "p1"); apperr.CodeOf(err) != "ALREADY_FAVORITE" {
		t.Fatalf("expected ALREADY_FAVORITE, got %v", err)
	}
	if err := svc.AddFavorite(ctx, "u-1", "p3"); apperr.CodeOf(err) != "PRODUCT_NOT_FOUND" {
		t.Fatalf("inactive product should not be saved, got %v", err)
	}
	if err := svc.AddFavorite(ctx, "u-1", "nope"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveFavorite(t *testing.T) {
	svc, _ := seeded()
	ctx := context.Background()
	_ = svc.AddFavorite(ctx, "u-1", "p1")

	if err := svc.RemoveFavorite(ctx, "u-1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RemoveFavorite(ctx, "u-1", "p1"); apperr.CodeOf(err) != "NOT_FAVORITE" {
		t.Fatalf("expected NOT_FAVORITE, got %v", err)
	}
}

func TestGetFavorites_SkipsHiddenAndDeleted(t *testing.T) {
	svc, products := seeded()
	ctx := context.Background()
	_ = svc.AddFavorite(ctx, "u-1", "p1")
	_ = svc.AddFavorite(ctx, "u-1", "p2")

	if err := products.SetFlags(ctx, "p1", false, false); err != nil {
		t.Fatalf("set flags: %v", err)
	}
	if err := products.Delete(ctx, "p2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	favs, err := svc.GetFavorites(ctx, "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(favs) != 0 {
		t.Fatalf("expected hidden and deleted products skipped, got %+v", favs)
	}
}
