package product

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func makeAppWithProductHandler(h *Handler, admin bool) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	if admin {
		h.RegisterAdminRoutes(app)
	}
	return app
}

func TestProductHandler_PublicDoesNotRegisterAdminRoutes(t *testing.T) {
	svc, _ := newSeededService()
	app := makeAppWithProductHandler(NewHandler(svc), false)

	for _, grp := range app.Stack() {
		for _, r := range grp {
			if strings.HasPrefix(r.Path, "/api/v1/admin") {
				t.Fatalf("public registration must not mount %s", r.Path)
			}
		}
	}
}

func TestGetProducts(t *testing.T) {
	svc, _ := newSeededService()
	app := makeAppWithProductHandler(NewHandler(svc), false)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products?featured=true", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var products []Product
	if err := json.NewDecoder(res.Body).Decode(&products); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "arsenal-24-25-home" {
		t.Fatalf("unexpected products %+v", products)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products?category=arsenal", nil))
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "ARS-H-M") || strings.Contains(string(b), "JUV-A-L") {
		t.Fatalf("unexpected category listing: %s", string(b))
	}
}

func TestGetProduct_BySlug(t *testing.T) {
	svc, _ := newSeededService()
	app := makeAppWithProductHandler(NewHandler(svc), false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/juventus-24-25-away", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/retro-brazil-1970", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for inactive product, got %d", res.StatusCode)
	}
}

func TestAdminCreateAndStock(t *testing.T) {
	svc, _ := newSeededService()
	app := makeAppWithProductHandler(NewHandler(svc), true)

	body := `{"title":"Inter 24/25 Third","price":"74.50","variants":[{"size":"M","sku":"INT-T-M","stock":4}]}`
	req := httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 201, got %d: %s", res.StatusCode, string(b))
	}
	var created Product
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created.Slug != "inter-24-25-third" || len(created.Variants) != 1 {
		t.Fatalf("unexpected product %+v", created)
	}

	missingSKU := `{"title":"Bad","price":"10","variants":[{"size":"M","stock":1}]}`
	req = httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(missingSKU))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing sku, got %d", res.StatusCode)
	}

	stock := `{"updates":[{"variantId":"` + created.Variants[0].ID + `","stock":0}]}`
	req = httptest.NewRequest("PATCH", "/api/v1/admin/inventory", strings.NewReader(stock))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on stock update, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/admin/inventory/low-stock", nil))
	var low []InventoryItem
	if err := json.NewDecoder(res.Body).Decode(&low); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(low) != 3 {
		t.Fatalf("expected 3 low stock variants, got %d", len(low))
	}
}
