package category

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCategoryRoutes(t *testing.T) {
	h := NewHandler(NewService(NewInMemoryRepository(seedCategories())))
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterAdminRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/categories?type=team&limit=abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var items []Category
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(items))
	}

	req := httptest.NewRequest("POST", "/api/v1/admin/categories", strings.NewReader(`{"name":"Home","type":"jersey_type"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/admin/categories", strings.NewReader(`{"name":"Home"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without type, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/categories/nope", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}
