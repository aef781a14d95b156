package address

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithAddressHandler(a *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := utils.CopyString(c.Get("X-User-ID")); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	a.RegisterProtectedRoutes(app)
	return app
}

func TestAddressRoute(t *testing.T) {
	svc, _ := seeded()
	app := makeAppWithAddressHandler(NewHandler(svc))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/address"] || !routes["/api/v1/address/default"] {
		t.Fatalf("expected address routes registered")
	}

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/address", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/v1/address", nil)
	req.Header.Set("X-User-ID", "u-1")
	res, _ = app.Test(req)
	var addrs []Address
	if err := json.NewDecoder(res.Body).Decode(&addrs); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addrs))
	}

	body := `{"fullName":"Sam Doe","addressLine1":"9 New St","city":"Hull","postalCode":"HU1 1AA","country":"GB"}`
	req = httptest.NewRequest("POST", "/api/v1/address", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u-1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/address", strings.NewReader(`{"fullName":"Sam"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u-1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", res.StatusCode)
	}

	upd := `{"addressId":"a-2","fullName":"Sam Doe","addressLine1":"2 Work Rd","city":"York","postalCode":"YO1 1AA","country":"GB","isDefault":true}`
	req = httptest.NewRequest("PATCH", "/api/v1/address", strings.NewReader(upd))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u-1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/address", strings.NewReader(`{"addressId":"a-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u-2")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting another user's address, got %d", res.StatusCode)
	}
}
