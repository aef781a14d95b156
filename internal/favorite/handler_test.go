package favorite

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithFavoriteHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, userID, body string) (int, []Favorite) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/v1/favorites", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var favs []Favorite
	if res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(&favs); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
	}
	return res.StatusCode, favs
}

func TestFavoriteRoutes(t *testing.T) {
	svc, _ := seeded()
	app := makeAppWithFavoriteHandler(NewHandler(svc))

	if code, _ := doJSON(t, app, "GET", "", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}

	code, favs := doJSON(t, app, "POST", "u-1", `{"productId":"p1"}`)
	if code != fiber.StatusCreated || len(favs) != 1 || favs[0].Slug != "arsenal-24-25-home" {
		t.Fatalf("unexpected add response %d %+v", code, favs)
	}

	if code, _ := doJSON(t, app, "POST", "u-1", `{"productId":"p1"}`); code != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", code)
	}
	if code, _ := doJSON(t, app, "POST", "u-1", `{}`); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing productId, got %d", code)
	}

	code, favs = doJSON(t, app, "DELETE", "u-1", `{"productId":"p1"}`)
	if code != fiber.StatusOK || len(favs) != 0 {
		t.Fatalf("unexpected remove response %d %+v", code, favs)
	}
	if code, _ := doJSON(t, app, "DELETE", "u-1", `{"productId":"p1"}`); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 removing a missing favorite, got %d", code)
	}
}
