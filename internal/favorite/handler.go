package favorite

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/user"
)

// Handler keeps favorite routing out of the user handler.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/api/v1/favorites", h.getFavorites)
	r.Post("/api/v1/favorites", h.addFavorite)
	r.Delete("/api/v1/favorites", h.removeFavorite)
}

type favoriteRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) addFavorite(c *fiber.Ctx) error {
	payload := new(favoriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.AddFavorite(c.UserContext(), userID, payload.ProductID); err != nil {
		return apperr.Respond(c, err)
	}
	return h.list(c, userID, fiber.StatusCreated)
}

func (h *Handler) removeFavorite(c *fiber.Ctx) error {
	payload := new(favoriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.RemoveFavorite(c.UserContext(), userID, payload.ProductID); err != nil {
		return apperr.Respond(c, err)
	}
	return h.list(c, userID, fiber.StatusOK)
}

func (h *Handler) getFavorites(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return h.list(c, userID, fiber.StatusOK)
}

func (h *Handler) list(c *fiber.Ctx, userID string, status int) error {
	favs, err := h.service.GetFavorites(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(status).JSON(favs)
}
