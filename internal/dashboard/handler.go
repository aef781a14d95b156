package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterAdminRoutes expects r to already require an admin token.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/api/v1/admin/dashboard", h.getStats)
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	st, err := h.service.Stats(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(st)
}
