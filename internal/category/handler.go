package category

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

var validate = validator.New()

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/categories", h.getCategories)
}

// RegisterAdminRoutes expects r to already require an admin token.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Post("/api/v1/admin/categories", h.createCategory)
	r.Put("/api/v1/admin/categories/:id", h.updateCategory)
	r.Delete("/api/v1/admin/categories/:id", h.deleteCategory)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	limit := 100
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	items, err := h.service.List(c.UserContext(), Type(c.Query("type")), limit)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func parseInput(c *fiber.Ctx) (Input, error) {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return Input{}, apperr.Validation("INVALID_CATEGORY", err.Error())
	}
	if err := validate.Struct(in); err != nil {
		return Input{}, apperr.Validation("INVALID_CATEGORY", "name and type are required")
	}
	return in, nil
}

func (h *Handler) createCategory(c *fiber.Ctx) error {
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	cat, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handler) updateCategory(c *fiber.Ctx) error {
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	cat, err := h.service.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(cat)
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "category deleted"})
}
