package promo

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

var validate = validator.New()

type Handler struct {
	service   *Service
	validator *Validator
	now       func() time.Time
}

func NewHandler(service *Service, v *Validator) *Handler {
	return &Handler{service: service, validator: v, now: time.Now}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/api/v1/promos/validate", h.validate)
}

// RegisterAdminRoutes expects r to already require an admin token.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/api/v1/admin/promos", h.list)
	r.Post("/api/v1/admin/promos", h.create)
	r.Put("/api/v1/admin/promos/:id", h.update)
	r.Delete("/api/v1/admin/promos/:id", h.delete)
}

type validateRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (h *Handler) validate(c *fiber.Ctx) error {
	payload := new(validateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	res, err := h.validator.Validate(c.UserContext(), payload.Code, payload.Subtotal, h.now())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) list(c *fiber.Ctx) error {
	promos, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(promos)
}

func (h *Handler) parseInput(c *fiber.Ctx) (Input, error) {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return Input{}, apperr.Validation("INVALID_PROMO", err.Error())
	}
	if err := validate.Struct(in); err != nil {
		return Input{}, apperr.Validation("INVALID_PROMO", "code and type (percentage or fixed) are required")
	}
	return in, nil
}

func (h *Handler) create(c *fiber.Ctx) error {
	in, err := h.parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	p, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) update(c *fiber.Ctx) error {
	in, err := h.parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	p, err := h.service.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "promo code deleted"})
}
