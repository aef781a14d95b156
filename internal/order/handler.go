package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/cart"
	"github.com/wichananm65/jersey-shop-backend/internal/user"
)

// Handler exposes checkout, order history and the admin order workflow.
type Handler struct {
	service  *Service
	checkout *Checkout
}

func NewHandler(s *Service, checkout *Checkout) *Handler {
	return &Handler{service: s, checkout: checkout}
}

// RegisterPublicRoutes mounts the quote, which guests may call too.
func (h *Handler) RegisterPublicRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/api/v1/checkout/quote", auth, h.quote)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/api/v1/checkout", h.placeOrder)
	r.Get("/api/v1/orders", h.getOrders)
	r.Get("/api/v1/orders/:id", h.getOrder)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/api/v1/admin/orders", h.adminList)
	r.Patch("/api/v1/admin/orders/:id/status", h.adminSetStatus)
}

type quoteRequest struct {
	ShippingMethod string `json:"shippingMethod"`
	PromoCode      string `json:"promoCode"`
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) quote(c *fiber.Ctx) error {
	id, err := cart.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(quoteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	q, err := h.checkout.Quote(c.UserContext(), id, payload.ShippingMethod, payload.PromoCode)
	if err != nil {
		return apperr.Respond(c, err)
	}
	q.Priced = q.Priced.Round2()
	return c.JSON(q)
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(PlaceInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	o, err := h.checkout.Place(c.UserContext(), userID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListMine(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

// orderParam reads :id. Order ids are uuids, so anything else cannot exist.
func orderParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	}
	return id, nil
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orderID, err := orderParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	o, err := h.service.GetMine(c.UserContext(), userID, orderID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) adminList(c *fiber.Ctx) error {
	orders, err := h.service.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) adminSetStatus(c *fiber.Ctx) error {
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	orderID, err := orderParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	o, err := h.service.SetStatus(c.UserContext(), orderID, payload.Status)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}
