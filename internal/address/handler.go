package address

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/user"
)

// Handler delegates address operations to the address service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/api/v1/address", h.getAddresses)
	r.Post("/api/v1/address", h.addAddress)
	r.Patch("/api/v1/address", h.updateAddress)
	r.Patch("/api/v1/address/default", h.setDefault)
	r.Delete("/api/v1/address", h.deleteAddress)
}

type addressUpdateRequest struct {
	Address
	AddressID string `json:"addressId"`
}

type addressIDRequest struct {
	AddressID string `json:"addressId"`
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	addrs, err := h.service.GetAddresses(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(addrs)
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(Address)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	addr, err := h.service.AddAddress(c.UserContext(), userID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addressUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.AddressID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid addressId"})
	}
	addr, err := h.service.UpdateAddress(c.UserContext(), userID, payload.AddressID, payload.Address)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(addr)
}

func (h *Handler) setDefault(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addressIDRequest)
	if err := c.BodyParser(payload); err != nil || payload.AddressID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid addressId"})
	}
	if err := h.service.SetDefault(c.UserContext(), userID, payload.AddressID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addressIDRequest)
	if err := c.BodyParser(payload); err != nil || payload.AddressID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid addressId"})
	}
	if err := h.service.DeleteAddress(c.UserContext(), userID, payload.AddressID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
