package product

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

var validate = validator.New()

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/products", h.getProducts)
	r.Get("/api/v1/products/:slug", h.getProduct)
}

// RegisterAdminRoutes expects r to already require an admin token.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/api/v1/admin/products", h.adminList)
	r.Get("/api/v1/admin/products/:id", h.adminGet)
	r.Post("/api/v1/admin/products", h.createProduct)
	r.Put("/api/v1/admin/products/:id", h.updateProduct)
	r.Patch("/api/v1/admin/products/:id/flags", h.setFlags)
	r.Delete("/api/v1/admin/products/:id", h.deleteProduct)

	r.Get("/api/v1/admin/inventory", h.inventory)
	r.Get("/api/v1/admin/inventory/low-stock", h.lowStock)
	r.Patch("/api/v1/admin/inventory", h.updateStock)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), ListQuery{
		FeaturedOnly: c.QueryBool("featured"),
		CategorySlug: c.Query("category"),
		Search:       c.Query("q"),
		Sort:         Sort(c.Query("sort")),
	})
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) adminList(c *fiber.Ctx) error {
	products, err := h.service.AdminList(c.UserContext(), c.Query("q"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) adminGet(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func parseInput(c *fiber.Ctx) (Input, error) {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return Input{}, apperr.Validation("INVALID_PRODUCT", err.Error())
	}
	if err := validate.Struct(in); err != nil {
		return Input{}, apperr.Validation("INVALID_PRODUCT", "title is required and every variant needs a size, sku and non-negative stock")
	}
	return in, nil
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	p, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	p, err := h.service.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

type flagsRequest struct {
	Active   *bool `json:"isActive"`
	Featured *bool `json:"isFeatured"`
}

func (h *Handler) setFlags(c *fiber.Ctx) error {
	payload := new(flagsRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := h.service.SetFlags(c.UserContext(), c.Params("id"), payload.Active, payload.Featured)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "product deleted"})
}

func (h *Handler) inventory(c *fiber.Ctx) error {
	items, err := h.service.Inventory(c.UserContext(), c.QueryBool("lowOnly"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) lowStock(c *fiber.Ctx) error {
	items, err := h.service.Inventory(c.UserContext(), true)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

type stockRequest struct {
	Updates []StockUpdate `json:"updates" validate:"required,min=1,dive"`
}

func (h *Handler) updateStock(c *fiber.Ctx) error {
	payload := new(stockRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(payload); err != nil {
		return apperr.Respond(c, apperr.Validation("INVALID_STOCK", "each update needs a variantId and a non-negative stock"))
	}
	if err := h.service.UpdateStock(c.UserContext(), payload.Updates); err != nil {
		return apperr.Respond(c, err)
	}
	items, err := h.service.Inventory(c.UserContext(), false)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}
