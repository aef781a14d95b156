package cart

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/user"
)

// GuestHeader carries the id issued by POST /api/v1/cart/guest.
const GuestHeader = "X-Guest-ID"

var validate = validator.New()

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterPublicRoutes mounts the routes usable by guests and accounts.
// auth should attach a token when one is sent without requiring it.
func (h *Handler) RegisterPublicRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/api/v1/cart/guest", h.newGuest)
	r.Get("/api/v1/cart", auth, h.getCart)
	r.Post("/api/v1/cart/items", auth, h.addItem)
	r.Patch("/api/v1/cart/items/:variantId", auth, h.setQuantity)
	r.Delete("/api/v1/cart/items/:variantId", auth, h.removeItem)
	r.Delete("/api/v1/cart", auth, h.clearCart)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/api/v1/cart/merge", h.merge)
}

type addItemRequest struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Cart
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

func toResponse(c Cart) cartResponse {
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return cartResponse{Cart: c, Subtotal: c.Total(), ItemCount: c.ItemCount()}
}

// IdentityFromCtx resolves the caller: JWT claims win, otherwise the
// guest header must hold a uuid.
func IdentityFromCtx(c *fiber.Ctx) (Identity, error) {
	if id, err := user.GetUserIDFromCtx(c); err == nil {
		return Account(id), nil
	}
	guestID := c.Get(GuestHeader)
	if _, err := uuid.Parse(guestID); err != nil {
		return Identity{}, apperr.Unauthorized("sign in or send a guest cart id")
	}
	return Guest(guestID), nil
}

func (h *Handler) newGuest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"guestId": uuid.NewString()})
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	id, err := IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	cart, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	id, err := IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(payload); err != nil {
		return apperr.Respond(c, addItemError(err))
	}

	cart, err := h.service.Add(c.UserContext(), id, payload.VariantID, payload.Quantity)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

// addItemError names the first field that failed validation.
func addItemError(err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 && fields[0].Field() == "VariantID" {
		return errInvalidVariant
	}
	return apperr.Validation("INVALID_QUANTITY", "a quantity of at least 1 is required")
}

var errInvalidVariant = apperr.Validation("INVALID_VARIANT", "variantId must be a uuid")

func variantParam(c *fiber.Ctx) (string, error) {
	variantID := c.Params("variantId")
	if _, err := uuid.Parse(variantID); err != nil {
		return "", errInvalidVariant
	}
	return variantID, nil
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	id, err := IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	variantID, err := variantParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(setQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	cart, err := h.service.SetQuantity(c.UserContext(), id, variantID, payload.Quantity)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	id, err := IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	variantID, err := variantParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	cart, err := h.service.Remove(c.UserContext(), id, variantID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	id, err := IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if err := h.service.Clear(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(toResponse(Cart{Lines: []Line{}}))
}

// merge is called once right after sign-in with the guest id the browser
// was using.
func (h *Handler) merge(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	guestID := c.Get(GuestHeader)
	if _, err := uuid.Parse(guestID); err != nil {
		return apperr.Respond(c, apperr.Validation("MISSING_GUEST_ID", "guest cart id is required"))
	}

	cart, err := h.service.Merge(c.UserContext(), guestID, userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}
