package handlers

import (
	"errors"
	"log"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for checkout and order history.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
	router.Get("/orders", h.HandleGetOrders)
}

// CheckoutRequest is the body for placing an order.
type CheckoutRequest struct {
	CartID        string                 `json:"cartId"`
	ShippingInfo  services.ShippingInfo  `json:"shippingInfo"`
	PaymentMethod services.PaymentMethod `json:"paymentMethod"`
}

// HandleCheckout converts the user's cart into an order. Validation failures
// and stock conflicts are reported without side effects; any failure inside
// the commit itself rolls back entirely and surfaces as a generic error.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.Checkout(middleware.UserID(c), req.CartID, req.ShippingInfo, req.PaymentMethod)
	if err != nil {
		var conflict *services.StockConflictError
		switch {
		case errors.Is(err, services.ErrNotAuthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cart ID is required"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cart not found or empty"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized access to cart"})
		case errors.As(err, &conflict):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":       "Stock issues detected",
				"stockIssues": conflict.Issues,
			})
		}
		log.Printf("Checkout error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process order. Please try again.",
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"orderId":     result.OrderID,
		"orderNumber": result.OrderNumber,
	})
}

// HandleGetOrders returns the authenticated user's order history.
func (h *CheckoutHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersByUser(middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}
		log.Printf("Error getting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load orders"})
	}

	resp := make([]fiber.Map, 0, len(orders))
	for i := range orders {
		resp = append(resp, fiber.Map{
			"order":       orders[i],
			"orderNumber": services.OrderNumber(orders[i].ID),
		})
	}
	return c.JSON(resp)
}
