package handlers

import (
	"errors"
	"log"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/cart", h.HandleGetCart)
	router.Post("/cart/items", h.HandleAddItem)
	router.Patch("/cart/items/:id", h.HandleUpdateItem)
	router.Delete("/cart/items/:id", h.HandleRemoveItem)
}

// AddItemRequest is the body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// HandleGetCart returns the current user's cart with items.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}
		log.Printf("Error getting cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load cart"})
	}
	return c.JSON(cart)
}

// HandleAddItem adds a product to the user's cart, clamping the requested
// quantity to the available stock and reporting the adjustment.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := h.service.AddItem(middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		var stockErr *services.StockExceededError
		switch {
		case errors.Is(err, services.ErrNotAuthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Product ID is required"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":          "Product is out of stock",
				"availableStock": stockErr.Available,
			})
		}
		log.Printf("Error adding item to cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add item to cart"})
	}

	resp := fiber.Map{
		"cartItem": result.Item,
		"adjusted": result.Adjusted,
	}
	if result.Message != "" {
		resp["message"] = result.Message
	}
	return c.JSON(resp)
}

// UpdateItemRequest is the body for changing a cart item's quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateItem overwrites a cart item's quantity. A quantity above the
// available stock is rejected with the stock ceiling, never clamped.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	item, err := h.service.UpdateItemQuantity(c.Params("id"), middleware.UserID(c), req.Quantity)
	if err != nil {
		var stockErr *services.StockExceededError
		switch {
		case errors.Is(err, services.ErrNotAuthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quantity"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cart item not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized"})
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":          stockErr.Error(),
				"availableStock": stockErr.Available,
			})
		}
		log.Printf("Error updating cart item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update cart item"})
	}
	return c.JSON(item)
}

// HandleRemoveItem deletes a cart item after the same ownership checks as
// update.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	err := h.service.RemoveItem(c.Params("id"), middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAuthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cart item not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized"})
		}
		log.Printf("Error removing cart item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove cart item"})
	}
	return c.JSON(fiber.Map{"success": true})
}
