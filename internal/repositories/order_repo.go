package repositories

import (
	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// GetByUser returns the user's orders, newest first, with items and
	// products loaded.
	GetByUser(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	// CreateFromCart persists the order and its items, decrements each
	// product's stock by the purchased quantity, and clears the cart's items,
	// all inside a single transaction. Each decrement is conditioned on
	// sufficient remaining stock; if any would drive stock negative the whole
	// transaction rolls back with ErrInsufficientStock.
	CreateFromCart(order *models.Order, cartID string) error
}
