package repositories

import (
	"storefront/internal/models"
)

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	// GetByUserID returns the user's cart without loading items.
	GetByUserID(userID string) (*models.Cart, error)
	// GetByID returns a cart with its items and each item's product loaded.
	GetByID(id string) (*models.Cart, error)
	Create(cart *models.Cart) error

	// GetItem returns a cart item with its owning cart and product loaded.
	GetItem(itemID string) (*models.CartItem, error)
	// FindItem looks up the single item for a (cart, product) pair.
	FindItem(cartID, productID string) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItemQuantity(itemID string, quantity int) error
	DeleteItem(itemID string) error
}
