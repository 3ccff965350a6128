package repositories

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves the cart owned by the given user.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// GetByID retrieves a cart with its items and each item's product.
func (r *GORMCartRepository) GetByID(id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items.Product").First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart by ID %s: %w", id, err)
	}
	return &cart, nil
}

// Create inserts a new cart. A unique index on user_id protects against two
// requests racing to create the first cart; the losing insert surfaces as
// ErrDuplicate so the caller can re-fetch instead of duplicating.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("cart for user %s: %w", cart.UserID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// GetItem retrieves a cart item with its owning cart and product loaded.
func (r *GORMCartRepository) GetItem(itemID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Preload("Product").First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item with ID %s: %w", itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item by ID %s: %w", itemID, err)
	}
	return &item, nil
}

// FindItem looks up the item for a (cart, product) pair.
func (r *GORMCartRepository) FindItem(cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

// CreateItem inserts a new cart item.
func (r *GORMCartRepository) CreateItem(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("cart item for product %s: %w", item.ProductID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// UpdateItemQuantity overwrites the quantity of an existing cart item.
func (r *GORMCartRepository) UpdateItemQuantity(itemID string, quantity int) error {
	res := r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// DeleteItem removes a cart item by its ID. The delete is hard: a
// soft-deleted row would keep occupying the (cart_id, product_id) unique
// index and block re-adding the product later.
func (r *GORMCartRepository) DeleteItem(itemID string) error {
	res := r.db.Unscoped().Delete(&models.CartItem{}, "id = ?", itemID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// isDuplicateErr reports whether err came from a unique constraint violation.
// GORM translates these to ErrDuplicatedKey when TranslateError is enabled;
// the string check covers drivers that don't translate.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
