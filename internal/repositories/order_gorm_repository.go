package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetByUser retrieves the user's orders, newest first.
func (r *GORMOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items.Product").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// CreateFromCart executes the whole checkout write set atomically: the order
// row, one row per order item, a conditional stock decrement per product, and
// the deletion of the cart's items. Any failure rolls back everything.
//
// The decrement is a single conditional UPDATE (stock = stock - qty WHERE
// stock >= qty) so stock can never go negative even when a concurrent checkout
// or quantity update slipped in after the caller's pre-check.
func (r *GORMOrderRepository) CreateFromCart(order *models.Order, cartID string) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	items := order.Items
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		items[i].OrderID = order.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			if err := tx.Omit("Product").Create(&items[i]).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", items[i].ProductID, items[i].Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", items[i].Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", items[i].ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %s: %w", items[i].ProductID, ErrInsufficientStock)
			}
		}

		// Hard delete so the rows release the (cart_id, product_id) unique
		// index for future adds.
		if err := tx.Unscoped().Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Items = items
	return nil
}
