package models

import "gorm.io/gorm"

// Cart is a user's mutable pre-purchase working set. There is at most one cart
// per user (unique index on user_id); it is created lazily on the first add
// and survives checkout empty.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"userId" gorm:"uniqueIndex;type:varchar(36)"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID"`
	gorm.Model            // CreatedAt, UpdatedAt, DeletedAt
}

// CartItem is one (product, quantity) pairing inside a cart. The composite
// unique index guarantees a single row per (cart, product) pair; repeated adds
// merge into it.
type CartItem struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID     string  `json:"cartId" gorm:"uniqueIndex:idx_cart_product;type:varchar(36)"`
	ProductID  string  `json:"productId" gorm:"uniqueIndex:idx_cart_product;type:varchar(36)"`
	Quantity   int     `json:"quantity" validate:"gte=1"`
	Product    Product `json:"product" gorm:"foreignKey:ProductID"`
	gorm.Model         // CreatedAt, UpdatedAt, DeletedAt
}
