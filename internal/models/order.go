package models

import "gorm.io/gorm"

// Order is the immutable record of a completed purchase. Total and the item
// prices are snapshots taken at checkout time, so historical orders are immune
// to later product price changes.
type Order struct {
	ID     string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string      `json:"userId" gorm:"index;type:varchar(36)"`
	Total  float64     `json:"total"`
	Items  []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	// Shipping snapshot, captured as supplied at checkout.
	ShippingName    string `json:"shippingName"`
	ShippingAddress string `json:"shippingAddress"`
	ShippingCity    string `json:"shippingCity"`
	ShippingState   string `json:"shippingState"`
	ShippingPostal  string `json:"shippingPostal"`
	ShippingCountry string `json:"shippingCountry"`
	ShippingPhone   string `json:"shippingPhone"`
	ShippingEmail   string `json:"shippingEmail"`

	// Payment snapshot. Only the detected brand and last four digits are ever
	// accepted; nothing is verified against a real processor.
	CardType     string `json:"cardType"`
	CardLastFour string `json:"cardLastFour"`

	gorm.Model // CreatedAt, UpdatedAt, DeletedAt
}

// OrderItem snapshots one purchased product's quantity and unit price at the
// moment of checkout. Created only inside the checkout transaction, never
// mutated afterward.
type OrderItem struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string  `json:"orderId" gorm:"index;type:varchar(36)"`
	ProductID  string  `json:"productId" gorm:"type:varchar(36)"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"` // unit price at the time of purchase
	Product    Product `json:"product" gorm:"foreignKey:ProductID"`
	gorm.Model         // CreatedAt, UpdatedAt, DeletedAt
}
