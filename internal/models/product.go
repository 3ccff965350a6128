package models

import "gorm.io/gorm"

// Product represents a product in the catalog. Stock is only ever decremented
// by the checkout transaction; cart operations merely clamp against it.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"omitempty,max=100"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
	gorm.Model          // CreatedAt, UpdatedAt, DeletedAt
}
