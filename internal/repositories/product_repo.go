package repositories

import (
	"storefront/internal/models"
)

// ProductFilter narrows and orders a product listing.
type ProductFilter struct {
	Search   string // case-insensitive substring match on name or description
	Category string // exact category match
	OrderBy  string // ORDER BY clause, e.g. "name asc"
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Find(filter ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
