package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService maintains each user's mutable pre-purchase line-item set,
// keeping requested quantities consistent with current stock.
//
// Add and update deliberately treat insufficient stock differently: add is a
// best-effort "get something in the cart" operation that clamps and warns,
// while update is an explicit quantity change where silent clamping would be
// surprising, so it rejects and reports the ceiling.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItemResult reports the written cart item and whether the requested
// quantity had to be clamped to the available stock.
type AddItemResult struct {
	Item     *models.CartItem `json:"cartItem"`
	Adjusted bool             `json:"adjusted"`
	Message  string           `json:"message,omitempty"`
}

// AddItem puts quantity units of a product into the user's cart, creating the
// cart lazily and merging into an existing line for the same product. A
// request beyond the available stock is clamped down to it, never rejected,
// as long as at least one unit remains.
func (s *CartService) AddItem(userID, productID string, quantity int) (*AddItemResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if productID == "" {
		return nil, fmt.Errorf("product ID is required: %w", ErrInvalidInput)
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return nil, err
	}
	if product.Stock < 1 {
		// Nothing to clamp to; a zero-quantity line would be meaningless.
		return nil, &StockExceededError{Available: 0}
	}

	cart, err := s.getOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.FindItem(cart.ID, productID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		adjusted := false
		message := ""
		if newQuantity > product.Stock {
			newQuantity = product.Stock
			adjusted = true
			message = fmt.Sprintf("We've adjusted your cart to the maximum available quantity (%d)", product.Stock)
		}

		if newQuantity == existing.Quantity {
			existing.Product = *product
			return &AddItemResult{
				Item:     existing,
				Adjusted: false,
				Message:  "Item already in cart with this quantity",
			}, nil
		}

		if err := s.cartRepo.UpdateItemQuantity(existing.ID, newQuantity); err != nil {
			return nil, err
		}
		existing.Quantity = newQuantity
		existing.Product = *product
		return &AddItemResult{Item: existing, Adjusted: adjusted, Message: message}, nil
	}

	adjusted := false
	message := ""
	if quantity > product.Stock {
		quantity = product.Stock
		adjusted = true
		message = fmt.Sprintf("We've adjusted your cart to the maximum available quantity (%d)", product.Stock)
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.CreateItem(item); err != nil {
		return nil, err
	}
	item.Product = *product
	return &AddItemResult{Item: item, Adjusted: adjusted, Message: message}, nil
}

// UpdateItemQuantity overwrites a cart item's quantity. Unlike AddItem it
// never clamps: a quantity above current stock fails with StockExceededError
// carrying the available count, and the row is left untouched.
func (s *CartService) UpdateItemQuantity(itemID, userID string, quantity int) (*models.CartItem, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}

	item, err := s.ownedItem(itemID, userID)
	if err != nil {
		return nil, err
	}

	if quantity > item.Product.Stock {
		return nil, &StockExceededError{Available: item.Product.Stock}
	}

	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// RemoveItem deletes a cart item after the same ownership checks as update.
func (s *CartService) RemoveItem(itemID, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	item, err := s.ownedItem(itemID, userID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(item.ID)
}

// GetCart returns the user's cart with items and products loaded. A user who
// has never touched their cart gets an empty one without a row being written.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, err
	}
	return s.cartRepo.GetByID(cart.ID)
}

// getOrCreateCart fetches the user's cart, creating it on first use. Two
// requests racing to create the first cart are resolved by the unique index
// on user_id: the loser's insert fails with ErrDuplicate and re-fetches.
func (s *CartService) getOrCreateCart(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID}
	if err := s.cartRepo.Create(cart); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return s.cartRepo.GetByUserID(userID)
		}
		return nil, err
	}
	return cart, nil
}

// ownedItem loads a cart item and verifies it sits in a cart owned by userID.
func (s *CartService) ownedItem(itemID, userID string) (*models.CartItem, error) {
	item, err := s.cartRepo.GetItem(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	cart, err := s.cartRepo.GetByID(item.CartID)
	if err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, fmt.Errorf("cart item %s: %w", itemID, ErrForbidden)
	}
	return item, nil
}
