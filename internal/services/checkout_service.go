package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OrderEventPublisher publishes order lifecycle events after commit.
type OrderEventPublisher interface {
	PublishOrderCreated(orderData map[string]interface{}) error
}

// ShippingInfo is the delivery address captured at checkout. It is stored on
// the order as supplied; nothing here is validated against a real carrier.
type ShippingInfo struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// PaymentMethod carries the non-sensitive payment fields kept for the order
// record: the detected card brand and the last four digits. No authorization
// against a payment processor ever happens.
type PaymentMethod struct {
	CardType string `json:"cardType"`
	LastFour string `json:"lastFour"`
}

// CheckoutResult identifies the order created by a successful checkout.
type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// CheckoutService converts a cart into a permanent order exactly once,
// consistently with concurrent stock changes.
type CheckoutService struct {
	cartRepo  repositories.CartRepository
	orderRepo repositories.OrderRepository
	publisher OrderEventPublisher
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil, in
// which case order events are skipped.
func NewCheckoutService(cartRepo repositories.CartRepository, orderRepo repositories.OrderRepository, publisher OrderEventPublisher) *CheckoutService {
	return &CheckoutService{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// Checkout validates the cart against current stock, computes the total at
// current prices, and atomically materializes the order while decrementing
// stock and clearing the cart.
//
// The stock pre-check here can be stale by commit time; the transaction's
// conditional decrements are what actually keep stock non-negative. A
// commit-time conflict rolls back everything and surfaces as a generic
// failure, so no partial order can ever exist.
func (s *CheckoutService) Checkout(userID, cartID string, shipping ShippingInfo, payment PaymentMethod) (*CheckoutResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if cartID == "" {
		return nil, fmt.Errorf("cart ID is required: %w", ErrInvalidInput)
	}

	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("cart %s is empty: %w", cartID, ErrNotFound)
	}
	if cart.UserID != userID {
		return nil, fmt.Errorf("cart %s: %w", cartID, ErrForbidden)
	}

	var issues []StockIssue
	for _, item := range cart.Items {
		if item.Quantity > item.Product.Stock {
			issues = append(issues, StockIssue{
				ProductID: item.Product.ID,
				Name:      item.Product.Name,
				Requested: item.Quantity,
				Available: item.Product.Stock,
			})
		}
	}
	if len(issues) > 0 {
		return nil, &StockConflictError{Issues: issues}
	}

	var total float64
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		total += item.Product.Price * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price, // price at the moment of checkout
		})
	}

	order := &models.Order{
		UserID:          userID,
		Total:           total,
		Items:           orderItems,
		ShippingName:    shipping.FullName,
		ShippingAddress: strings.TrimSpace(shipping.AddressLine1 + " " + shipping.AddressLine2),
		ShippingCity:    shipping.City,
		ShippingState:   shipping.State,
		ShippingPostal:  shipping.PostalCode,
		ShippingCountry: shipping.Country,
		ShippingPhone:   shipping.Phone,
		ShippingEmail:   shipping.Email,
		CardType:        payment.CardType,
		CardLastFour:    payment.LastFour,
	}

	if err := s.orderRepo.CreateFromCart(order, cartID); err != nil {
		return nil, fmt.Errorf("failed to process order: %w", err)
	}

	result := &CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: OrderNumber(order.ID),
	}

	// Best-effort event publish; a broker hiccup must not fail a committed
	// checkout.
	if s.publisher != nil {
		event := map[string]interface{}{
			"orderId":     order.ID,
			"orderNumber": result.OrderNumber,
			"userId":      order.UserID,
			"total":       order.Total,
			"itemCount":   len(order.Items),
		}
		if err := s.publisher.PublishOrderCreated(event); err != nil {
			log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
		}
	}

	return result, nil
}

// GetOrdersByUser returns the user's order history, newest first.
func (s *CheckoutService) GetOrdersByUser(userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.orderRepo.GetByUser(userID)
}

// OrderNumber derives the human-readable order number from an order ID:
// "ORD-" followed by the upper-cased first 8 characters of the ID.
func OrderNumber(orderID string) string {
	prefix := orderID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "ORD-" + strings.ToUpper(prefix)
}
