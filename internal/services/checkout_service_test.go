package services_test

import (
	"fmt"
	"regexp"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockPublisher is a mock implementation of services.OrderEventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderCreated(orderData map[string]interface{}) error {
	args := m.Called(orderData)
	return args.Error(0)
}

// newTestDB opens an isolated in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{}, &models.User{}, &models.Cart{},
		&models.CartItem{}, &models.Order{}, &models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// seedCart writes a product, a cart for the user, and one cart item directly
// through the repositories, bypassing the clamp logic in the cart service.
func seedCart(t *testing.T, db *gorm.DB, userID string, stock int, price float64, quantity int) (*models.Product, *models.Cart) {
	t.Helper()
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)

	product := &models.Product{Name: "Widget", Description: "Test widget", Price: price, Stock: stock}
	assert.NoError(t, productRepo.Create(product))

	cart := &models.Cart{UserID: userID}
	assert.NoError(t, cartRepo.Create(cart))
	assert.NoError(t, cartRepo.CreateItem(&models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
	}))
	return product, cart
}

func TestCheckout_Success(t *testing.T) {
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	product, cart := seedCart(t, db, "user-1", 10, 99.99, 2)

	publisher := new(MockPublisher)
	publisher.On("PublishOrderCreated", mock.Anything).Return(nil).Once()

	service := services.NewCheckoutService(cartRepo, orderRepo, publisher)
	result, err := service.Checkout("user-1", cart.ID,
		services.ShippingInfo{FullName: "Jo Bloggs", AddressLine1: "1 Main St", City: "Sydney", State: "NSW", PostalCode: "2000", Country: "Australia"},
		services.PaymentMethod{CardType: "Visa", LastFour: "4242"},
	)
	assert.NoError(t, err)
	assert.NotEmpty(t, result.OrderID)
	assert.Regexp(t, regexp.MustCompile(`^ORD-[A-Z0-9]{8}$`), result.OrderNumber)

	// Order total equals the sum of snapshot prices times quantities.
	order, err := orderRepo.GetByID(result.OrderID)
	assert.NoError(t, err)
	assert.InDelta(t, 199.98, order.Total, 0.001)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.InDelta(t, 99.99, order.Items[0].Price, 0.001)
	assert.Equal(t, "Visa", order.CardType)
	assert.Equal(t, "4242", order.CardLastFour)

	// Stock decreased by exactly the purchased quantity.
	var updated models.Product
	assert.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, 8, updated.Stock)

	// The cart survives checkout, empty.
	refreshed, err := cartRepo.GetByID(cart.ID)
	assert.NoError(t, err)
	assert.Empty(t, refreshed.Items)

	publisher.AssertExpectations(t)
}

func TestCheckout_PriceSnapshotImmuneToLaterChanges(t *testing.T) {
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	product, cart := seedCart(t, db, "user-1", 10, 50.00, 1)

	service := services.NewCheckoutService(cartRepo, orderRepo, nil)
	result, err := service.Checkout("user-1", cart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	assert.NoError(t, err)

	// Raising the product price afterwards must not touch the order.
	assert.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", 75.00).Error)

	order, err := orderRepo.GetByID(result.OrderID)
	assert.NoError(t, err)
	assert.InDelta(t, 50.00, order.Total, 0.001)
	assert.InDelta(t, 50.00, order.Items[0].Price, 0.001)
}

func TestCheckout_ValidationLadder(t *testing.T) {
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	service := services.NewCheckoutService(cartRepo, orderRepo, nil)

	_, cart := seedCart(t, db, "owner", 10, 10.0, 1)

	_, err := service.Checkout("", cart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	_, err = service.Checkout("owner", "", services.ShippingInfo{}, services.PaymentMethod{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = service.Checkout("owner", "no-such-cart", services.ShippingInfo{}, services.PaymentMethod{})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = service.Checkout("intruder", cart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	assert.ErrorIs(t, err, services.ErrForbidden)

	// An existing but empty cart is treated as not found.
	emptyCart := &models.Cart{UserID: "empty-user"}
	assert.NoError(t, cartRepo.Create(emptyCart))
	_, err = service.Checkout("empty-user", emptyCart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	assert.ErrorIs(t, err, services.ErrNotFound)

	// None of the failed attempts may have created an order.
	var count int64
	assert.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCheckout_StockConflictListsAllOffenders(t *testing.T) {
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	// Item quantity exceeds stock (seeded directly, as if stock shrank after
	// the item went into the cart).
	product, cart := seedCart(t, db, "user-1", 25, 10.0, 30)

	// Second offending item on the same cart.
	scarce := &models.Product{Name: "Gadget", Price: 5.0, Stock: 1}
	assert.NoError(t, productRepo.Create(scarce))
	assert.NoError(t, cartRepo.CreateItem(&models.CartItem{CartID: cart.ID, ProductID: scarce.ID, Quantity: 3}))

	service := services.NewCheckoutService(cartRepo, orderRepo, nil)
	result, err := service.Checkout("user-1", cart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	assert.Nil(t, result)

	var conflict *services.StockConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Len(t, conflict.Issues, 2)

	byProduct := map[string]services.StockIssue{}
	for _, issue := range conflict.Issues {
		byProduct[issue.ProductID] = issue
	}
	assert.Equal(t, 30, byProduct[product.ID].Requested)
	assert.Equal(t, 25, byProduct[product.ID].Available)
	assert.Equal(t, "Widget", byProduct[product.ID].Name)
	assert.Equal(t, 3, byProduct[scarce.ID].Requested)
	assert.Equal(t, 1, byProduct[scarce.ID].Available)

	// No partial effects: zero orders, stock untouched, cart intact.
	var orders int64
	assert.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(0), orders)

	var p models.Product
	assert.NoError(t, db.First(&p, "id = ?", product.ID).Error)
	assert.Equal(t, 25, p.Stock)

	refreshed, err := cartRepo.GetByID(cart.ID)
	assert.NoError(t, err)
	assert.Len(t, refreshed.Items, 2)
}

func TestCreateFromCart_RollsBackWhenStockDrained(t *testing.T) {
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	// Two items; the second one's stock was drained by a concurrent writer
	// after the pre-check would have passed. The first decrement must be
	// rolled back along with the order rows.
	plenty, cart := seedCart(t, db, "user-1", 10, 10.0, 2)
	drained := &models.Product{Name: "Gadget", Price: 5.0, Stock: 1}
	assert.NoError(t, productRepo.Create(drained))
	assert.NoError(t, cartRepo.CreateItem(&models.CartItem{CartID: cart.ID, ProductID: drained.ID, Quantity: 1}))

	order := &models.Order{
		UserID: "user-1",
		Total:  25.0,
		Items: []models.OrderItem{
			{ProductID: plenty.ID, Quantity: 2, Price: 10.0},
			{ProductID: drained.ID, Quantity: 5, Price: 5.0}, // exceeds stock at commit time
		},
	}
	err := orderRepo.CreateFromCart(order, cart.ID)
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)

	var orders, orderItems int64
	assert.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.NoError(t, db.Model(&models.OrderItem{}).Count(&orderItems).Error)
	assert.Equal(t, int64(0), orders, "rollback must remove the order row")
	assert.Equal(t, int64(0), orderItems, "rollback must remove order items")

	var p models.Product
	assert.NoError(t, db.First(&p, "id = ?", plenty.ID).Error)
	assert.Equal(t, 10, p.Stock, "the first item's decrement must be rolled back")

	refreshed, err := cartRepo.GetByID(cart.ID)
	assert.NoError(t, err)
	assert.Len(t, refreshed.Items, 2, "cart must survive a failed commit intact")
}

func TestCheckout_RetryAfterFailureCreatesExactlyOneOrder(t *testing.T) {
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	product, cart := seedCart(t, db, "user-1", 25, 10.0, 30)
	service := services.NewCheckoutService(cartRepo, orderRepo, nil)

	_, err := service.Checkout("user-1", cart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	var conflict *services.StockConflictError
	assert.ErrorAs(t, err, &conflict)

	// The user trims the quantity and resubmits.
	item, err := cartRepo.FindItem(cart.ID, product.ID)
	assert.NoError(t, err)
	assert.NoError(t, cartRepo.UpdateItemQuantity(item.ID, 25))

	result, err := service.Checkout("user-1", cart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	assert.NoError(t, err)
	assert.NotNil(t, result)

	var orders int64
	assert.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)
}

func TestCheckout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	_, cart := seedCart(t, db, "user-1", 5, 10.0, 1)

	publisher := new(MockPublisher)
	publisher.On("PublishOrderCreated", mock.Anything).Return(fmt.Errorf("broker unavailable")).Once()

	service := services.NewCheckoutService(cartRepo, orderRepo, publisher)
	result, err := service.Checkout("user-1", cart.ID, services.ShippingInfo{}, services.PaymentMethod{})
	assert.NoError(t, err, "a committed checkout must not fail on a publish error")
	assert.NotNil(t, result)
	publisher.AssertExpectations(t)
}
