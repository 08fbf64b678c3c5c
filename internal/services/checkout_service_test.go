package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/pricing"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type recordingNotifier struct {
	mu         sync.Mutex
	recipients []string
	sent       chan *models.Order
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan *models.Order, 4)}
}

func (n *recordingNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order, recipient string) error {
	n.mu.Lock()
	n.recipients = append(n.recipients, recipient)
	n.mu.Unlock()
	n.sent <- order
	return nil
}

type checkoutFixture struct {
	db       *gorm.DB
	user     *models.User
	cart     *CartService
	checkout *CheckoutService
	notifier *recordingNotifier
}

func newCheckoutFixture(t *testing.T, atomic bool) *checkoutFixture {
	t.Helper()

	db := newTestDB(t)
	calc := pricing.DefaultCalculator()
	cart := NewCartService(db, calc, config.CartConfig{})
	notifier := newRecordingNotifier()
	cfg := config.CheckoutConfig{
		Atomic:              atomic,
		OrderNumberStrategy: "random",
		OrderNumberPrefix:   "ORD",
		PaymentMethod:       "card",
	}

	return &checkoutFixture{
		db:       db,
		user:     createTestUser(t, db, "buyer@example.com"),
		cart:     cart,
		checkout: NewCheckoutService(db, cart, calc, NewOrderNumberGenerator(db, cfg), notifier, cfg),
		notifier: notifier,
	}
}

func (f *checkoutFixture) fillCart(t *testing.T) {
	t.Helper()

	shirt := createTestProduct(t, f.db, "shirt", "19.99", 10)
	socks := createTestProduct(t, f.db, "socks", "5.00", 10)
	_, err := f.cart.Add(context.Background(), f.user.ID, shirt.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.Add(context.Background(), f.user.ID, socks.ID, 1)
	require.NoError(t, err)
}

func validCheckoutRequest() *CheckoutRequest {
	return &CheckoutRequest{
		Email:        "buyer@example.com",
		FullName:     "Jane Buyer",
		AddressLine1: "1 Market St",
		City:         "San Francisco",
		State:        "CA",
		PostalCode:   "94105",
		Country:      "US",
		Notes:        "Leave at the door",
	}
}

func requireStage(t *testing.T, err error, stage apperrors.CheckoutStage) {
	t.Helper()

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCheckoutFailed)

	var checkoutErr *apperrors.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, stage, checkoutErr.Stage)
}

func TestCheckout_HappyPath(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)

	result, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	require.NoError(t, err)
	assert.True(t, result.CartCleared)

	order := result.Order
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{8}$`), order.OrderNumber)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, "card", order.PaymentMethod)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("44.98")))
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("4.498")))
	assert.True(t, order.Shipping.Equal(decimal.RequireFromString("10")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("59.478")))
	require.NotNil(t, order.ShippingAddressID)
	assert.Equal(t, order.ShippingAddressID, order.BillingAddressID)

	require.Len(t, order.Items, 2)
	itemSum := decimal.Zero
	for _, item := range order.Items {
		itemSum = itemSum.Add(item.Total)
	}
	assert.True(t, itemSum.Equal(order.Subtotal))

	var address models.Address
	require.NoError(t, f.db.First(&address, "id = ?", *order.ShippingAddressID).Error)
	assert.Equal(t, models.AddressTypeBoth, address.Type)
	assert.Equal(t, "1 Market St", address.Line1)

	assert.Zero(t, countRows(t, f.db, &models.CartItem{}))

	select {
	case sent := <-f.notifier.sent:
		assert.Equal(t, order.OrderNumber, sent.OrderNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("order confirmation was not sent")
	}
	assert.Equal(t, []string{"buyer@example.com"}, f.notifier.recipients)
}

func TestCheckout_PricesFrozenAtSnapshot(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)

	result, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	require.NoError(t, err)

	// Later price changes do not touch the placed order
	require.NoError(t, f.db.Model(&models.Product{}).Where("1 = 1").Update("price", decimal.NewFromInt(99)).Error)

	orders := NewOrderService(f.db)
	order, err := orders.GetOrder(context.Background(), f.user.ID, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "44.98", order.Subtotal.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.NotNil(t, order.ShippingAddress)
}

func TestCheckout_EmptyCartWritesNothing(t *testing.T) {
	f := newCheckoutFixture(t, false)

	_, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.Zero(t, countRows(t, f.db, &models.Address{}))
	assert.Zero(t, countRows(t, f.db, &models.Order{}))
}

func TestCheckout_RejectsAnonymousAndInvalidInput(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)

	_, err := f.checkout.Submit(context.Background(), uuid.Nil, validCheckoutRequest())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	req := validCheckoutRequest()
	req.Email = "not-an-email"
	_, err = f.checkout.Submit(context.Background(), f.user.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Zero(t, countRows(t, f.db, &models.Address{}))
}

func TestCheckout_StageFailures(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		stage     apperrors.CheckoutStage
		addresses int64
		orders    int64
	}{
		{name: "address", table: "addresses", stage: apperrors.StageAddress, addresses: 0, orders: 0},
		{name: "order leaves orphan address", table: "orders", stage: apperrors.StageOrder, addresses: 1, orders: 0},
		{name: "items leave partial order", table: "order_items", stage: apperrors.StageItems, addresses: 1, orders: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, false)
			f.fillCart(t)
			failWrites(t, f.db, tt.table)

			result, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
			assert.Nil(t, result)
			requireStage(t, err, tt.stage)

			assert.Equal(t, tt.addresses, countRows(t, f.db, &models.Address{}))
			assert.Equal(t, tt.orders, countRows(t, f.db, &models.Order{}))
			assert.Zero(t, countRows(t, f.db, &models.OrderItem{}))
			assert.Equal(t, int64(2), countRows(t, f.db, &models.CartItem{}), "cart is kept on failure")
		})
	}
}

func TestCheckout_AtomicModeRollsBack(t *testing.T) {
	f := newCheckoutFixture(t, true)
	f.fillCart(t)
	failWrites(t, f.db, "order_items")

	_, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	requireStage(t, err, apperrors.StageItems)

	assert.Zero(t, countRows(t, f.db, &models.Address{}))
	assert.Zero(t, countRows(t, f.db, &models.Order{}))
	assert.Equal(t, int64(2), countRows(t, f.db, &models.CartItem{}))
}

func TestCheckout_AtomicModeHappyPath(t *testing.T) {
	f := newCheckoutFixture(t, true)
	f.fillCart(t)

	result, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	require.NoError(t, err)
	assert.True(t, result.CartCleared)
	assert.Equal(t, int64(2), countRows(t, f.db, &models.OrderItem{}))
}

func TestCheckout_ClearFailureStillSucceeds(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)
	failDeletes(t, f.db, "cart_items")

	result, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	require.NoError(t, err)
	assert.False(t, result.CartCleared)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Order{}))
	assert.Equal(t, int64(2), countRows(t, f.db, &models.CartItem{}))
}

type failingOrderNumbers struct{}

func (failingOrderNumbers) Next(ctx context.Context) (string, error) {
	return "", errInjected
}

func TestCheckout_OrderNumberFailureIsOrderStage(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)
	f.checkout.orderNumbers = failingOrderNumbers{}

	_, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	requireStage(t, err, apperrors.StageOrder)
	assert.ErrorIs(t, err, errInjected)
}

func TestCheckout_PersistedTotalsKeepFullPrecision(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)
	f.checkout.calculator = pricing.NewCalculator(decimal.RequireFromString("0.0825"), decimal.RequireFromString("10"))

	result, err := f.checkout.Submit(context.Background(), f.user.ID, validCheckoutRequest())
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, "id = ?", result.Order.ID).Error)
	assert.True(t, stored.Tax.Equal(decimal.RequireFromString("3.71085")), stored.Tax.String())
	assert.True(t, stored.Total.Equal(stored.Subtotal.Add(stored.Tax).Add(stored.Shipping)), stored.Total.String())
}

// cancellingOrderNumbers abandons the caller's request halfway through a run
type cancellingOrderNumbers struct {
	cancel context.CancelFunc
}

func (n cancellingOrderNumbers) Next(ctx context.Context) (string, error) {
	n.cancel()
	return "ORD-CANCELLED-1", nil
}

func TestCheckout_CompletesAfterCallerCancels(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.checkout.orderNumbers = cancellingOrderNumbers{cancel: cancel}

	result, err := f.checkout.Submit(ctx, f.user.ID, validCheckoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "ORD-CANCELLED-1", result.Order.OrderNumber)
	assert.Equal(t, int64(2), countRows(t, f.db, &models.OrderItem{}))
	assert.Zero(t, countRows(t, f.db, &models.CartItem{}))
}

func TestOrderService_ScopesToOwner(t *testing.T) {
	f := newCheckoutFixture(t, false)
	f.fillCart(t)
	ctx := context.Background()

	result, err := f.checkout.Submit(ctx, f.user.ID, validCheckoutRequest())
	require.NoError(t, err)

	orders := NewOrderService(f.db)
	list, total, err := orders.ListOrders(ctx, f.user.ID, utils.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)

	stranger := createTestUser(t, f.db, "stranger@example.com")
	_, err = orders.GetOrder(ctx, stranger.ID, result.Order.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)

	list, total, err = orders.ListOrders(ctx, stranger.ID, utils.PaginationParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestRandomOrderNumbers(t *testing.T) {
	gen := NewRandomOrderNumbers("ORD")
	gen.now = func() time.Time { return time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC) }

	first, err := gen.Next(context.Background())
	require.NoError(t, err)
	second, err := gen.Next(context.Background())
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-20240131-[A-Z0-9]{8}$`, first)
	assert.NotEqual(t, first, second)
}
