// internal/services/checkout_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/database"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/pricing"
	"github.com/javajoker/storefront-backend/internal/utils"
)

const notificationTimeout = 30 * time.Second

type CheckoutState string

const (
	CheckoutIdle           CheckoutState = "idle"
	CheckoutAddressPending CheckoutState = "address_pending"
	CheckoutOrderPending   CheckoutState = "order_pending"
	CheckoutItemsPending   CheckoutState = "items_pending"
	CheckoutComplete       CheckoutState = "complete"
	CheckoutFailed         CheckoutState = "failed"
)

type CheckoutService struct {
	db           *gorm.DB
	cart         *CartService
	calculator   *pricing.Calculator
	orderNumbers OrderNumberGenerator
	notifier     OrderNotifier
	config       config.CheckoutConfig
}

// CheckoutRequest carries the shipping details. The same address is used
// for billing.
type CheckoutRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"full_name" validate:"required,max=255"`
	AddressLine1 string `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line2,omitempty" validate:"max=255"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,max=100"`
	Phone        string `json:"phone,omitempty" validate:"max=50"`
	Notes        string `json:"notes,omitempty" validate:"max=2000"`
}

type CheckoutResult struct {
	Order *models.Order `json:"order"`
	// False when the order was placed but the cart could not be emptied
	CartCleared bool `json:"cart_cleared"`
}

func NewCheckoutService(
	db *gorm.DB,
	cart *CartService,
	calculator *pricing.Calculator,
	orderNumbers OrderNumberGenerator,
	notifier OrderNotifier,
	cfg config.CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		db:           db,
		cart:         cart,
		calculator:   calculator,
		orderNumbers: orderNumbers,
		notifier:     notifier,
		config:       cfg,
	}
}

// checkoutRun tracks one submission through its states
type checkoutRun struct {
	state       CheckoutState
	orderNumber string
	log         *logrus.Entry
}

func (r *checkoutRun) transition(to CheckoutState) {
	r.log.WithFields(logrus.Fields{
		"from":         r.state,
		"to":           to,
		"order_number": r.orderNumber,
	}).Info("Checkout state changed")
	r.state = to
}

func (r *checkoutRun) fail(stage apperrors.CheckoutStage, err error) error {
	r.log.WithFields(logrus.Fields{
		"from":         r.state,
		"to":           CheckoutFailed,
		"stage":        stage,
		"order_number": r.orderNumber,
	}).WithError(err).Warn("Checkout failed")
	r.state = CheckoutFailed
	return apperrors.NewCheckoutError(stage, err)
}

// Submit turns the user's cart into an order. Prices are frozen from the
// cart snapshot taken at the start. Unless checkout runs atomically, a
// failure leaves the records written by earlier stages in place.
func (s *CheckoutService) Submit(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*CheckoutResult, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	snapshot, err := s.cart.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, apperrors.ErrEmptyCart
	}
	breakdown := s.calculator.Price(snapshot.PricingLines())

	// Once the first write is issued the run finishes even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	run := &checkoutRun{
		state: CheckoutIdle,
		log: logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"atomic":  s.config.Atomic,
		}),
	}

	var order *models.Order
	write := func(tx *gorm.DB) error {
		run.transition(CheckoutAddressPending)
		address := newCheckoutAddress(userID, req)
		if err := tx.Create(address).Error; err != nil {
			return run.fail(apperrors.StageAddress, apperrors.Persistence(err, "create address"))
		}

		run.transition(CheckoutOrderPending)
		orderNumber, err := s.orderNumbers.Next(ctx)
		if err != nil {
			return run.fail(apperrors.StageOrder, err)
		}
		run.orderNumber = orderNumber

		order = &models.Order{
			UserID:            userID,
			OrderNumber:       orderNumber,
			Status:            models.OrderStatusProcessing,
			Subtotal:          breakdown.Subtotal,
			Tax:               breakdown.Tax,
			Shipping:          breakdown.Shipping,
			Total:             breakdown.Total,
			ShippingAddressID: &address.ID,
			BillingAddressID:  &address.ID,
			PaymentStatus:     models.PaymentStatusPaid,
			PaymentMethod:     s.config.PaymentMethod,
			Notes:             strings.TrimSpace(req.Notes),
			Metadata:          models.JSONB{"contact_email": req.Email},
		}
		if err := tx.Create(order).Error; err != nil {
			return run.fail(apperrors.StageOrder, apperrors.Persistence(err, "create order"))
		}
		order.ShippingAddress = address
		order.BillingAddress = address

		run.transition(CheckoutItemsPending)
		items := make([]models.OrderItem, 0, len(snapshot.Lines))
		for _, line := range snapshot.Lines {
			productID := line.ProductID
			items = append(items, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   &productID,
				ProductName: line.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Total:       line.LineTotal,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return run.fail(apperrors.StageItems, apperrors.Persistence(err, "create order items"))
		}
		order.Items = items

		return nil
	}

	db := s.db.WithContext(ctx)
	if s.config.Atomic {
		err = database.WithTransaction(db, write)
		if err != nil && !apperrors.Is(err, apperrors.ErrCheckoutFailed) {
			// Commit failed after every stage succeeded
			err = run.fail(apperrors.StageItems, apperrors.Persistence(err, "commit checkout"))
		}
	} else {
		err = write(db)
	}
	if err != nil {
		return nil, err
	}

	run.transition(CheckoutComplete)

	result := &CheckoutResult{Order: order, CartCleared: true}
	if err := s.cart.Clear(ctx, userID); err != nil {
		result.CartCleared = false
		run.log.WithError(err).WithField("order_number", order.OrderNumber).
			Error("Order placed but cart could not be cleared")
	}

	s.notify(order, req.Email)

	return result, nil
}

func (s *CheckoutService) notify(order *models.Order, recipient string) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := s.notifier.SendOrderConfirmation(ctx, order, recipient); err != nil {
			logrus.WithError(err).WithField("order_number", order.OrderNumber).
				Warn("Failed to send order confirmation")
		}
	}()
}

func newCheckoutAddress(userID uuid.UUID, req *CheckoutRequest) *models.Address {
	return &models.Address{
		UserID:     userID,
		Type:       models.AddressTypeBoth,
		FullName:   strings.TrimSpace(req.FullName),
		Line1:      strings.TrimSpace(req.AddressLine1),
		Line2:      strings.TrimSpace(req.AddressLine2),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
		Phone:      strings.TrimSpace(req.Phone),
	}
}
