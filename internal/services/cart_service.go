// internal/services/cart_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/pricing"
)

type CartService struct {
	db         *gorm.DB
	calculator *pricing.Calculator
	config     config.CartConfig
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	// Zero or less removes the line
	Quantity int `json:"quantity"`
}

// CartLine is a cart item priced at the product's current price
type CartLine struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartSnapshot struct {
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

type CartSummary struct {
	CartSnapshot
	Pricing pricing.Breakdown `json:"pricing"`
}

func (s *CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s *CartSnapshot) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(s.Lines))
	for _, line := range s.Lines {
		lines = append(lines, pricing.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	return lines
}

func NewCartService(db *gorm.DB, calculator *pricing.Calculator, cfg config.CartConfig) *CartService {
	return &CartService{
		db:         db,
		calculator: calculator,
		config:     cfg,
	}
}

// Add puts quantity units of a product in the user's cart, merging into the
// existing line for that product when there is one.
func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if quantity < 1 {
		return nil, apperrors.ErrInvalidQuantity
	}

	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", productID, true).First(&product).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrProductNotFound, "find product")
	}

	item, err := s.findLineByProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return s.increment(ctx, item, quantity, &product)
	}

	if err := s.checkStock(&product, quantity); err != nil {
		return nil, err
	}

	item = &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		if !isDuplicateKey(err) {
			return nil, apperrors.Persistence(err, "create cart item")
		}

		// A concurrent add created the line first
		existing, findErr := s.findLineByProduct(ctx, userID, productID)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, apperrors.Persistence(err, "create cart item")
		}
		return s.increment(ctx, existing, quantity, &product)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	}).Debug("Cart line created")

	return item, nil
}

// SetQuantity replaces a line's quantity. A quantity of zero or less removes
// the line and returns a nil item.
func (s *CartService) SetQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if quantity <= 0 {
		return nil, s.Remove(ctx, userID, lineID)
	}

	var item models.CartItem
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("id = ? AND user_id = ?", lineID, userID).First(&item).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCartLineNotFound, "find cart item")
	}

	if item.Product != nil {
		if err := s.checkStock(item.Product, quantity); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(&item).Update("quantity", quantity).Error; err != nil {
		return nil, apperrors.Persistence(err, "update cart item")
	}

	item.Product = nil
	return &item, nil
}

// Remove deletes a line. Removing a line that does not exist is not an error.
func (s *CartService) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.ErrUnauthenticated
	}

	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", lineID, userID).Delete(&models.CartItem{}).Error; err != nil {
		return apperrors.Persistence(err, "remove cart item")
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.ErrUnauthenticated
	}

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return apperrors.Persistence(err, "clear cart")
	}
	return nil
}

// Snapshot reads the cart and prices it at current product prices. A line
// whose product is gone contributes nothing.
func (s *CartService) Snapshot(ctx context.Context, userID uuid.UUID) (*CartSnapshot, error) {
	snapshot := &CartSnapshot{
		Lines:    []CartLine{},
		Subtotal: decimal.Zero,
	}
	if userID == uuid.Nil {
		return snapshot, nil
	}

	var items []models.CartItem
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, apperrors.Persistence(err, "load cart")
	}

	for _, item := range items {
		line := CartLine{
			ID:        item.ID,
			ProductID: item.ProductID,
			UnitPrice: decimal.Zero,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.Slug = item.Product.Slug
			line.Image = item.Product.PrimaryImage()
			line.UnitPrice = item.Product.Price
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

		snapshot.Lines = append(snapshot.Lines, line)
		snapshot.Subtotal = snapshot.Subtotal.Add(line.LineTotal)
		snapshot.Count += line.Quantity
	}

	return snapshot, nil
}

func (s *CartService) Summary(ctx context.Context, userID uuid.UUID) (*CartSummary, error) {
	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CartSummary{
		CartSnapshot: *snapshot,
		Pricing:      s.calculator.Price(snapshot.PricingLines()),
	}, nil
}

func (s *CartService) findLineByProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Limit(1).Find(&items).Error; err != nil {
		return nil, apperrors.Persistence(err, "find cart item")
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (s *CartService) increment(ctx context.Context, item *models.CartItem, quantity int, product *models.Product) (*models.CartItem, error) {
	if err := s.checkStock(product, item.Quantity+quantity); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(item).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
		return nil, apperrors.Persistence(err, "increment cart item")
	}

	var updated models.CartItem
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", item.ID).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCartLineNotFound, "reload cart item")
	}
	return &updated, nil
}

func (s *CartService) checkStock(product *models.Product, quantity int) error {
	if !s.config.EnforceStock || quantity <= product.Quantity {
		return nil
	}
	return apperrors.ErrInsufficientStock.WithDetails(product.Name)
}
