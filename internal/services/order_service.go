// internal/services/order_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, apperrors.ErrUnauthenticated
	}
	params = utils.NormalizePagination(params)

	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "count orders")
	}

	orders := []models.Order{}
	err := utils.ApplyPagination(query.Order("created_at DESC").Order("id"), params).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, 0, apperrors.Persistence(err, "fetch orders")
	}

	return orders, total, nil
}

// GetOrder returns one of the user's orders. Another user's order is reported
// as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}

	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("ShippingAddress").Preload("BillingAddress").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, lookupError(err, apperrors.ErrOrderNotFound, "find order")
	}
	return &order, nil
}
