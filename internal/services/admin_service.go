// internal/services/admin_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

const (
	lowStockThreshold  = 5
	recentOrdersOnDash = 5
)

type AdminService struct {
	db *gorm.DB
}

type AdminDashboardStats struct {
	TotalProducts         int64           `json:"total_products"`
	ActiveProducts        int64           `json:"active_products"`
	LowStockProducts      int64           `json:"low_stock_products"`
	TotalOrders           int64           `json:"total_orders"`
	OrdersThisMonth       int64           `json:"orders_this_month"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	MonthlyRevenue        decimal.Decimal `json:"monthly_revenue"`
	RevenueGrowth         decimal.Decimal `json:"revenue_growth"`
	TotalCustomers        int64           `json:"total_customers"`
	NewCustomersThisMonth int64           `json:"new_customers_this_month"`
	RecentOrders          []models.Order  `json:"recent_orders"`
}

type AdminOrderFilter struct {
	utils.PaginationParams
	Status *models.OrderStatus `json:"status,omitempty"`
	UserID *uuid.UUID          `json:"user_id,omitempty"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role *models.UserRole `json:"role,omitempty"`
}

type AdminAuditFilter struct {
	utils.PaginationParams
	ResourceType string     `json:"resource_type,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminDashboardStats{RecentOrders: []models.Order{}}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	// Catalog statistics
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, apperrors.Persistence(err, "count products")
	}
	db.Model(&models.Product{}).Where("is_active = ?", true).Count(&stats.ActiveProducts)
	db.Model(&models.Product{}).
		Where("is_active = ? AND quantity <= ?", true, lowStockThreshold).
		Count(&stats.LowStockProducts)

	// Order statistics
	db.Model(&models.Order{}).Count(&stats.TotalOrders)
	db.Model(&models.Order{}).Where("created_at >= ?", monthStart).Count(&stats.OrdersThisMonth)

	// Revenue statistics
	var err error
	if stats.TotalRevenue, err = s.revenue(db, time.Time{}, time.Time{}); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.revenue(db, monthStart, time.Time{}); err != nil {
		return nil, err
	}
	lastMonthRevenue, err := s.revenue(db, lastMonthStart, monthStart)
	if err != nil {
		return nil, err
	}
	if lastMonthRevenue.IsPositive() {
		stats.RevenueGrowth = stats.MonthlyRevenue.Sub(lastMonthRevenue).
			Div(lastMonthRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}

	// Customer statistics
	db.Model(&models.User{}).Where("role = ?", models.UserRoleCustomer).Count(&stats.TotalCustomers)
	db.Model(&models.User{}).
		Where("role = ? AND created_at >= ?", models.UserRoleCustomer, monthStart).
		Count(&stats.NewCustomersThisMonth)

	if err := db.Preload("User").Order("created_at DESC").Order("id").
		Limit(recentOrdersOnDash).Find(&stats.RecentOrders).Error; err != nil {
		return nil, apperrors.Persistence(err, "fetch recent orders")
	}

	return stats, nil
}

// revenue sums paid order totals in [from, to); zero bounds are open
func (s *AdminService) revenue(db *gorm.DB, from, to time.Time) (decimal.Decimal, error) {
	query := db.Model(&models.Order{}).
		Where("payment_status = ? AND status <> ?", models.PaymentStatusPaid, models.OrderStatusCancelled)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(total)").Row().Scan(&total); err != nil {
		return decimal.Zero, apperrors.Persistence(err, "sum revenue")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Order Management
func (s *AdminService) GetOrders(ctx context.Context, filter AdminOrderFilter) ([]models.Order, int64, error) {
	filter.PaginationParams = utils.NormalizePagination(filter.PaginationParams)
	query := s.db.WithContext(ctx).Model(&models.Order{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("order_number LIKE ?", "%"+strings.ToUpper(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "count orders")
	}

	allowedSortFields := []string{"created_at", "total", "order_number", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query.Order("id"), filter.PaginationParams)

	orders := []models.Order{}
	if err := query.Preload("User").Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "fetch orders")
	}

	return orders, total, nil
}

func (s *AdminService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Items").Preload("ShippingAddress").Preload("BillingAddress").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, lookupError(err, apperrors.ErrOrderNotFound, "find order")
	}
	return &order, nil
}

// User Management
func (s *AdminService) GetUsers(ctx context.Context, filter AdminUserFilter) ([]models.User, int64, error) {
	filter.PaginationParams = utils.NormalizePagination(filter.PaginationParams)
	query := s.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		term := containsTerm(search)
		query = query.Where(s.db.Where(foldedLike(s.db, "email"), term).Or(foldedLike(s.db, "full_name"), term))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "count users")
	}

	allowedSortFields := []string{"created_at", "email", "full_name", "last_login_at"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query.Order("id"), filter.PaginationParams)

	users := []models.User{}
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "fetch users")
	}

	return users, total, nil
}

// Audit Trail
func (s *AdminService) GetAuditLogs(ctx context.Context, filter AdminAuditFilter) ([]models.AuditLog, int64, error) {
	filter.PaginationParams = utils.NormalizePagination(filter.PaginationParams)
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "count audit logs")
	}

	logs := []models.AuditLog{}
	err := utils.ApplyPagination(query.Order("created_at DESC").Order("id"), filter.PaginationParams).
		Preload("User").
		Find(&logs).Error
	if err != nil {
		return nil, 0, apperrors.Persistence(err, "fetch audit logs")
	}

	return logs, total, nil
}
