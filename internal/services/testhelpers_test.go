package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/database"
	"github.com/javajoker/storefront-backend/internal/models"
)

var errInjected = errors.New("injected failure")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Initialize(config.DatabaseConfig{
		Driver:      "sqlite",
		SQLitePath:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New()),
		MaxLifetime: 300,
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() { database.Close(db) })

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Pricing: config.PricingConfig{
			TaxRate:      decimal.RequireFromString("0.10"),
			ShippingFlat: decimal.RequireFromString("10.00"),
		},
		Checkout: config.CheckoutConfig{
			OrderNumberStrategy: "random",
			OrderNumberPrefix:   "ORD",
			PaymentMethod:       "card",
		},
		I18n: config.I18nConfig{DefaultLocale: "en"},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, FullName: "Test User", Role: models.UserRoleCustomer}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name, price string, quantity int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%s", name, uuid.New().String()[:8]),
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// failWrites makes every create against table fail
func failWrites(t *testing.T, db *gorm.DB, table string) {
	t.Helper()

	name := "test:fail_create_" + table
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	})
	require.NoError(t, err)
}

// failDeletes makes every delete against table fail
func failDeletes(t *testing.T, db *gorm.DB, table string) {
	t.Helper()

	name := "test:fail_delete_" + table
	err := db.Callback().Delete().Before("gorm:delete").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	})
	require.NoError(t, err)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
