// internal/services/order_number.go
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/database"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// OrderNumberGenerator mints human-readable unique order numbers
type OrderNumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// SequenceOrderNumbers draws from a PostgreSQL sequence: ORD-20240131-000042
type SequenceOrderNumbers struct {
	db     *gorm.DB
	prefix string
	now    func() time.Time
}

func NewSequenceOrderNumbers(db *gorm.DB, prefix string) *SequenceOrderNumbers {
	return &SequenceOrderNumbers{db: db, prefix: prefix, now: time.Now}
}

func (g *SequenceOrderNumbers) Next(ctx context.Context) (string, error) {
	var seq int64
	if err := g.db.WithContext(ctx).Raw("SELECT nextval(?)", database.OrderNumberSequence).Scan(&seq).Error; err != nil {
		return "", fmt.Errorf("failed to draw order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%06d", g.prefix, g.now().UTC().Format("20060102"), seq), nil
}

// RandomOrderNumbers needs no database support: ORD-20240131-7KQ2M9XD
type RandomOrderNumbers struct {
	prefix string
	now    func() time.Time
}

func NewRandomOrderNumbers(prefix string) *RandomOrderNumbers {
	return &RandomOrderNumbers{prefix: prefix, now: time.Now}
}

func (g *RandomOrderNumbers) Next(ctx context.Context) (string, error) {
	code, err := utils.GenerateReferenceCode(8)
	if err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", g.prefix, g.now().UTC().Format("20060102"), code), nil
}

func NewOrderNumberGenerator(db *gorm.DB, cfg config.CheckoutConfig) OrderNumberGenerator {
	if cfg.OrderNumberStrategy == "sequence" {
		return NewSequenceOrderNumbers(db, cfg.OrderNumberPrefix)
	}
	return NewRandomOrderNumbers(cfg.OrderNumberPrefix)
}
