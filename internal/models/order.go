// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Address struct {
	BaseModel
	UserID     uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Type       AddressType `json:"type" gorm:"type:varchar(20);not null"`
	FullName   string      `json:"full_name" gorm:"size:255;not null"`
	Line1      string      `json:"address_line1" gorm:"column:address_line1;size:255;not null"`
	Line2      string      `json:"address_line2,omitempty" gorm:"column:address_line2;size:255"`
	City       string      `json:"city" gorm:"size:100;not null"`
	State      string      `json:"state" gorm:"size:100;not null"`
	PostalCode string      `json:"postal_code" gorm:"size:20;not null"`
	Country    string      `json:"country" gorm:"size:100;not null"`
	Phone      string      `json:"phone,omitempty" gorm:"size:50"`
	IsDefault  bool        `json:"is_default" gorm:"not null"`
}

type Order struct {
	BaseModel
	UserID            uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	OrderNumber       string          `json:"order_number" gorm:"uniqueIndex;size:50;not null"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'processing';index"`
	Subtotal          decimal.Decimal `json:"subtotal" gorm:"type:numeric;not null"`
	Tax               decimal.Decimal `json:"tax" gorm:"type:numeric;not null"`
	Shipping          decimal.Decimal `json:"shipping" gorm:"type:numeric;not null"`
	Total             decimal.Decimal `json:"total" gorm:"type:numeric;not null"`
	ShippingAddressID *uuid.UUID      `json:"shipping_address_id" gorm:"type:uuid"`
	BillingAddressID  *uuid.UUID      `json:"billing_address_id" gorm:"type:uuid"`
	PaymentStatus     PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null"`
	PaymentMethod     string          `json:"payment_method" gorm:"size:50"`
	Notes             string          `json:"notes,omitempty" gorm:"type:text"`
	Metadata          JSONB           `json:"metadata"`

	// Relationships
	User            *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ShippingAddress *Address    `json:"shipping_address,omitempty" gorm:"foreignKey:ShippingAddressID"`
	BillingAddress  *Address    `json:"billing_address,omitempty" gorm:"foreignKey:BillingAddressID"`
	Items           []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem freezes the product name and unit price at the time of purchase.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `json:"product_id" gorm:"type:uuid;index"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric;not null"`
}
