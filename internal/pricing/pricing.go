// internal/pricing/pricing.go
package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	DefaultTaxRate      = decimal.RequireFromString("0.10")
	DefaultShippingFlat = decimal.RequireFromString("10.00")
)

// Line is the priced view of one cart line
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Rounded returns the breakdown rounded to cents for display only
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		Subtotal: b.Subtotal.Round(2),
		Tax:      b.Tax.Round(2),
		Shipping: b.Shipping.Round(2),
		Total:    b.Total.Round(2),
	}
}

// Calculator applies a flat tax rate and a flat shipping fee. The shipping
// fee applies to every order, including an empty one.
type Calculator struct {
	TaxRate      decimal.Decimal
	ShippingFlat decimal.Decimal
}

func NewCalculator(taxRate, shippingFlat decimal.Decimal) *Calculator {
	return &Calculator{TaxRate: taxRate, ShippingFlat: shippingFlat}
}

func DefaultCalculator() *Calculator {
	return NewCalculator(DefaultTaxRate, DefaultShippingFlat)
}

func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}
	return subtotal
}

func (c *Calculator) Price(lines []Line) Breakdown {
	return c.PriceSubtotal(Subtotal(lines))
}

func (c *Calculator) PriceSubtotal(subtotal decimal.Decimal) Breakdown {
	tax := subtotal.Mul(c.TaxRate)
	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: c.ShippingFlat,
		Total:    subtotal.Add(tax).Add(c.ShippingFlat),
	}
}
