package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductDiscountPercent(t *testing.T) {
	price := decimal.RequireFromString("75")
	compare := decimal.RequireFromString("100")
	lower := decimal.RequireFromString("50")
	odd := decimal.RequireFromString("29.99")

	assert.Equal(t, 25, (&Product{Price: price, CompareAtPrice: &compare}).DiscountPercent())
	assert.Equal(t, 0, (&Product{Price: price}).DiscountPercent())
	assert.Equal(t, 0, (&Product{Price: price, CompareAtPrice: &lower}).DiscountPercent())
	// (29.99 - 19.99) / 29.99 = 33.34%
	assert.Equal(t, 33, (&Product{Price: decimal.RequireFromString("19.99"), CompareAtPrice: &odd}).DiscountPercent())
}

func TestJSONBScan(t *testing.T) {
	var j JSONB
	assert.NoError(t, j.Scan(`{"color":"red"}`))
	assert.Equal(t, "red", j["color"])

	assert.NoError(t, j.Scan([]byte(`{"size":2}`)))
	assert.Equal(t, float64(2), j["size"])

	assert.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	assert.Error(t, j.Scan(42))
}

func TestStringArrayRoundTrip(t *testing.T) {
	in := StringArray{"https://cdn/a.png", "https://cdn/b c.png"}
	v, err := in.Value()
	assert.NoError(t, err)

	var out StringArray
	assert.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)
}
