package orders

import (
	"testing"

	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLines_SkipsVanishedProducts(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 5},
	}
	prices := map[int64]decimal.Decimal{1: decimal.RequireFromString("10.00")}

	got := PriceLines(lines, prices)

	assert.Equal(t, "30.00", got.Total.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1), *got.Items[0].ProductID)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.Equal(t, "10.00", got.Items[0].Price.StringFixed(2))
	assert.Equal(t, []int64{2}, got.Skipped)
}

func TestPriceLines_DecimalExact(t *testing.T) {
	lines := []models.CartLine{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}}
	prices := map[int64]decimal.Decimal{
		1: decimal.RequireFromString("0.10"),
		2: decimal.RequireFromString("0.20"),
	}

	got := PriceLines(lines, prices)
	assert.Equal(t, "0.50", got.Total.StringFixed(2))
	assert.Empty(t, got.Skipped)
}
