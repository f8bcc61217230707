package orders

import (
	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/shopspring/decimal"
)

// Priced is a cart priced against the catalog at checkout time.
type Priced struct {
	Items   []models.OrderItem
	Total   decimal.Decimal
	Skipped []int64
}

// PriceLines freezes the current price of every line whose product still
// exists. Lines for products missing from prices are skipped and reported.
func PriceLines(lines []models.CartLine, prices map[int64]decimal.Decimal) Priced {
	out := Priced{
		Items: make([]models.OrderItem, 0, len(lines)),
		Total: decimal.Zero,
	}
	for _, l := range lines {
		price, ok := prices[l.ProductID]
		if !ok {
			out.Skipped = append(out.Skipped, l.ProductID)
			continue
		}
		productID := l.ProductID
		out.Items = append(out.Items, models.OrderItem{
			ProductID: &productID,
			Quantity:  l.Quantity,
			Price:     price,
		})
		out.Total = out.Total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return out
}
