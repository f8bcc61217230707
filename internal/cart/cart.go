package cart

import (
	"math"

	"github.com/matthieukhl/shopfront/internal/models"
)

// MaxQuantity is the largest quantity a line may hold. order_items.quantity
// is a signed 32-bit INT.
const MaxQuantity = math.MaxInt32

// Add merges delta into the line for productID. An existing line becomes
// existing+delta and a new line starts at delta; either way the result is
// kept within [1, MaxQuantity]. The input slice is not modified.
func Add(lines []models.CartLine, productID int64, delta int) []models.CartLine {
	out := make([]models.CartLine, len(lines), len(lines)+1)
	copy(out, lines)

	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = clampQuantity(addSaturating(out[i].Quantity, delta, MaxQuantity))
			return out
		}
	}

	return append(out, models.CartLine{ProductID: productID, Quantity: clampQuantity(delta)})
}

// Remove drops every line for productID, keeping the rest in order.
func Remove(lines []models.CartLine, productID int64) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}

// Normalize folds duplicate product ids into their first occurrence by
// summing quantities. Sums saturate at math.MaxInt rather than wrapping;
// callers validate the result against MaxQuantity.
func Normalize(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity = addSaturating(out[i].Quantity, l.Quantity, math.MaxInt)
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

func clampQuantity(q int) int {
	return min(max(1, q), MaxQuantity)
}

// addSaturating returns a+b, or limit when the sum would exceed it.
func addSaturating(a, b, limit int) int {
	if b > 0 && a > limit-b {
		return limit
	}
	return a + b
}
