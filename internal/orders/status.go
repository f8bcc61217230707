package orders

import (
	"slices"

	"github.com/matthieukhl/shopfront/internal/models"
)

// ValidStatus reports whether s is one of the four order statuses.
func ValidStatus(s string) bool {
	return slices.Contains(models.OrderStatuses, s)
}

// NextStatus returns the status following s in the lifecycle
// pending -> paid -> shipped -> delivered. Delivered is terminal.
func NextStatus(s string) (string, bool) {
	i := slices.Index(models.OrderStatuses, s)
	if i < 0 || i == len(models.OrderStatuses)-1 {
		return "", false
	}
	return models.OrderStatuses[i+1], true
}
