package catalog

import (
	"strings"

	"github.com/matthieukhl/shopfront/internal/models"
)

// matches reports whether term occurs, case-insensitively, in the product
// name, description or any single tag.
func matches(p models.Product, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// likePattern builds a LIKE pattern that matches term literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
