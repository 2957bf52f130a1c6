package catalog

import (
	"sort"
	"strings"

	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// Apply filters and sorts products according to q. The input slice is left untouched.
func Apply(products []models.Product, q models.ProductQuery) []models.Product {
	result := make([]models.Product, 0, len(products))
	term := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if q.Category != "" && q.Category != AllCategories && p.Category != q.Category {
			continue
		}
		result = append(result, p)
	}

	var less func(a, b models.Product) bool
	switch q.Sort {
	case enum.ProductSortPriceLow:
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	case enum.ProductSortPriceHigh:
		less = func(a, b models.Product) bool { return a.Price.GreaterThan(b.Price) }
	case enum.ProductSortRating:
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b models.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
	sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })

	return result
}

// Categories returns the distinct categories in first-seen order.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Featured returns the n best rated products.
func Featured(products []models.Product, n int) []models.Product {
	top := Apply(products, models.ProductQuery{Sort: enum.ProductSortRating})
	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}
