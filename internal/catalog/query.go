package catalog

import (
	"sort"
	"strings"

	"github.com/la-fiesta/storefront/internal/domain"
)

// DefaultPageSize is the grid page size used when the query state leaves it
// unset.
const DefaultPageSize = 20

// Query derives a filtered, sorted and paginated view of the product list.
// The derivation is pure: the input slice is never mutated and the result is
// recomputed from scratch on every call.
func Query(products []domain.Product, state domain.QueryState) domain.Page {
	filtered := filter(products, state)
	sorted := sortProducts(filtered, state.Sort)
	return paginate(sorted, state.Page, state.PageSize)
}

// Categories returns the category nav entries: the "all" sentinel followed by
// each distinct category in first-seen source order.
func Categories(products []domain.Product) []string {
	out := []string{domain.CategoryAll}
	seen := map[string]struct{}{domain.CategoryAll: {}}
	for _, p := range products {
		category := p.Category
		if category == "" {
			category = domain.CategoryNone
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, category)
	}
	return out
}

func filter(products []domain.Product, state domain.QueryState) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(state.Search))
	category := strings.TrimSpace(state.Category)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != domain.CategoryAll && p.Category != category {
			continue
		}
		if state.MinPrice != nil && p.Price < *state.MinPrice {
			continue
		}
		if state.MaxPrice != nil && p.Price > *state.MaxPrice {
			continue
		}
		if query != "" && !matchesText(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// matchesText checks the query against every user-visible text field.
func matchesText(p domain.Product, query string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Category + " " + p.Short + " " + p.Description)
	return strings.Contains(haystack, query)
}

func sortProducts(products []domain.Product, order domain.SortOrder) []domain.Product {
	out := append([]domain.Product(nil), products...)
	switch order {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectivePrice() < out[j].EffectivePrice()
		})
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectivePrice() > out[j].EffectivePrice()
		})
	case domain.SortPromoFirst:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.HasPromo() != b.HasPromo() {
				return a.HasPromo()
			}
			if a.HasPromo() {
				return a.EffectivePrice() < b.EffectivePrice()
			}
			return a.Price < b.Price
		})
	default:
		// Source order preserved.
	}
	return out
}

// paginate slices out a 1-based page, clamping an out-of-range page back to
// the last valid one so a shrinking result set never yields a silently empty
// slice.
func paginate(products []domain.Product, page, pageSize int) domain.Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(products)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return domain.Page{
		Products:   products[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
