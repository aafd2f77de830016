// Package pagination parses grid view state from request query strings.
// Following the storefront's input policy, malformed values are coerced to
// the nearest valid value rather than rejected: the grid must always render.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/la-fiesta/storefront/internal/domain"
)

const (
	// DefaultPageSize defines the fallback number of items returned when the
	// client omits pageSize.
	DefaultPageSize = 20
	// DefaultMaxPageSize caps the supported pageSize to prevent unbounded
	// responses.
	DefaultMaxPageSize = 100

	maxSearchLength = 256
)

// Options control how Parse behaves for a given handler layer.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// FromRequest parses the supported query parameters from the supplied request.
func FromRequest(r *http.Request, opts Options) domain.QueryState {
	if r == nil {
		return Parse(url.Values{}, opts)
	}
	return Parse(r.URL.Query(), opts)
}

// Parse consumes the provided query values and returns the normalised view
// state.
func Parse(values url.Values, opts Options) domain.QueryState {
	if values == nil {
		values = url.Values{}
	}

	state := domain.QueryState{
		Search:   sanitizeSearch(values.Get("q")),
		Category: strings.TrimSpace(values.Get("category")),
		Sort:     parseSort(values.Get("sort")),
		Page:     parsePage(values.Get("page")),
		PageSize: parsePageSize(values.Get("pageSize"), opts),
		MinPrice: parsePriceBound(values.Get("minPrice")),
		MaxPrice: parsePriceBound(values.Get("maxPrice")),
	}
	return state
}

func parseSort(raw string) domain.SortOrder {
	switch domain.SortOrder(strings.TrimSpace(strings.ToLower(raw))) {
	case domain.SortPriceAsc:
		return domain.SortPriceAsc
	case domain.SortPriceDesc:
		return domain.SortPriceDesc
	case domain.SortPromoFirst:
		return domain.SortPromoFirst
	default:
		return domain.SortDefault
	}
}

func parsePage(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

func parsePageSize(raw string, opts Options) int {
	maxPageSize := opts.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	defaultPageSize := opts.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return defaultPageSize
	}
	if v > maxPageSize {
		return maxPageSize
	}
	return v
}

func parsePriceBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func sanitizeSearch(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "\n", " ")
	raw = strings.ReplaceAll(raw, "\r", " ")
	if len(raw) > maxSearchLength {
		raw = raw[:maxSearchLength]
	}
	return raw
}
