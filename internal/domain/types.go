package domain

import "time"

// SortOrder enumerates the catalog sort modes accepted by the query engine.
type SortOrder string

const (
	SortDefault    SortOrder = "default"
	SortPriceAsc   SortOrder = "price-asc"
	SortPriceDesc  SortOrder = "price-desc"
	SortPromoFirst SortOrder = "promo-first"
)

const (
	// CategoryAll is the sentinel category value meaning "no category filter".
	CategoryAll = "Todos"
	// CategoryNone labels products whose source rows carry no category.
	CategoryNone = "Sin categoría"
)

// Product is a catalog entry normalised from a spreadsheet or JSON source.
// Products are immutable once normalised and are re-created wholesale on
// every catalog reload.
type Product struct {
	ID          string
	Name        string
	Price       float64
	Short       string
	Description string
	Category    string
	Image       string
	Promo       *float64
	PromoEnd    string
}

// HasPromo reports whether the product carries an active promotional price.
func (p Product) HasPromo() bool {
	return p.Promo != nil && *p.Promo > 0
}

// EffectivePrice returns the promotional price when one is active, otherwise
// the list price.
func (p Product) EffectivePrice() float64 {
	if p.HasPromo() {
		return *p.Promo
	}
	return p.Price
}

// Catalog holds the normalised in-memory product list for the current session.
type Catalog struct {
	Products []Product
	Source   string
	LoadedAt time.Time
}

// QueryState captures the view state driving catalog derivation. It is
// ephemeral per request and never persisted.
type QueryState struct {
	Search   string
	Category string
	Sort     SortOrder
	Page     int
	PageSize int
	MinPrice *float64
	MaxPrice *float64
}

// Page is one page of a filtered, sorted catalog view.
type Page struct {
	Products   []Product
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// CartLine pairs a product with the quantity requested. Quantity is always
// at least one.
type CartLine struct {
	Product  Product
	Quantity int
}

// Cart is an ordered ledger of cart lines. Line order is first-add order and
// at most one line exists per product id.
type Cart struct {
	ID        string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so callers can hold a cart snapshot without
// racing store mutations.
func (c Cart) Clone() Cart {
	out := c
	out.Lines = append([]CartLine(nil), c.Lines...)
	return out
}

// CartTotals summarises the derived monetary totals of a cart.
type CartTotals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}
