package services

import (
	"context"

	"github.com/la-fiesta/storefront/internal/domain"
)

// CatalogService owns the in-memory catalog and its derived views.
type CatalogService interface {
	// Load populates the catalog from the configured sources. A total source
	// failure is not an error; it results in an empty catalog.
	Load(ctx context.Context) error

	// Products derives a filtered, sorted, paginated catalog view.
	Products(ctx context.Context, state domain.QueryState) (domain.Page, error)

	// Categories returns the category navigation entries.
	Categories(ctx context.Context) ([]string, error)

	// ProductByID resolves a product from the loaded catalog.
	ProductByID(ctx context.Context, id string) (domain.Product, error)

	// Snapshot returns the loaded catalog metadata for health reporting.
	Snapshot(ctx context.Context) (domain.Catalog, error)
}

// CartService is the ledger of session carts and the only mutation entry
// point for cart state.
type CartService interface {
	CreateCart(ctx context.Context) (CartView, error)
	GetCart(ctx context.Context, cartID string) (CartView, error)

	// AddItem appends a line for the product or increments an existing one.
	AddItem(ctx context.Context, cartID, productID string, quantity int) (CartView, error)

	// SetQuantity replaces a line's quantity; non-positive input coerces to 1.
	SetQuantity(ctx context.Context, cartID, productID string, quantity int) (CartView, error)

	RemoveItem(ctx context.Context, cartID, productID string) (CartView, error)
	ClearCart(ctx context.Context, cartID string) (CartView, error)
}

// OrderService renders a cart into the outbound order handoff.
type OrderService interface {
	// BuildOrder formats the order text and messaging deep-link for a cart.
	// An empty cart yields ErrEmptyCart; the link must then never be opened.
	BuildOrder(ctx context.Context, cart domain.Cart) (Order, error)
}

// CartView pairs a cart snapshot with its derived totals.
type CartView struct {
	Cart   domain.Cart
	Totals domain.CartTotals
}

// Order is the formatted checkout handoff.
type Order struct {
	Text   string
	Link   string
	Totals domain.CartTotals
}
