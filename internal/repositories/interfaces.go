package repositories

import (
	"context"
	"errors"

	"github.com/la-fiesta/storefront/internal/domain"
)

// ErrCartNotFound indicates the requested cart does not exist in the store.
var ErrCartNotFound = errors.New("repositories: cart not found")

// CartRepository stores session carts. Carts live in memory only; their
// lifetime is the process lifetime.
type CartRepository interface {
	// Create persists a new cart and returns the stored snapshot.
	Create(ctx context.Context, cart domain.Cart) (domain.Cart, error)

	// Get returns a snapshot of the cart, or ErrCartNotFound.
	Get(ctx context.Context, cartID string) (domain.Cart, error)

	// Update applies mutate to the stored cart under the store's lock and
	// returns the resulting snapshot. Mutate must not retain references to
	// the cart after returning.
	Update(ctx context.Context, cartID string, mutate func(cart *domain.Cart) error) (domain.Cart, error)
}
