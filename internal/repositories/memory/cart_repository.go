package memory

import (
	"context"
	"sync"

	"github.com/la-fiesta/storefront/internal/domain"
	"github.com/la-fiesta/storefront/internal/repositories"
)

// CartRepository provides the in-memory cart store. All shared state is
// guarded by a single mutex; snapshots are deep-copied on the way in and out
// so callers never observe concurrent mutation.
type CartRepository struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

// NewCartRepository constructs an empty memory-backed cart store.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]domain.Cart)}
}

// Create implements repositories.CartRepository.
func (r *CartRepository) Create(_ context.Context, cart domain.Cart) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.ID] = cart.Clone()
	return cart.Clone(), nil
}

// Get implements repositories.CartRepository.
func (r *CartRepository) Get(_ context.Context, cartID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.Cart{}, repositories.ErrCartNotFound
	}
	return cart.Clone(), nil
}

// Update implements repositories.CartRepository.
func (r *CartRepository) Update(_ context.Context, cartID string, mutate func(cart *domain.Cart) error) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.Cart{}, repositories.ErrCartNotFound
	}

	working := cart.Clone()
	if err := mutate(&working); err != nil {
		return domain.Cart{}, err
	}

	r.carts[cartID] = working.Clone()
	return working.Clone(), nil
}
