package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/la-fiesta/storefront/internal/domain"
	"github.com/la-fiesta/storefront/internal/repositories"
)

var (
	// ErrCartNotFound indicates the requested cart does not exist.
	ErrCartNotFound = errors.New("cart service: not found")
	// ErrCartInvalidInput indicates the caller supplied invalid input.
	ErrCartInvalidInput = errors.New("cart service: invalid input")

	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartFinderRequired     = errors.New("cart service: product finder is required")
)

// productFinder resolves catalog products for cart additions.
type productFinder interface {
	ProductByID(ctx context.Context, id string) (domain.Product, error)
}

// CartServiceDeps wires the store, catalog lookup and policy inputs for cart
// operations.
type CartServiceDeps struct {
	Repository  repositories.CartRepository
	Products    productFinder
	TaxRate     float64
	Clock       func() time.Time
	IDGenerator func() string
	Logger      *zap.Logger
}

type cartService struct {
	repo     repositories.CartRepository
	products productFinder
	taxRate  float64
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Products == nil {
		return nil, errCartFinderRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &cartService{
		repo:     deps.Repository,
		products: deps.Products,
		taxRate:  deps.TaxRate,
		now:      func() time.Time { return clock().UTC() },
		newID:    idGen,
		logger:   logger,
	}, nil
}

// CoerceQuantity applies the storefront's quantity input policy: values are
// truncated to integers and anything that is not a positive finite number
// becomes 1.
func CoerceQuantity(raw any) int {
	switch v := raw.(type) {
	case int:
		if v < 1 {
			return 1
		}
		return v
	case int64:
		return CoerceQuantity(int(v))
	case float64:
		if v != v || v < 1 || v > float64(int(^uint(0)>>1)) {
			return 1
		}
		return int(v)
	case string:
		parsed, err := parseLooseInt(v)
		if err != nil || parsed < 1 {
			return 1
		}
		return parsed
	default:
		return 1
	}
}

func parseLooseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return 0, err
	}
	return int(f), nil
}

func (s *cartService) CreateCart(ctx context.Context) (CartView, error) {
	now := s.now()
	cart := domain.Cart{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.repo.Create(ctx, cart)
	if err != nil {
		return CartView{}, fmt.Errorf("cart service: create: %w", err)
	}

	s.logger.Info("cart created", zap.String("cart_id", stored.ID))
	return s.view(stored), nil
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (CartView, error) {
	cart, err := s.repo.Get(ctx, strings.TrimSpace(cartID))
	if err != nil {
		return CartView{}, s.wrapRepoError(err)
	}
	return s.view(cart), nil
}

func (s *cartService) AddItem(ctx context.Context, cartID, productID string, quantity int) (CartView, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartView{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return CartView{}, err
	}

	cart, err := s.repo.Update(ctx, strings.TrimSpace(cartID), func(cart *domain.Cart) error {
		for i := range cart.Lines {
			if cart.Lines[i].Product.ID == productID {
				cart.Lines[i].Quantity += quantity
				cart.UpdatedAt = s.now()
				return nil
			}
		}
		cart.Lines = append(cart.Lines, domain.CartLine{Product: product, Quantity: quantity})
		cart.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return CartView{}, s.wrapRepoError(err)
	}
	return s.view(cart), nil
}

func (s *cartService) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (CartView, error) {
	productID = strings.TrimSpace(productID)
	if quantity < 1 {
		quantity = 1
	}

	cart, err := s.repo.Update(ctx, strings.TrimSpace(cartID), func(cart *domain.Cart) error {
		for i := range cart.Lines {
			if cart.Lines[i].Product.ID == productID {
				cart.Lines[i].Quantity = quantity
				cart.UpdatedAt = s.now()
				return nil
			}
		}
		return fmt.Errorf("%w: product %s not in cart", ErrCartInvalidInput, productID)
	})
	if err != nil {
		return CartView{}, s.wrapRepoError(err)
	}
	return s.view(cart), nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID string) (CartView, error) {
	productID = strings.TrimSpace(productID)

	cart, err := s.repo.Update(ctx, strings.TrimSpace(cartID), func(cart *domain.Cart) error {
		for i := range cart.Lines {
			if cart.Lines[i].Product.ID == productID {
				cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
				cart.UpdatedAt = s.now()
				return nil
			}
		}
		// Removing an absent line is a no-op.
		return nil
	})
	if err != nil {
		return CartView{}, s.wrapRepoError(err)
	}
	return s.view(cart), nil
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) (CartView, error) {
	cart, err := s.repo.Update(ctx, strings.TrimSpace(cartID), func(cart *domain.Cart) error {
		cart.Lines = nil
		cart.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return CartView{}, s.wrapRepoError(err)
	}
	return s.view(cart), nil
}

func (s *cartService) view(cart domain.Cart) CartView {
	return CartView{Cart: cart, Totals: cart.Totals(s.taxRate)}
}

func (s *cartService) wrapRepoError(err error) error {
	if errors.Is(err, repositories.ErrCartNotFound) {
		return ErrCartNotFound
	}
	return err
}
