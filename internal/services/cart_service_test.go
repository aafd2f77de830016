package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/la-fiesta/storefront/internal/domain"
	"github.com/la-fiesta/storefront/internal/repositories/memory"
)

type stubProductFinder struct {
	products map[string]domain.Product
}

func (f *stubProductFinder) ProductByID(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func newTestCartService(t *testing.T, products ...domain.Product) CartService {
	t.Helper()

	finder := &stubProductFinder{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		finder.products[p.ID] = p
	}

	counter := 0
	service, err := NewCartService(CartServiceDeps{
		Repository: memory.NewCartRepository(),
		Products:   finder,
		TaxRate:    0.12,
		Clock:      func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) },
		IDGenerator: func() string {
			counter++
			return "cart-" + string(rune('0'+counter))
		},
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}
	return service
}

func TestCartServiceAddIncrementsExistingLine(t *testing.T) {
	service := newTestCartService(t, domain.Product{ID: "1", Name: "Paleta", Price: 7})
	ctx := context.Background()

	view, err := service.CreateCart(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.AddItem(ctx, view.Cart.ID, "1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err = service.AddItem(ctx, view.Cart.ID, "1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Cart.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(view.Cart.Lines))
	}
	if view.Cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", view.Cart.Lines[0].Quantity)
	}
}

func TestCartServicePreservesInsertionOrder(t *testing.T) {
	service := newTestCartService(t,
		domain.Product{ID: "1", Name: "Paleta", Price: 7},
		domain.Product{ID: "2", Name: "Caja", Price: 45},
		domain.Product{ID: "3", Name: "Chicles", Price: 12},
	)
	ctx := context.Background()

	view, _ := service.CreateCart(ctx)
	for _, id := range []string{"2", "1", "3"} {
		if _, err := service.AddItem(ctx, view.Cart.ID, id, 1); err != nil {
			t.Fatalf("unexpected error adding %s: %v", id, err)
		}
	}
	// Re-adding must not move the line.
	final, err := service.AddItem(ctx, view.Cart.ID, "2", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var order []string
	for _, line := range final.Cart.Lines {
		order = append(order, line.Product.ID)
	}
	want := []string{"2", "1", "3"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected line order %v, want %v", order, want)
		}
	}
}

func TestCartServiceSetQuantityCoercion(t *testing.T) {
	service := newTestCartService(t, domain.Product{ID: "1", Name: "Paleta", Price: 7})
	ctx := context.Background()

	view, _ := service.CreateCart(ctx)
	if _, err := service.AddItem(ctx, view.Cart.ID, "1", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := service.SetQuantity(ctx, view.Cart.ID, "1", -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Lines[0].Quantity != 1 {
		t.Fatalf("expected quantity coerced to 1, got %d", view.Cart.Lines[0].Quantity)
	}

	view, err = service.SetQuantity(ctx, view.Cart.ID, "1", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Lines[0].Quantity != 42 {
		t.Fatalf("expected quantity 42, got %d", view.Cart.Lines[0].Quantity)
	}
}

func TestCoerceQuantity(t *testing.T) {
	cases := []struct {
		raw  any
		want int
	}{
		{raw: 3, want: 3},
		{raw: -5, want: 1},
		{raw: 0, want: 1},
		{raw: 2.9, want: 2},
		{raw: "4", want: 4},
		{raw: "abc", want: 1},
		{raw: "", want: 1},
		{raw: nil, want: 1},
		{raw: math.NaN(), want: 1},
		{raw: math.Inf(1), want: 1},
		{raw: true, want: 1},
	}
	for _, tc := range cases {
		if got := CoerceQuantity(tc.raw); got != tc.want {
			t.Fatalf("CoerceQuantity(%v) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestCartServiceRemoveAndClear(t *testing.T) {
	service := newTestCartService(t,
		domain.Product{ID: "1", Name: "Paleta", Price: 7},
		domain.Product{ID: "2", Name: "Caja", Price: 45},
	)
	ctx := context.Background()

	view, _ := service.CreateCart(ctx)
	_, _ = service.AddItem(ctx, view.Cart.ID, "1", 1)
	_, _ = service.AddItem(ctx, view.Cart.ID, "2", 1)

	view, err := service.RemoveItem(ctx, view.Cart.ID, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Lines) != 1 || view.Cart.Lines[0].Product.ID != "2" {
		t.Fatalf("unexpected lines after remove: %+v", view.Cart.Lines)
	}

	// Removing an absent line is a no-op.
	view, err = service.RemoveItem(ctx, view.Cart.ID, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Lines) != 1 {
		t.Fatalf("no-op remove changed the cart: %+v", view.Cart.Lines)
	}

	view, err = service.ClearCart(ctx, view.Cart.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", view.Cart.Lines)
	}
}

func TestCartServiceTotals(t *testing.T) {
	service := newTestCartService(t, domain.Product{ID: "1", Name: "Paleta", Price: 7})
	ctx := context.Background()

	view, _ := service.CreateCart(ctx)
	view, err := service.AddItem(ctx, view.Cart.ID, "1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Totals.Subtotal != 21 {
		t.Fatalf("expected subtotal 21, got %v", view.Totals.Subtotal)
	}
	if view.Totals.Tax != 2.52 {
		t.Fatalf("expected tax 2.52, got %v", view.Totals.Tax)
	}
	if view.Totals.Total != 23.52 {
		t.Fatalf("expected total 23.52, got %v", view.Totals.Total)
	}
}

func TestCartServiceTotalsUseEffectivePrice(t *testing.T) {
	service := newTestCartService(t, domain.Product{ID: "1", Name: "Caja", Price: 45, Promo: promoPtr(30)})
	ctx := context.Background()

	view, _ := service.CreateCart(ctx)
	view, err := service.AddItem(ctx, view.Cart.ID, "1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Totals.Subtotal != 60 {
		t.Fatalf("expected subtotal from promo price, got %v", view.Totals.Subtotal)
	}
}

func TestCartServiceUnknownCart(t *testing.T) {
	service := newTestCartService(t, domain.Product{ID: "1", Name: "Paleta", Price: 7})
	ctx := context.Background()

	if _, err := service.GetCart(ctx, "nope"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	if _, err := service.AddItem(ctx, "nope", "1", 1); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartServiceUnknownProduct(t *testing.T) {
	service := newTestCartService(t)
	ctx := context.Background()

	view, _ := service.CreateCart(ctx)
	if _, err := service.AddItem(ctx, view.Cart.ID, "missing", 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
