package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/la-fiesta/storefront/internal/platform/httpx"
	"github.com/la-fiesta/storefront/internal/services"
)

// CheckoutHandlers turns a cart into the outbound messaging handoff.
type CheckoutHandlers struct {
	carts  services.CartService
	orders services.OrderService
}

// NewCheckoutHandlers constructs the checkout handler over the cart and
// order services.
func NewCheckoutHandlers(carts services.CartService, orders services.OrderService) *CheckoutHandlers {
	return &CheckoutHandlers{
		carts:  carts,
		orders: orders,
	}
}

// Routes wires the checkout verb onto the api router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/carts/{cartId}:checkout", h.checkout)
}

func (h *CheckoutHandlers) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil || h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is unavailable", http.StatusServiceUnavailable))
		return
	}

	cartID := strings.TrimSpace(chi.URLParam(r, "cartId"))
	if cartID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cart id is required", http.StatusBadRequest))
		return
	}

	view, err := h.carts.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, services.ErrCartNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("cart_not_found", "cart not found", http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("checkout_failed", "failed to load cart", http.StatusInternalServerError))
		return
	}

	order, err := h.orders.BuildOrder(ctx, view.Cart)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "cart has no items to send", http.StatusConflict))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("checkout_failed", "failed to build order", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, checkoutResponse{
		Message:  order.Text,
		Link:     order.Link,
		Subtotal: order.Totals.Subtotal,
		Tax:      order.Totals.Tax,
		Total:    order.Totals.Total,
	})
}

type checkoutResponse struct {
	Message  string  `json:"message"`
	Link     string  `json:"link"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}
