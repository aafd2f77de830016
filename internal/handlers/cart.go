package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/la-fiesta/storefront/internal/platform/httpx"
	"github.com/la-fiesta/storefront/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the session cart endpoints.
type CartHandlers struct {
	carts services.CartService
}

// NewCartHandlers constructs handlers over the cart service.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the cart endpoints onto the api router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/carts", h.createCart)
	r.Get("/carts/{cartId}", h.getCart)
	r.Post("/carts/{cartId}/items", h.addItem)
	r.Patch("/carts/{cartId}/items/{productId}", h.setQuantity)
	r.Delete("/carts/{cartId}/items/{productId}", h.removeItem)
	r.Delete("/carts/{cartId}/items", h.clearCart)
}

func (h *CartHandlers) createCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	view, err := h.carts.CreateCart(ctx)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildCartPayload(view))
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cartID := strings.TrimSpace(chi.URLParam(r, "cartId"))
	if cartID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cart id is required", http.StatusBadRequest))
		return
	}

	view, err := h.carts.GetCart(ctx, cartID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cartID := strings.TrimSpace(chi.URLParam(r, "cartId"))
	if cartID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cart id is required", http.StatusBadRequest))
		return
	}

	req, err := h.readItemRequest(r)
	if err != nil {
		h.writeBodyError(ctx, w, err)
		return
	}
	if req.ProductID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId is required", http.StatusBadRequest))
		return
	}

	view, err := h.carts.AddItem(ctx, cartID, req.ProductID, services.CoerceQuantity(req.Quantity))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) setQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cartID := strings.TrimSpace(chi.URLParam(r, "cartId"))
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if cartID == "" || productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cart id and product id are required", http.StatusBadRequest))
		return
	}

	req, err := h.readItemRequest(r)
	if err != nil {
		h.writeBodyError(ctx, w, err)
		return
	}

	view, err := h.carts.SetQuantity(ctx, cartID, productID, services.CoerceQuantity(req.Quantity))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cartID := strings.TrimSpace(chi.URLParam(r, "cartId"))
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if cartID == "" || productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cart id and product id are required", http.StatusBadRequest))
		return
	}

	view, err := h.carts.RemoveItem(ctx, cartID, productID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cartID := strings.TrimSpace(chi.URLParam(r, "cartId"))
	if cartID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cart id is required", http.StatusBadRequest))
		return
	}

	view, err := h.carts.ClearCart(ctx, cartID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  any    `json:"quantity"`
}

func (h *CartHandlers) readItemRequest(r *http.Request) (cartItemRequest, error) {
	var req cartItemRequest
	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid JSON payload: %w", err)
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	return req, nil
}

func (h *CartHandlers) writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCartNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_not_found", "cart not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to update cart", http.StatusInternalServerError))
	}
}

type cartLinePayload struct {
	Product  productPayload `json:"product"`
	Quantity int            `json:"quantity"`
}

type cartPayload struct {
	ID        string            `json:"id"`
	Lines     []cartLinePayload `json:"lines"`
	Subtotal  float64           `json:"subtotal"`
	Tax       float64           `json:"tax"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

func buildCartPayload(view services.CartView) cartPayload {
	lines := make([]cartLinePayload, 0, len(view.Cart.Lines))
	count := 0
	for _, line := range view.Cart.Lines {
		count += line.Quantity
		lines = append(lines, cartLinePayload{
			Product:  buildProductPayload(line.Product),
			Quantity: line.Quantity,
		})
	}
	return cartPayload{
		ID:        view.Cart.ID,
		Lines:     lines,
		Subtotal:  view.Totals.Subtotal,
		Tax:       view.Totals.Tax,
		Total:     view.Totals.Total,
		ItemCount: count,
		CreatedAt: view.Cart.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: view.Cart.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
