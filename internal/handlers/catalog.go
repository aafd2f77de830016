package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/la-fiesta/storefront/internal/domain"
	"github.com/la-fiesta/storefront/internal/platform/httpx"
	"github.com/la-fiesta/storefront/internal/platform/pagination"
	"github.com/la-fiesta/storefront/internal/services"
)

// CatalogHandlers exposes the public catalog browse endpoints and the reload
// verb the storefront shell calls on session start.
type CatalogHandlers struct {
	catalog services.CatalogService
	paging  pagination.Options
}

// NewCatalogHandlers constructs handlers over the catalog service. A zero
// pagination.Options falls back to the package defaults.
func NewCatalogHandlers(catalog services.CatalogService, paging pagination.Options) *CatalogHandlers {
	return &CatalogHandlers{
		catalog: catalog,
		paging:  paging,
	}
}

// Routes wires the catalog endpoints onto the api router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/catalog/products", h.listProducts)
	r.Get("/catalog/categories", h.listCategories)
	r.Post("/catalog:reload", h.reload)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	state := pagination.FromRequest(r, h.paging)
	page, err := h.catalog.Products(ctx, state)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_query_failed", "failed to query catalog", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, buildPagePayload(page))
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_query_failed", "failed to list categories", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, categoriesResponse{Categories: categories})
}

func (h *CatalogHandlers) reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.catalog.Load(ctx); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_reload_failed", "failed to reload catalog", http.StatusInternalServerError))
		return
	}

	snapshot, err := h.catalog.Snapshot(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_reload_failed", "failed to read catalog snapshot", http.StatusInternalServerError))
		return
	}

	payload := reloadResponse{
		Source:       snapshot.Source,
		ProductCount: len(snapshot.Products),
	}
	if !snapshot.LoadedAt.IsZero() {
		payload.LoadedAt = snapshot.LoadedAt.UTC().Format(time.RFC3339)
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

type productPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Short       string   `json:"short,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Promo       *float64 `json:"promo,omitempty"`
	PromoEnd    string   `json:"promoEnd,omitempty"`
}

type pageResponse struct {
	Items      []productPayload `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type reloadResponse struct {
	Source       string `json:"source"`
	LoadedAt     string `json:"loadedAt,omitempty"`
	ProductCount int    `json:"productCount"`
}

func buildProductPayload(p domain.Product) productPayload {
	return productPayload{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Short:       p.Short,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Promo:       p.Promo,
		PromoEnd:    p.PromoEnd,
	}
}

func buildPagePayload(page domain.Page) pageResponse {
	items := make([]productPayload, 0, len(page.Products))
	for _, p := range page.Products {
		items = append(items, buildProductPayload(p))
	}
	return pageResponse{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}
