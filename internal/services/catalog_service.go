package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/la-fiesta/storefront/internal/catalog"
	"github.com/la-fiesta/storefront/internal/domain"
)

var (
	// ErrProductNotFound indicates the id does not resolve against the loaded
	// catalog.
	ErrProductNotFound = errors.New("catalog service: product not found")

	errCatalogLoaderRequired = errors.New("catalog service: loader is required")
)

// CatalogLoader abstracts the source pipeline feeding the catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (domain.Catalog, error)
}

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Loader CatalogLoader
	// DefaultPageSize applies when a query leaves the page size unset.
	DefaultPageSize int
	Clock           func() time.Time
	Logger          *zap.Logger
}

type catalogService struct {
	loader   CatalogLoader
	pageSize int
	clock    func() time.Time
	logger   *zap.Logger

	mu      sync.RWMutex
	catalog domain.Catalog
}

// NewCatalogService constructs the catalog service with the supplied
// dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Loader == nil {
		return nil, errCatalogLoaderRequired
	}
	pageSize := deps.DefaultPageSize
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{
		loader:   deps.Loader,
		pageSize: pageSize,
		clock:    func() time.Time { return clock().UTC() },
		logger:   logger,
	}, nil
}

// Load runs the source pipeline and atomically replaces the in-memory
// catalog. Products are re-created wholesale; nothing from the previous load
// survives.
func (s *catalogService) Load(ctx context.Context) error {
	loaded, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("catalog service: load: %w", err)
	}

	for _, p := range loaded.Products {
		// Promotions that do not undercut the list price pass through
		// unmodified; shop staff get a log line to spot the typo.
		if p.HasPromo() && *p.Promo >= p.Price {
			s.logger.Warn("promotional price not below list price",
				zap.String("product_id", p.ID),
				zap.Float64("price", p.Price),
				zap.Float64("promo", *p.Promo),
			)
		}
	}

	if loaded.LoadedAt.IsZero() {
		loaded.LoadedAt = s.clock()
	}

	s.mu.Lock()
	s.catalog = loaded
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		zap.Int("products", len(loaded.Products)),
		zap.String("source", loaded.Source),
	)
	return nil
}

func (s *catalogService) Products(_ context.Context, state domain.QueryState) (domain.Page, error) {
	if state.PageSize <= 0 {
		state.PageSize = s.pageSize
	}
	return catalog.Query(s.products(), state), nil
}

func (s *catalogService) Categories(context.Context) ([]string, error) {
	return catalog.Categories(s.products()), nil
}

func (s *catalogService) ProductByID(_ context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	for _, p := range s.products() {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

func (s *catalogService) Snapshot(context.Context) (domain.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.catalog
	snapshot.Products = append([]domain.Product(nil), s.catalog.Products...)
	return snapshot, nil
}

func (s *catalogService) products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Products
}
