package handlers

import (
	"context"
	"errors"

	"github.com/la-fiesta/storefront/internal/domain"
	"github.com/la-fiesta/storefront/internal/services"
)

type stubCatalogService struct {
	loadFunc        func(ctx context.Context) error
	productsFunc    func(ctx context.Context, state domain.QueryState) (domain.Page, error)
	categoriesFunc  func(ctx context.Context) ([]string, error)
	productByIDFunc func(ctx context.Context, id string) (domain.Product, error)
	snapshotFunc    func(ctx context.Context) (domain.Catalog, error)
}

func (s *stubCatalogService) Load(ctx context.Context) error {
	if s.loadFunc != nil {
		return s.loadFunc(ctx)
	}
	return nil
}

func (s *stubCatalogService) Products(ctx context.Context, state domain.QueryState) (domain.Page, error) {
	if s.productsFunc != nil {
		return s.productsFunc(ctx, state)
	}
	return domain.Page{}, errors.New("products not stubbed")
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]string, error) {
	if s.categoriesFunc != nil {
		return s.categoriesFunc(ctx)
	}
	return nil, errors.New("categories not stubbed")
}

func (s *stubCatalogService) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	if s.productByIDFunc != nil {
		return s.productByIDFunc(ctx, id)
	}
	return domain.Product{}, services.ErrProductNotFound
}

func (s *stubCatalogService) Snapshot(ctx context.Context) (domain.Catalog, error) {
	if s.snapshotFunc != nil {
		return s.snapshotFunc(ctx)
	}
	return domain.Catalog{}, nil
}

type stubCartService struct {
	createFunc      func(ctx context.Context) (services.CartView, error)
	getFunc         func(ctx context.Context, cartID string) (services.CartView, error)
	addItemFunc     func(ctx context.Context, cartID, productID string, quantity int) (services.CartView, error)
	setQuantityFunc func(ctx context.Context, cartID, productID string, quantity int) (services.CartView, error)
	removeItemFunc  func(ctx context.Context, cartID, productID string) (services.CartView, error)
	clearFunc       func(ctx context.Context, cartID string) (services.CartView, error)
}

func (s *stubCartService) CreateCart(ctx context.Context) (services.CartView, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx)
	}
	return services.CartView{}, errors.New("create not stubbed")
}

func (s *stubCartService) GetCart(ctx context.Context, cartID string) (services.CartView, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, cartID)
	}
	return services.CartView{}, errors.New("get not stubbed")
}

func (s *stubCartService) AddItem(ctx context.Context, cartID, productID string, quantity int) (services.CartView, error) {
	if s.addItemFunc != nil {
		return s.addItemFunc(ctx, cartID, productID, quantity)
	}
	return services.CartView{}, errors.New("add not stubbed")
}

func (s *stubCartService) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (services.CartView, error) {
	if s.setQuantityFunc != nil {
		return s.setQuantityFunc(ctx, cartID, productID, quantity)
	}
	return services.CartView{}, errors.New("set quantity not stubbed")
}

func (s *stubCartService) RemoveItem(ctx context.Context, cartID, productID string) (services.CartView, error) {
	if s.removeItemFunc != nil {
		return s.removeItemFunc(ctx, cartID, productID)
	}
	return services.CartView{}, errors.New("remove not stubbed")
}

func (s *stubCartService) ClearCart(ctx context.Context, cartID string) (services.CartView, error) {
	if s.clearFunc != nil {
		return s.clearFunc(ctx, cartID)
	}
	return services.CartView{}, errors.New("clear not stubbed")
}

type stubOrderService struct {
	buildFunc func(ctx context.Context, cart domain.Cart) (services.Order, error)
}

func (s *stubOrderService) BuildOrder(ctx context.Context, cart domain.Cart) (services.Order, error) {
	if s.buildFunc != nil {
		return s.buildFunc(ctx, cart)
	}
	return services.Order{}, errors.New("build not stubbed")
}
