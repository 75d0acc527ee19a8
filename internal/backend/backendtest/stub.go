// Package backendtest provides a configurable in-memory stand-in for
// the backend contract. Tests set only the call hooks they need; an
// unset hook fails loudly so a test cannot silently depend on a call
// it never declared.
package backendtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/models"
)

var _ backend.Client = (*Stub)(nil)

type Stub struct {
	mu    sync.Mutex
	calls map[string]int

	ListProductsFn  func(ctx context.Context) ([]models.Product, error)
	GetProductFn    func(ctx context.Context, id string) (models.Product, error)
	SearchFn        func(ctx context.Context, query string) ([]models.Product, error)
	AddProductFn    func(ctx context.Context, name string, price int64, description, imageRef string) (string, error)
	UpdateProductFn func(ctx context.Context, id, name string, price int64, description, imageRef string) error
	DeleteProductFn func(ctx context.Context, id string) error
	GetCartFn       func(ctx context.Context) ([]models.CartLine, error)
	AddToCartFn     func(ctx context.Context, productID string, quantity int64) error
	RemoveFn        func(ctx context.Context, productID string) error
	ClearCartFn     func(ctx context.Context) error
	CheckoutFn      func(ctx context.Context, name, email, address string) (string, error)
	GetOrderFn      func(ctx context.Context, id string) (models.Order, error)
	ListMyOrdersFn  func(ctx context.Context) ([]models.Order, error)
	ListAllOrdersFn func(ctx context.Context) ([]models.Order, error)
	GetRoleFn       func(ctx context.Context) (models.Role, error)
	GetProfileFn    func(ctx context.Context) (*models.UserProfile, error)
	SaveProfileFn   func(ctx context.Context, profile models.UserProfile) error
}

func New() *Stub {
	return &Stub{calls: make(map[string]int)}
}

// Calls reports how many times op has been invoked.
func (s *Stub) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls reports how many backend calls happened at all.
func (s *Stub) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Stub) record(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *Stub) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.record("ListProducts")
	if s.ListProductsFn == nil {
		return nil, fmt.Errorf("backendtest: unexpected ListProducts")
	}
	return s.ListProductsFn(ctx)
}

func (s *Stub) GetProduct(ctx context.Context, id string) (models.Product, error) {
	s.record("GetProduct")
	if s.GetProductFn == nil {
		return models.Product{}, fmt.Errorf("backendtest: unexpected GetProduct(%s)", id)
	}
	return s.GetProductFn(ctx, id)
}

func (s *Stub) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	s.record("SearchProducts")
	if s.SearchFn == nil {
		return nil, fmt.Errorf("backendtest: unexpected SearchProducts")
	}
	return s.SearchFn(ctx, query)
}

func (s *Stub) AddProduct(ctx context.Context, name string, price int64, description, imageRef string) (string, error) {
	s.record("AddProduct")
	if s.AddProductFn == nil {
		return "", fmt.Errorf("backendtest: unexpected AddProduct")
	}
	return s.AddProductFn(ctx, name, price, description, imageRef)
}

func (s *Stub) UpdateProduct(ctx context.Context, id, name string, price int64, description, imageRef string) error {
	s.record("UpdateProduct")
	if s.UpdateProductFn == nil {
		return fmt.Errorf("backendtest: unexpected UpdateProduct")
	}
	return s.UpdateProductFn(ctx, id, name, price, description, imageRef)
}

func (s *Stub) DeleteProduct(ctx context.Context, id string) error {
	s.record("DeleteProduct")
	if s.DeleteProductFn == nil {
		return fmt.Errorf("backendtest: unexpected DeleteProduct")
	}
	return s.DeleteProductFn(ctx, id)
}

func (s *Stub) GetCart(ctx context.Context) ([]models.CartLine, error) {
	s.record("GetCart")
	if s.GetCartFn == nil {
		return nil, fmt.Errorf("backendtest: unexpected GetCart")
	}
	return s.GetCartFn(ctx)
}

func (s *Stub) AddToCart(ctx context.Context, productID string, quantity int64) error {
	s.record("AddToCart")
	if s.AddToCartFn == nil {
		return fmt.Errorf("backendtest: unexpected AddToCart")
	}
	return s.AddToCartFn(ctx, productID, quantity)
}

func (s *Stub) RemoveFromCart(ctx context.Context, productID string) error {
	s.record("RemoveFromCart")
	if s.RemoveFn == nil {
		return fmt.Errorf("backendtest: unexpected RemoveFromCart")
	}
	return s.RemoveFn(ctx, productID)
}

func (s *Stub) ClearCart(ctx context.Context) error {
	s.record("ClearCart")
	if s.ClearCartFn == nil {
		return fmt.Errorf("backendtest: unexpected ClearCart")
	}
	return s.ClearCartFn(ctx)
}

func (s *Stub) Checkout(ctx context.Context, name, email, address string) (string, error) {
	s.record("Checkout")
	if s.CheckoutFn == nil {
		return "", fmt.Errorf("backendtest: unexpected Checkout")
	}
	return s.CheckoutFn(ctx, name, email, address)
}

func (s *Stub) GetOrder(ctx context.Context, id string) (models.Order, error) {
	s.record("GetOrder")
	if s.GetOrderFn == nil {
		return models.Order{}, fmt.Errorf("backendtest: unexpected GetOrder")
	}
	return s.GetOrderFn(ctx, id)
}

func (s *Stub) ListMyOrders(ctx context.Context) ([]models.Order, error) {
	s.record("ListMyOrders")
	if s.ListMyOrdersFn == nil {
		return nil, fmt.Errorf("backendtest: unexpected ListMyOrders")
	}
	return s.ListMyOrdersFn(ctx)
}

func (s *Stub) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	s.record("ListAllOrders")
	if s.ListAllOrdersFn == nil {
		return nil, fmt.Errorf("backendtest: unexpected ListAllOrders")
	}
	return s.ListAllOrdersFn(ctx)
}

func (s *Stub) GetCallerRole(ctx context.Context) (models.Role, error) {
	s.record("GetCallerRole")
	if s.GetRoleFn == nil {
		return "", fmt.Errorf("backendtest: unexpected GetCallerRole")
	}
	return s.GetRoleFn(ctx)
}

func (s *Stub) GetCallerProfile(ctx context.Context) (*models.UserProfile, error) {
	s.record("GetCallerProfile")
	if s.GetProfileFn == nil {
		return nil, fmt.Errorf("backendtest: unexpected GetCallerProfile")
	}
	return s.GetProfileFn(ctx)
}

func (s *Stub) SaveCallerProfile(ctx context.Context, profile models.UserProfile) error {
	s.record("SaveCallerProfile")
	if s.SaveProfileFn == nil {
		return fmt.Errorf("backendtest: unexpected SaveCallerProfile")
	}
	return s.SaveProfileFn(ctx, profile)
}
