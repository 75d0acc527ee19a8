package shopbackend

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Caller is the authenticated identity a request acts as. The zero
// value is an anonymous guest.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) authenticated() bool { return c.UserID != "" }
func (c Caller) admin() bool         { return c.Role == "admin" }

// Service enforces the authoritative rules: role gates on product
// writes, ownership on order reads, set-quantity cart semantics, and
// the transactional cart-to-order transition.
type Service struct {
	Repo   *GormRepo
	Search *SearchIndex
}

func (s *Service) GetProducts(ctx context.Context) ([]Product, error) {
	return s.Repo.GetProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *Service) SearchProducts(ctx context.Context, q string) ([]Product, error) {
	if s.Search != nil {
		ids, err := s.Search.Query(ctx, q)
		if err == nil {
			return s.productsByID(ctx, ids)
		}
		// index trouble falls back to the database
	}
	return s.Repo.SearchProducts(ctx, q)
}

func (s *Service) productsByID(ctx context.Context, ids []string) ([]Product, error) {
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.Repo.GetProduct(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *Service) CreateProduct(ctx context.Context, caller Caller, prod *Product) error {
	if !caller.admin() {
		return ErrForbidden
	}
	if prod.Name == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if prod.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return err
	}
	s.Search.Index(ctx, prod)
	return nil
}

func (s *Service) UpdateProduct(ctx context.Context, caller Caller, prod *Product) error {
	if !caller.admin() {
		return ErrForbidden
	}
	if prod.Name == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if prod.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if err := s.Repo.UpdateProduct(ctx, prod); err != nil {
		return err
	}
	s.Search.Index(ctx, prod)
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, caller Caller, id string) error {
	if !caller.admin() {
		return ErrForbidden
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.Search.Remove(ctx, id)
	return nil
}

func (s *Service) GetCart(ctx context.Context, caller Caller) ([]CartItem, error) {
	if !caller.authenticated() {
		return nil, ErrUnauthorized
	}
	return s.Repo.GetCart(ctx, caller.UserID)
}

func (s *Service) AddToCart(ctx context.Context, caller Caller, productID string, quantity int64) error {
	if !caller.authenticated() {
		return ErrUnauthorized
	}
	if productID == "" {
		return fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return s.Repo.SetCartQuantity(ctx, caller.UserID, productID, quantity)
}

func (s *Service) RemoveFromCart(ctx context.Context, caller Caller, productID string) error {
	if !caller.authenticated() {
		return ErrUnauthorized
	}
	return s.Repo.RemoveFromCart(ctx, caller.UserID, productID)
}

func (s *Service) ClearCart(ctx context.Context, caller Caller) error {
	if !caller.authenticated() {
		return ErrUnauthorized
	}
	return s.Repo.ClearCart(ctx, caller.UserID)
}

func (s *Service) Checkout(ctx context.Context, caller Caller, customerName, customerEmail, shippingAddress string) (*Order, error) {
	if !caller.authenticated() {
		return nil, ErrUnauthorized
	}
	if customerName == "" || customerEmail == "" || shippingAddress == "" {
		return nil, fmt.Errorf("%w: customer fields required", ErrValidation)
	}
	return s.Repo.CreateOrder(ctx, caller.UserID, customerName, customerEmail, shippingAddress)
}

// GetOrder answers NotFound for another user's order rather than
// Forbidden, so order ids cannot be probed for existence.
func (s *Service) GetOrder(ctx context.Context, caller Caller, id string) (*Order, error) {
	if !caller.authenticated() {
		return nil, ErrUnauthorized
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID && !caller.admin() {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *Service) GetMyOrders(ctx context.Context, caller Caller) ([]Order, error) {
	if !caller.authenticated() {
		return nil, ErrUnauthorized
	}
	return s.Repo.GetOrdersByUser(ctx, caller.UserID)
}

func (s *Service) GetAllOrders(ctx context.Context, caller Caller) ([]Order, error) {
	if !caller.admin() {
		return nil, ErrForbidden
	}
	return s.Repo.GetAllOrders(ctx)
}

func (s *Service) GetCallerRole(caller Caller) string {
	if caller.Role == "" {
		return "guest"
	}
	return caller.Role
}

func (s *Service) GetCallerProfile(ctx context.Context, caller Caller) (*UserProfile, error) {
	if !caller.authenticated() {
		return nil, ErrUnauthorized
	}
	profile, err := s.Repo.GetProfile(ctx, caller.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return profile, err
}

func (s *Service) SaveCallerProfile(ctx context.Context, caller Caller, name string) error {
	if !caller.authenticated() {
		return ErrUnauthorized
	}
	if name == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	return s.Repo.SaveProfile(ctx, &UserProfile{UserID: caller.UserID, Name: name})
}
