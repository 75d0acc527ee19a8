// Package profile covers the caller-facing identity reads: role,
// profile, and the advisory admin check that decides whether the UI
// shows the admin surface at all. None of this authorizes anything;
// the backend re-checks on every mutation.
package profile

import (
	"context"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

type Service struct {
	backend backend.Client
	cache   *cache.Store
}

func NewService(b backend.Client, c *cache.Store) *Service {
	return &Service{backend: b, cache: c}
}

func (s *Service) GetCallerRole(ctx context.Context) (models.Role, error) {
	if session.Token(ctx) == "" {
		return models.RoleGuest, nil
	}
	return s.backend.GetCallerRole(ctx)
}

// IsAdmin is the advisory UX check. It must never be the sole gate.
func (s *Service) IsAdmin(ctx context.Context) bool {
	role, err := s.GetCallerRole(ctx)
	return err == nil && role == models.RoleAdmin
}

// GetCallerProfile returns nil without error when the caller has no
// profile yet.
func (s *Service) GetCallerProfile(ctx context.Context) (*models.UserProfile, error) {
	userID := session.SubjectFromToken(session.Token(ctx))
	if userID == "" {
		return nil, nil
	}
	key := cache.KeyProfile(userID)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.UserProfile), nil
	}
	p, err := s.backend.GetCallerProfile(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, p)
	return p, nil
}

func (s *Service) SaveCallerProfile(ctx context.Context, p models.UserProfile) error {
	tok, err := session.RequireToken(ctx)
	if err != nil {
		return err
	}
	if p.Name == "" {
		return models.FieldErrors{"name": "name is required"}
	}
	if err := s.backend.SaveCallerProfile(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(cache.KeyProfile(session.SubjectFromToken(tok)))
	return nil
}
