package catalog

import (
	"context"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/events"
	"github.com/openmerch/storefront/internal/logging"
	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

// AdminMutator performs the product writes. It does not gate on the
// caller's role: the backend is the authority and answers Forbidden
// for non-admins; the client-side role claim is only used by the UI
// to decide whether to show the admin surface at all.
type AdminMutator struct {
	backend  backend.Client
	cache    *cache.Store
	producer *events.Producer
}

func NewAdminMutator(b backend.Client, c *cache.Store, p *events.Producer) *AdminMutator {
	return &AdminMutator{backend: b, cache: c, producer: p}
}

type ProductFields struct {
	Name        string
	Price       int64
	Description string
	ImageRef    string
}

func (f ProductFields) validate() error {
	fe := models.FieldErrors{}
	if f.Name == "" {
		fe["name"] = "name is required"
	}
	if f.Price < 0 {
		fe["price"] = "price cannot be negative"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// CreateProduct returns the backend-assigned product id. The listing
// cache and the new id's entry are invalidated before it returns, so
// the next ListProducts is guaranteed fresh.
func (m *AdminMutator) CreateProduct(ctx context.Context, fields ProductFields) (string, error) {
	if err := fields.validate(); err != nil {
		return "", err
	}
	id, err := m.backend.AddProduct(ctx, fields.Name, fields.Price, fields.Description, fields.ImageRef)
	if err != nil {
		return "", err
	}
	m.cache.Invalidate(cache.KeyProducts, cache.KeyProduct(id))
	m.publish(ctx, "product_created", id)
	return id, nil
}

func (m *AdminMutator) UpdateProduct(ctx context.Context, id string, fields ProductFields) error {
	if err := fields.validate(); err != nil {
		return err
	}
	if err := m.backend.UpdateProduct(ctx, id, fields.Name, fields.Price, fields.Description, fields.ImageRef); err != nil {
		return err
	}
	m.cache.Invalidate(cache.KeyProducts, cache.KeyProduct(id))
	m.publish(ctx, "product_updated", id)
	return nil
}

func (m *AdminMutator) DeleteProduct(ctx context.Context, id string) error {
	if err := m.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}
	m.cache.Invalidate(cache.KeyProducts, cache.KeyProduct(id))
	m.publish(ctx, "product_deleted", id)
	return nil
}

func (m *AdminMutator) publish(ctx context.Context, eventType, productID string) {
	err := m.producer.Publish(ctx, productID, map[string]any{
		"type":       eventType,
		"product_id": productID,
		"role":       session.RoleFromToken(session.Token(ctx)),
	})
	if err != nil {
		logging.FromContext(ctx).Error("event publish failed", "type", eventType, "error", err)
	}
}
