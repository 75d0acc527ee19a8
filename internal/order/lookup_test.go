package order

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmerch/storefront/internal/backend/backendtest"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

func authedCtx(t *testing.T, sub string) context.Context {
	t.Helper()
	claims := session.Claims{
		Role:             "user",
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return session.WithToken(context.Background(), signed)
}

func TestGetOrder_ShortLivedCache(t *testing.T) {
	t.Parallel()

	stub := backendtest.New()
	stub.GetOrderFn = func(ctx context.Context, id string) (models.Order, error) {
		return models.Order{ID: id, Total: 1198}, nil
	}
	lookup := NewLookup(stub, cache.New(cache.NewBus(), time.Minute))
	ctx := authedCtx(t, "u1")

	first, err := lookup.GetOrder(ctx, "ord_1")
	require.NoError(t, err)
	second, err := lookup.GetOrder(ctx, "ord_1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.Calls("GetOrder"))
}

func TestGetOrder_CacheIsPerCaller(t *testing.T) {
	t.Parallel()

	stub := backendtest.New()
	stub.GetOrderFn = func(ctx context.Context, id string) (models.Order, error) {
		if session.SubjectFromToken(session.Token(ctx)) != "owner" {
			return models.Order{}, models.ErrNotFound
		}
		return models.Order{ID: id}, nil
	}
	lookup := NewLookup(stub, cache.New(cache.NewBus(), time.Minute))

	_, err := lookup.GetOrder(authedCtx(t, "owner"), "ord_1")
	require.NoError(t, err)

	_, err = lookup.GetOrder(authedCtx(t, "stranger"), "ord_1")
	assert.ErrorIs(t, err, models.ErrNotFound,
		"one caller's cached order must not answer for another caller")
}

func TestListMyOrders_RequiresIdentity(t *testing.T) {
	t.Parallel()

	lookup := NewLookup(backendtest.New(), cache.New(cache.NewBus(), time.Minute))

	_, err := lookup.ListMyOrders(context.Background())
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestListAllOrders_ForbiddenPassthrough(t *testing.T) {
	t.Parallel()

	stub := backendtest.New()
	stub.ListAllOrdersFn = func(ctx context.Context) ([]models.Order, error) {
		return nil, models.ErrForbidden
	}
	lookup := NewLookup(stub, cache.New(cache.NewBus(), time.Minute))

	_, err := lookup.ListAllOrders(authedCtx(t, "u1"))
	assert.ErrorIs(t, err, models.ErrForbidden)
}
