// Package integration runs the client core against a real in-process
// backend instead of stubs: an echo shopbackend on httptest backed by
// in-memory sqlite, talked to through the real HTTP client.
package integration

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/cart"
	"github.com/openmerch/storefront/internal/catalog"
	"github.com/openmerch/storefront/internal/checkout"
	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/order"
	"github.com/openmerch/storefront/internal/profile"
	"github.com/openmerch/storefront/internal/session"
	"github.com/openmerch/storefront/internal/shopbackend"
)

type fixture struct {
	cache    *cache.Store
	catalog  *catalog.Reader
	admin    *catalog.AdminMutator
	cart     *cart.Store
	orders   *order.Lookup
	profiles *profile.Service
	client   *backend.HTTPClient

	adminCtx context.Context
	aliceCtx context.Context
	bobCtx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	secret := []byte("integration-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := shopbackend.OpenDB(ctx, dsn)
	require.NoError(t, err)

	svc := &shopbackend.Service{Repo: &shopbackend.GormRepo{DB: db}}
	for _, u := range []struct{ name, role string }{
		{"root", "admin"}, {"alice", "user"}, {"bob", "user"},
	} {
		_, err := shopbackend.EnsureUser(ctx, db, u.name, u.name+"-pw", u.role)
		require.NoError(t, err)
	}

	e := echo.New()
	e.HideBanner = true
	srv := &shopbackend.Server{Service: svc, JWTSecret: secret}
	srv.Register(e)
	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)

	client := backend.NewHTTPClient(ts.URL)
	bus := cache.NewBus()
	store := cache.New(bus, time.Minute)
	reader := catalog.NewReader(client, store)

	f := &fixture{
		cache:    store,
		catalog:  reader,
		admin:    catalog.NewAdminMutator(client, store, nil),
		cart:     cart.NewStore(client, reader, store),
		orders:   order.NewLookup(client, store),
		profiles: profile.NewService(client, store),
		client:   client,
	}

	login := func(username string) context.Context {
		token, err := svc.Login(ctx, secret, username, username+"-pw")
		require.NoError(t, err)
		return session.WithToken(context.Background(), token)
	}
	f.adminCtx = login("root")
	f.aliceCtx = login("alice")
	f.bobCtx = login("bob")
	return f
}

func (f *fixture) createProduct(t *testing.T, name string, price int64) string {
	t.Helper()
	id, err := f.admin.CreateProduct(f.adminCtx, catalog.ProductFields{Name: name, Price: price})
	require.NoError(t, err)
	return id
}

func TestCartKeepsOneLinePerProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mugID := f.createProduct(t, "Mug", 599)

	require.NoError(t, f.cart.AddToCart(f.aliceCtx, mugID, 2))
	require.NoError(t, f.cart.AddToCart(f.aliceCtx, mugID, 7))

	lines, err := f.cart.GetCart(f.aliceCtx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(7), lines[0].Quantity)
	assert.Equal(t, "Mug", lines[0].Name)
	assert.Equal(t, int64(599), lines[0].Price)
	assert.False(t, lines[0].Missing)
}

func TestSubtotalTracksCatalogPriceUntilCheckout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mugID := f.createProduct(t, "Mug", 599)
	require.NoError(t, f.cart.AddToCart(f.aliceCtx, mugID, 2))

	lines, err := f.cart.GetCart(f.aliceCtx)
	require.NoError(t, err)
	assert.Equal(t, int64(1198), cart.Subtotal(lines))

	// A price change invalidates the product cache, so the next cart
	// read re-enriches at the new price.
	err = f.admin.UpdateProduct(f.adminCtx, mugID, catalog.ProductFields{Name: "Mug", Price: 1000})
	require.NoError(t, err)

	lines, err = f.cart.GetCart(f.aliceCtx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), cart.Subtotal(lines))
}

func TestCheckoutFreezesOrderAndEmptiesCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mugID := f.createProduct(t, "Mug", 599)
	shirtID := f.createProduct(t, "Shirt", 1999)
	require.NoError(t, f.cart.AddToCart(f.aliceCtx, mugID, 2))
	require.NoError(t, f.cart.AddToCart(f.aliceCtx, shirtID, 1))

	proc := checkout.NewProcess(f.client, f.cart, f.cache)
	orderID, err := proc.Run(f.aliceCtx, checkout.Form{
		CustomerName:    "Alice",
		CustomerEmail:   "alice@example.co",
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, checkout.StateSucceeded, proc.State())

	lines, err := f.cart.GetCart(f.aliceCtx)
	require.NoError(t, err)
	assert.Empty(t, lines, "checkout empties the cart")

	// Catalog mutations after checkout must not reach the order.
	require.NoError(t, f.admin.DeleteProduct(f.adminCtx, mugID))

	got, err := f.orders.GetOrder(f.aliceCtx, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*599+1999), got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(599), got.Items[0].UnitPrice)
}

func TestInvalidEmailFailsBeforeSubmit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mugID := f.createProduct(t, "Mug", 599)
	require.NoError(t, f.cart.AddToCart(f.aliceCtx, mugID, 1))

	proc := checkout.NewProcess(f.client, f.cart, f.cache)
	_, err := proc.Run(f.aliceCtx, checkout.Form{
		CustomerName:    "Alice",
		CustomerEmail:   "not-an-email",
		ShippingAddress: "1 Main St",
	})
	require.ErrorIs(t, err, models.ErrValidation)
	fields, ok := models.FieldErrorsFrom(err)
	require.True(t, ok)
	assert.Contains(t, fields, "customer_email")
	assert.Equal(t, checkout.StateFailed, proc.State())

	lines, err := f.cart.GetCart(f.aliceCtx)
	require.NoError(t, err)
	assert.Len(t, lines, 1, "a failed checkout leaves the cart alone")
}

func TestDeletedProductBecomesPlaceholderLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mugID := f.createProduct(t, "Mug", 599)
	require.NoError(t, f.cart.AddToCart(f.aliceCtx, mugID, 3))
	require.NoError(t, f.admin.DeleteProduct(f.adminCtx, mugID))

	lines, err := f.cart.GetCart(f.aliceCtx)
	require.NoError(t, err)
	require.Len(t, lines, 1, "the line itself survives the product")
	assert.True(t, lines[0].Missing)
	assert.Equal(t, models.UnknownProductName, lines[0].Name)
	assert.Equal(t, int64(0), lines[0].Price)
	assert.Equal(t, int64(3), lines[0].Quantity)
}

func TestNonAdminCatalogWriteIsForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mugID := f.createProduct(t, "Mug", 599)

	err := f.admin.DeleteProduct(f.aliceCtx, mugID)
	require.ErrorIs(t, err, models.ErrForbidden)

	products, err := f.catalog.ListProducts(f.aliceCtx)
	require.NoError(t, err)
	require.Len(t, products, 1, "the product survives the rejected delete")
	assert.Equal(t, "Mug", products[0].Name)
}

func TestOrderIsInvisibleToStrangers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mugID := f.createProduct(t, "Mug", 599)
	require.NoError(t, f.cart.AddToCart(f.aliceCtx, mugID, 1))

	proc := checkout.NewProcess(f.client, f.cart, f.cache)
	orderID, err := proc.Run(f.aliceCtx, checkout.Form{
		CustomerName:    "Alice",
		CustomerEmail:   "alice@example.co",
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	_, err = f.orders.GetOrder(f.bobCtx, orderID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := f.orders.ListAllOrders(f.adminCtx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, orderID, all[0].ID)

	_, err = f.orders.ListAllOrders(f.aliceCtx)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestAnonymousCartIsEmptyWithoutBackend(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	lines, err := f.cart.GetCart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)

	err = f.cart.AddToCart(context.Background(), "prd_whatever", 1)
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	role, err := f.profiles.GetCallerRole(f.adminCtx)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	p, err := f.profiles.GetCallerProfile(f.aliceCtx)
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, f.profiles.SaveCallerProfile(f.aliceCtx, models.UserProfile{Name: "Alice Liddell"}))

	p, err = f.profiles.GetCallerProfile(f.aliceCtx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Alice Liddell", p.Name)
}
