package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmerch/storefront/internal/backend/backendtest"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/models"
)

type stubCart struct {
	lines       []models.EnrichedCartLine
	err         error
	invalidated int
}

func (s *stubCart) GetCart(ctx context.Context) ([]models.EnrichedCartLine, error) {
	return s.lines, s.err
}

func (s *stubCart) InvalidateView(ctx context.Context) { s.invalidated++ }

func oneLine() []models.EnrichedCartLine {
	return []models.EnrichedCartLine{
		{CartLine: models.CartLine{ProductID: "prd_1", Quantity: 2}, Name: "Mug", Price: 599},
	}
}

func validForm() Form {
	return Form{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.co",
		ShippingAddress: "12 Analytical Row",
	}
}

func newTestProcess(stub *backendtest.Stub, cartView CartView) (*Process, *cache.Store) {
	c := cache.New(cache.NewBus(), time.Minute)
	return NewProcess(stub, cartView, c), c
}

func TestRun_HappyPath(t *testing.T) {
	t.Parallel()

	stub := backendtest.New()
	stub.CheckoutFn = func(ctx context.Context, name, email, address string) (string, error) {
		assert.Equal(t, "Ada Lovelace", name)
		assert.Equal(t, "ada@example.co", email)
		assert.Equal(t, "12 Analytical Row", address)
		return "ord_42", nil
	}
	cartView := &stubCart{lines: oneLine()}
	proc, store := newTestProcess(stub, cartView)

	store.SetTTL(cache.KeyMyOrders("u1"), []models.Order{}, time.Minute)

	orderID, err := proc.Run(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, "ord_42", orderID)
	assert.Equal(t, StateSucceeded, proc.State())
	assert.Equal(t, 1, stub.Calls("Checkout"))
	assert.Equal(t, 1, cartView.invalidated, "cart view must be invalidated, not asserted empty")

	_, ok := store.Get(cache.KeyMyOrders("u1"))
	assert.False(t, ok, "order listings must be invalidated after checkout")
}

func TestRun_EmptyCart(t *testing.T) {
	t.Parallel()

	stub := backendtest.New()
	proc, _ := newTestProcess(stub, &stubCart{lines: nil})

	_, err := proc.Run(context.Background(), validForm())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Equal(t, StateFailed, proc.State())
	assert.Zero(t, stub.TotalCalls(), "empty cart must be decided without a network call")
}

func TestRun_FieldValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		form  Form
		field string
	}{
		{
			name:  "missing name",
			form:  Form{CustomerEmail: "a@b.co", ShippingAddress: "addr"},
			field: "customer_name",
		},
		{
			name:  "missing address",
			form:  Form{CustomerName: "Ada", CustomerEmail: "a@b.co"},
			field: "shipping_address",
		},
		{
			name:  "bad email",
			form:  Form{CustomerName: "Ada", CustomerEmail: "not-an-email", ShippingAddress: "addr"},
			field: "customer_email",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := backendtest.New()
			proc, _ := newTestProcess(stub, &stubCart{lines: oneLine()})

			_, err := proc.Run(context.Background(), tt.form)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrValidation)

			fe, ok := models.FieldErrorsFrom(err)
			require.True(t, ok)
			assert.Contains(t, fe, tt.field)
			assert.Zero(t, stub.TotalCalls(), "validation failures must abort before any network call")
			assert.Equal(t, StateFailed, proc.State())
		})
	}
}

func TestRun_BackendRejection(t *testing.T) {
	t.Parallel()

	stub := backendtest.New()
	stub.CheckoutFn = func(ctx context.Context, name, email, address string) (string, error) {
		return "", models.ErrCheckoutRejected
	}
	cartView := &stubCart{lines: oneLine()}
	proc, _ := newTestProcess(stub, cartView)

	_, err := proc.Run(context.Background(), validForm())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrCheckoutRejected)
	assert.Equal(t, StateFailed, proc.State())
	assert.Zero(t, cartView.invalidated, "failure must leave local cart state untouched")
}

func TestRun_SingleUse(t *testing.T) {
	t.Parallel()

	stub := backendtest.New()
	stub.CheckoutFn = func(ctx context.Context, name, email, address string) (string, error) {
		return "ord_1", nil
	}
	proc, _ := newTestProcess(stub, &stubCart{lines: oneLine()})

	_, err := proc.Run(context.Background(), validForm())
	require.NoError(t, err)

	_, err = proc.Run(context.Background(), validForm())
	require.Error(t, err, "a retry is a new Process")
	assert.Equal(t, 1, stub.Calls("Checkout"))
}

func TestPlausibleEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		ok    bool
	}{
		{"a@b.co", true},
		{"ada.lovelace@mail.example.org", true},
		{"not-an-email", false},
		{"two@@signs.co", false},
		{"@missing-local.co", false},
		{"missing-domain@", false},
		{"no-dot@domain", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, plausibleEmail(tt.email), "email %q", tt.email)
	}
}
