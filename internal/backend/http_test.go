package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

func TestHTTPClient_AttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.CartLine{})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	ctx := session.WithToken(context.Background(), "tok123")

	_, err := client.GetCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: models.ErrNotAuthenticated},
		{name: "forbidden", status: http.StatusForbidden, want: models.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, want: models.ErrNotFound},
		{name: "conflict", status: http.StatusConflict, want: models.ErrCheckoutRejected},
		{name: "server error", status: http.StatusInternalServerError, want: models.ErrBackendUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL)
			_, err := client.GetProduct(context.Background(), "prd_1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPClient_TransportFailureIsBackendUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewHTTPClient(srv.URL)
	_, err := client.ListProducts(context.Background())
	assert.ErrorIs(t, err, models.ErrBackendUnavailable)
}

func TestHTTPClient_DecodesPayloads(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rpc/products/prd_1":
			json.NewEncoder(w).Encode(models.Product{ID: "prd_1", Name: "Mug", Price: 599})
		case "/rpc/checkout":
			var req struct {
				CustomerName string `json:"customer_name"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "Ada", req.CustomerName)
			json.NewEncoder(w).Encode(map[string]string{"order_id": "ord_9"})
		case "/rpc/me/profile":
			json.NewEncoder(w).Encode(map[string]any{"profile": nil})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	ctx := context.Background()

	product, err := client.GetProduct(ctx, "prd_1")
	require.NoError(t, err)
	assert.Equal(t, int64(599), product.Price)

	orderID, err := client.Checkout(ctx, "Ada", "a@b.co", "addr")
	require.NoError(t, err)
	assert.Equal(t, "ord_9", orderID)

	profile, err := client.GetCallerProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile, "absent profile is not an error")
}
