package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

// HTTPClient talks to the backend over its JSON RPC surface. The
// bearer token travels in the request context (session.WithToken) and
// is attached here, never stored on the client.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(backendURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(backendURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// do issues one request and decodes a 2xx body into out (when out is
// non-nil). Non-2xx statuses map onto the error taxonomy; anything
// the client cannot attribute to the caller is BackendUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := session.Token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return remoteErr(models.ErrNotAuthenticated, eb.Message)
	case http.StatusForbidden:
		return remoteErr(models.ErrForbidden, eb.Message)
	case http.StatusNotFound:
		return remoteErr(models.ErrNotFound, eb.Message)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return remoteErr(models.ErrCheckoutRejected, eb.Message)
	default:
		return remoteErr(models.ErrBackendUnavailable, fmt.Sprintf("status %d: %s", resp.StatusCode, eb.Message))
	}
}

func remoteErr(kind error, msg string) error {
	if msg == "" {
		return kind
	}
	return fmt.Errorf("%w: %s", kind, msg)
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/rpc/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, "/rpc/products/"+url.PathEscape(id), nil, &out); err != nil {
		return models.Product{}, err
	}
	return out, nil
}

func (c *HTTPClient) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	var out []models.Product
	path := "/rpc/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type productRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
}

func (c *HTTPClient) AddProduct(ctx context.Context, name string, price int64, description, imageRef string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	req := productRequest{Name: name, Price: price, Description: description, ImageRef: imageRef}
	if err := c.do(ctx, http.MethodPost, "/rpc/products", req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, id, name string, price int64, description, imageRef string) error {
	req := productRequest{Name: name, Price: price, Description: description, ImageRef: imageRef}
	return c.do(ctx, http.MethodPut, "/rpc/products/"+url.PathEscape(id), req, nil)
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rpc/products/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) GetCart(ctx context.Context) ([]models.CartLine, error) {
	var out []models.CartLine
	if err := c.do(ctx, http.MethodGet, "/rpc/cart", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AddToCart(ctx context.Context, productID string, quantity int64) error {
	req := struct {
		ProductID string `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}{ProductID: productID, Quantity: quantity}
	return c.do(ctx, http.MethodPost, "/rpc/cart", req, nil)
}

func (c *HTTPClient) RemoveFromCart(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/rpc/cart/"+url.PathEscape(productID), nil, nil)
}

func (c *HTTPClient) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/rpc/cart", nil, nil)
}

func (c *HTTPClient) Checkout(ctx context.Context, customerName, customerEmail, shippingAddress string) (string, error) {
	req := struct {
		CustomerName    string `json:"customer_name"`
		CustomerEmail   string `json:"customer_email"`
		ShippingAddress string `json:"shipping_address"`
	}{customerName, customerEmail, shippingAddress}
	var out struct {
		OrderID string `json:"order_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/rpc/checkout", req, &out); err != nil {
		return "", err
	}
	return out.OrderID, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodGet, "/rpc/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return models.Order{}, err
	}
	return out, nil
}

func (c *HTTPClient) ListMyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/rpc/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/rpc/orders/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetCallerRole(ctx context.Context) (models.Role, error) {
	var out struct {
		Role models.Role `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, "/rpc/me/role", nil, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

func (c *HTTPClient) GetCallerProfile(ctx context.Context) (*models.UserProfile, error) {
	var out struct {
		Profile *models.UserProfile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/rpc/me/profile", nil, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

func (c *HTTPClient) SaveCallerProfile(ctx context.Context, profile models.UserProfile) error {
	return c.do(ctx, http.MethodPut, "/rpc/me/profile", profile, nil)
}
