package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openmerch/storefront/internal/cart"
	"github.com/openmerch/storefront/internal/catalog"
	"github.com/openmerch/storefront/internal/checkout"
	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

type Handler struct {
	deps *Deps
}

// formatMinor renders a minor-unit amount as "12.34". This is the one
// place in the repo where division by 100 happens.
func formatMinor(n int64) string {
	return fmt.Sprintf("%d.%02d", n/100, n%100)
}

func writeError(c echo.Context, err error) error {
	if fe, ok := models.FieldErrorsFrom(err); ok {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "validation_failed",
			"fields": fe,
		})
	}
	switch {
	case errors.Is(err, models.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "validation_failed", "message": err.Error()})
	case errors.Is(err, models.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "empty_cart", "message": "your cart is empty"})
	case errors.Is(err, models.ErrNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "not_authenticated", "message": "sign in to continue"})
	case errors.Is(err, models.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]any{"error": "forbidden", "message": "admin role required"})
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{"error": "not_found", "message": err.Error()})
	case errors.Is(err, models.ErrCheckoutRejected):
		return c.JSON(http.StatusConflict, map[string]any{"error": "checkout_rejected", "message": err.Error()})
	case errors.Is(err, models.ErrBackendUnavailable):
		// the one place a generic message is acceptable
		return c.JSON(http.StatusBadGateway, map[string]any{"error": "backend_unavailable", "message": "store is temporarily unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "internal", "message": err.Error()})
	}
}

type productView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceMinor  int64  `json:"price_minor"`
	Price       string `json:"price"`
	ImageRef    string `json:"image_ref"`
}

func toProductView(p models.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceMinor:  p.Price,
		Price:       formatMinor(p.Price),
		ImageRef:    p.ImageRef,
	}
}

func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.deps.Catalog.ListProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = toProductView(p)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetProduct(c echo.Context) error {
	product, err := h.deps.Catalog.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductView(product))
}

func (h *Handler) SearchProducts(c echo.Context) error {
	products, err := h.deps.Catalog.SearchProducts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = toProductView(p)
	}
	return c.JSON(http.StatusOK, out)
}

type productForm struct {
	Name        string `json:"name"`
	PriceMinor  int64  `json:"price_minor"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
}

func (f productForm) fields() catalog.ProductFields {
	return catalog.ProductFields{
		Name:        f.Name,
		Price:       f.PriceMinor,
		Description: f.Description,
		ImageRef:    f.ImageRef,
	}
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var req productForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	id, err := h.deps.Admin.CreateProduct(c.Request().Context(), req.fields())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	var req productForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.deps.Admin.UpdateProduct(c.Request().Context(), c.Param("id"), req.fields()); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.deps.Admin.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type cartLineView struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	Missing    bool   `json:"missing"`
	PriceMinor int64  `json:"price_minor"`
	Price      string `json:"price"`
	LineTotal  string `json:"line_total"`
}

func (h *Handler) GetCart(c echo.Context) error {
	lines, err := h.deps.Cart.GetCart(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	views := make([]cartLineView, len(lines))
	for i, l := range lines {
		views[i] = cartLineView{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			Missing:    l.Missing,
			PriceMinor: l.Price,
			Price:      formatMinor(l.Price),
			LineTotal:  formatMinor(l.Price * l.Quantity),
		}
	}
	subtotal := cart.Subtotal(lines)
	return c.JSON(http.StatusOK, map[string]any{
		"lines":          views,
		"subtotal_minor": subtotal,
		"subtotal":       formatMinor(subtotal),
	})
}

func (h *Handler) AddToCart(c echo.Context) error {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.deps.Cart.AddToCart(c.Request().Context(), req.ProductID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveFromCart(c echo.Context) error {
	if err := h.deps.Cart.RemoveFromCart(c.Request().Context(), c.Param("productID")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearCart(c echo.Context) error {
	if err := h.deps.Cart.ClearCart(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Checkout(c echo.Context) error {
	var form checkout.Form
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	if _, err := session.RequireToken(ctx); err != nil {
		return writeError(c, err)
	}

	proc := checkout.NewProcess(h.deps.Backend, h.deps.Cart, h.deps.Cache)
	orderID, err := proc.Run(ctx, form)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"order_id": orderID})
}

type orderView struct {
	ID              string             `json:"id"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	ShippingAddress string             `json:"shipping_address"`
	Items           []models.OrderItem `json:"items"`
	TotalMinor      int64              `json:"total_minor"`
	Total           string             `json:"total"`
	CreatedAt       string             `json:"created_at"`
}

func toOrderView(o models.Order) orderView {
	return orderView{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		Items:           o.Items,
		TotalMinor:      o.Total,
		Total:           formatMinor(o.Total),
		CreatedAt:       o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) GetOrder(c echo.Context) error {
	o, err := h.deps.Orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderView(o))
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	orders, err := h.deps.Orders.ListMyOrders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = toOrderView(o)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListAllOrders(c echo.Context) error {
	orders, err := h.deps.Orders.ListAllOrders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = toOrderView(o)
	}
	return c.JSON(http.StatusOK, out)
}

// Me reports the caller's role and profile in one shot; the role
// below only drives what the UI renders.
func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	role, err := h.deps.Profile.GetCallerRole(ctx)
	if err != nil {
		return writeError(c, err)
	}
	prof, err := h.deps.Profile.GetCallerProfile(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"role":    role,
		"profile": prof,
	})
}

func (h *Handler) SaveProfile(c echo.Context) error {
	var req models.UserProfile
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.deps.Profile.SaveCallerProfile(c.Request().Context(), req); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
