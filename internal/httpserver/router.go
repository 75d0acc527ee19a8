// Package httpserver is the storefront's own HTTP surface: the thin
// presentation boundary over the client core. This is the only layer
// that formats money for display or turns taxonomy errors into HTTP
// statuses.
package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/cart"
	"github.com/openmerch/storefront/internal/catalog"
	"github.com/openmerch/storefront/internal/logging"
	"github.com/openmerch/storefront/internal/order"
	"github.com/openmerch/storefront/internal/profile"
	"github.com/openmerch/storefront/internal/session"
)

type Deps struct {
	Backend backend.Client
	Cache   *cache.Store
	Catalog *catalog.Reader
	Admin   *catalog.AdminMutator
	Cart    *cart.Store
	Orders  *order.Lookup
	Profile *profile.Service
	Logger  *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	h := &Handler{deps: d}

	v1 := e.Group("/api/v1", sessionMiddleware(d.Logger))

	v1.GET("/products", h.ListProducts)
	v1.GET("/products/:id", h.GetProduct)
	v1.GET("/search", h.SearchProducts)

	admin := v1.Group("/admin")
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.GET("/orders", h.ListAllOrders)

	v1.GET("/cart", h.GetCart)
	v1.POST("/cart", h.AddToCart)
	v1.DELETE("/cart/:productID", h.RemoveFromCart)
	v1.DELETE("/cart", h.ClearCart)

	v1.POST("/checkout", h.Checkout)

	v1.GET("/orders", h.ListMyOrders)
	v1.GET("/orders/:id", h.GetOrder)

	v1.GET("/me", h.Me)
	v1.PUT("/me/profile", h.SaveProfile)
}

// sessionMiddleware moves the caller's bearer token and a request
// logger into the request context the core reads from.
func sessionMiddleware(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if log != nil {
				ctx = logging.IntoContext(ctx, log.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
			}
			if header := c.Request().Header.Get("Authorization"); header != "" {
				ctx = session.WithToken(ctx, strings.TrimPrefix(header, "Bearer "))
			}
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
