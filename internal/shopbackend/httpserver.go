package shopbackend

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Server exposes the RPC surface the storefront client speaks.
type Server struct {
	Service   *Service
	JWTSecret []byte
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rpc := e.Group("/rpc", BearerAuth(s.JWTSecret))

	rpc.POST("/auth/login", s.login)

	rpc.GET("/products", s.getProducts)
	rpc.GET("/products/:id", s.getProduct)
	rpc.POST("/products", s.createProduct)
	rpc.PUT("/products/:id", s.updateProduct)
	rpc.DELETE("/products/:id", s.deleteProduct)
	rpc.GET("/search", s.searchProducts)

	rpc.GET("/cart", s.getCart)
	rpc.POST("/cart", s.addToCart)
	rpc.DELETE("/cart/:productID", s.removeFromCart)
	rpc.DELETE("/cart", s.clearCart)

	rpc.POST("/checkout", s.checkout)

	rpc.GET("/orders", s.getMyOrders)
	rpc.GET("/orders/all", s.getAllOrders)
	rpc.GET("/orders/:id", s.getOrder)

	rpc.GET("/me/role", s.getCallerRole)
	rpc.GET("/me/profile", s.getCallerProfile)
	rpc.PUT("/me/profile", s.saveCallerProfile)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCartEmpty), errors.Is(err, ErrProductGone):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	token, err := s.Service.Login(c.Request().Context(), s.JWTSecret, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *Server) getProducts(c echo.Context) error {
	products, err := s.Service.GetProducts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c echo.Context) error {
	product, err := s.Service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
}

func (s *Server) createProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	prod := Product{Name: req.Name, Price: req.Price, Description: req.Description, ImageRef: req.ImageRef}
	if err := s.Service.CreateProduct(c.Request().Context(), callerFrom(c), &prod); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": prod.ID})
}

func (s *Server) updateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	prod := Product{ID: c.Param("id"), Name: req.Name, Price: req.Price, Description: req.Description, ImageRef: req.ImageRef}
	if err := s.Service.UpdateProduct(c.Request().Context(), callerFrom(c), &prod); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteProduct(c echo.Context) error {
	if err := s.Service.DeleteProduct(c.Request().Context(), callerFrom(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) searchProducts(c echo.Context) error {
	products, err := s.Service.SearchProducts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, products)
}

type cartLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func (s *Server) getCart(c echo.Context) error {
	items, err := s.Service.GetCart(c.Request().Context(), callerFrom(c))
	if err != nil {
		return httpError(err)
	}
	lines := make([]cartLineResponse, len(items))
	for i, it := range items {
		lines[i] = cartLineResponse{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return c.JSON(http.StatusOK, lines)
}

func (s *Server) addToCart(c echo.Context) error {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := s.Service.AddToCart(c.Request().Context(), callerFrom(c), req.ProductID, req.Quantity); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) removeFromCart(c echo.Context) error {
	if err := s.Service.RemoveFromCart(c.Request().Context(), callerFrom(c), c.Param("productID")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) clearCart(c echo.Context) error {
	if err := s.Service.ClearCart(c.Request().Context(), callerFrom(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) checkout(c echo.Context) error {
	var req struct {
		CustomerName    string `json:"customer_name"`
		CustomerEmail   string `json:"customer_email"`
		ShippingAddress string `json:"shipping_address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	order, err := s.Service.Checkout(c.Request().Context(), callerFrom(c), req.CustomerName, req.CustomerEmail, req.ShippingAddress)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"order_id": order.ID})
}

func (s *Server) getOrder(c echo.Context) error {
	order, err := s.Service.GetOrder(c.Request().Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (s *Server) getMyOrders(c echo.Context) error {
	orders, err := s.Service.GetMyOrders(c.Request().Context(), callerFrom(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (s *Server) getAllOrders(c echo.Context) error {
	orders, err := s.Service.GetAllOrders(c.Request().Context(), callerFrom(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (s *Server) getCallerRole(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"role": s.Service.GetCallerRole(callerFrom(c))})
}

func (s *Server) getCallerProfile(c echo.Context) error {
	profile, err := s.Service.GetCallerProfile(c.Request().Context(), callerFrom(c))
	if err != nil {
		return httpError(err)
	}
	if profile == nil {
		return c.JSON(http.StatusOK, map[string]any{"profile": nil})
	}
	return c.JSON(http.StatusOK, map[string]any{"profile": map[string]string{"name": profile.Name}})
}

func (s *Server) saveCallerProfile(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := s.Service.SaveCallerProfile(c.Request().Context(), callerFrom(c), req.Name); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
