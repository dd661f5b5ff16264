package server

import (
	"app/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	api := e.Group("/api")

	h.Auth.RegisterRoutes(api, cfg)
	h.Product.RegisterRoutes(api)
	h.Cart.RegisterRoutes(api)
	h.Order.RegisterRoutes(api)
}
