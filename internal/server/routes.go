package server

import (
	"net/http"

	"github.com/qstina/relove-website/internal/handler"
	"github.com/qstina/relove-website/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Items        *handler.ItemHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Orders       *handler.OrderHandler
	Applications *handler.SellerApplicationHandler
	Users        *handler.UserHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, gatherer prometheus.Gatherer) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(gatherer)))

	h.Auth.RegisterRoutes(e)
	h.Items.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Orders.RegisterRoutes(e)
	h.Applications.RegisterRoutes(e)
	h.Users.RegisterRoutes(e)
}
