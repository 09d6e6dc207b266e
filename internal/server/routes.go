package server

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/handler"
	"bookstore/internal/metrics"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Orders      *handler.OrderHandler
	Vouchers    *handler.VoucherHandler
	Payments    *handler.PaymentHandler
	AdminOrders *handler.AdminOrderHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, m *metrics.CheckoutMetrics) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	h.Orders.RegisterRoutes(e, cfg)
	h.Vouchers.RegisterRoutes(e, cfg)
	h.Payments.RegisterRoutes(e, cfg)
	h.AdminOrders.RegisterRoutes(e, cfg)
}
