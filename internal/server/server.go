package server

import (
	"bookstore/internal/config"
	"bookstore/internal/metrics"

	"github.com/labstack/echo/v4"
)

func Start(addr string, cfg config.Config, h Handlers, m *metrics.CheckoutMetrics) error {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, cfg, h, m)

	return e.Start(addr)
}
