package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/invoices/internal/handler"
)

// registerSystemRoutes registers endpoints outside the invoice domain.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	// openapi.json and openapi.html
	r.Static("/static", "static")

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
