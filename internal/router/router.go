// Package router builds the Echo instance.
//
// It installs the middleware chain and maps paths to handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/invoices/internal/handler"
	"github.com/deppfellow/invoices/internal/middleware"
)

func NewRouter(h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Use(
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		middleware.RequestID(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
		m.Global.Secure(),
		m.Global.CORS(),
	)

	registerSystemRoutes(router, h)
	registerAuthRoutes(router, h, m)

	dashboard := router.Group(handler.DashboardPath, m.Auth.RequireSession)
	h.Invoices.Routes(dashboard)

	return router
}

func registerAuthRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	r.POST(middleware.LoginPath, handler.HandleForm(h.Auth.Handler, h.Auth.Login), m.RateLimit.LoginLimiter())
	r.POST("/logout", handler.HandleForm(h.Auth.Handler, h.Auth.Logout))
}
