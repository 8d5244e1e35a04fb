package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/invoices/internal/auth"
	"github.com/deppfellow/invoices/internal/form"
	"github.com/deppfellow/invoices/internal/middleware"
	"github.com/deppfellow/invoices/internal/server"
)

// DashboardPath is where a successful sign-in lands.
const DashboardPath = "/dashboard"

type Authenticator interface {
	Authenticate(ctx context.Context, credentials auth.Credentials) auth.Result
	SignOut(ctx context.Context, token string) error
}

type AuthHandler struct {
	Handler
	auth Authenticator
}

func NewAuthHandler(s *server.Server, authenticator Authenticator) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    authenticator,
	}
}

type logoutRequest struct{}

// Login signs in with the submitted credentials. A recognized failure is
// reported back to the form; any other error propagates.
func (h *AuthHandler) Login(c echo.Context, req *auth.Credentials) (form.Result, error) {
	result := h.auth.Authenticate(c.Request().Context(), *req)

	switch {
	case result.Err != nil:
		return form.Result{}, result.Err
	case result.Session == nil:
		return form.Rejected(result.Message), nil
	}

	h.setSessionCookie(c, result.Session.Token, result.Session.ExpiresAt)

	return form.Redirect(DashboardPath), nil
}

// Logout ends the current session, if any, and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context, _ *logoutRequest) (form.Result, error) {
	cookie, err := c.Cookie(h.server.Config.Auth.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.auth.SignOut(c.Request().Context(), cookie.Value); err != nil {
			return form.Result{}, err
		}
	}

	h.setSessionCookie(c, "", time.Unix(0, 0))

	return form.Redirect(middleware.LoginPath), nil
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     h.server.Config.Auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.server.Config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}

	c.SetCookie(cookie)
}
