package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/invoices/internal/auth"
	"github.com/deppfellow/invoices/internal/errs"
	"github.com/deppfellow/invoices/internal/server"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

type SessionResolver interface {
	Session(ctx context.Context, token string) (*auth.Session, error)
}

type AuthMiddleware struct {
	server   *server.Server
	sessions SessionResolver
}

func NewAuthMiddleware(s *server.Server, sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		server:   s,
		sessions: sessions,
	}
}

// RequireSession lets the request through only with a live session cookie.
// Browsers without one are redirected to the login page; API clients get a
// 401 carrying the same redirect as an action.
func (a *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(a.server.Config.Auth.CookieName)
		if err != nil || cookie.Value == "" {
			return a.unauthenticated(c)
		}

		session, err := a.sessions.Session(c.Request().Context(), cookie.Value)
		if errors.Is(err, auth.ErrSessionNotFound) {
			return a.unauthenticated(c)
		}
		if err != nil {
			return err
		}

		userID := session.UserID.String()
		c.Set(UserIDKey, userID)
		c.Set(SessionKey, session)
		SetLogger(c, GetLogger(c).With().Str("user_id", userID).Logger())

		return next(c)
	}
}

func (a *AuthMiddleware) unauthenticated(c echo.Context) error {
	GetLogger(c).Debug().Msg("request without a valid session")

	if WantsJSON(c) {
		err := errs.NewUnauthorizedError("Unauthorized", false)
		err.Action = errs.NewRedirectAction(LoginPath)
		return err
	}

	return c.Redirect(http.StatusSeeOther, LoginPath)
}

// GetSession returns the session RequireSession resolved, if any.
func GetSession(c echo.Context) *auth.Session {
	if session, ok := c.Get(SessionKey).(*auth.Session); ok {
		return session
	}
	return nil
}

// WantsJSON reports whether the client sent or asked for JSON rather
// than submitting an HTML form.
func WantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
