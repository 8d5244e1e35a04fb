// Package auth signs users in with email and password.
//
// A Provider checks credentials and opens a Session. Failures it
// recognizes are returned as *Error with a closed ErrorKind; anything else
// is an unhandled error that the caller must propagate.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorKind is the category of a recognized sign-in failure.
type ErrorKind string

const (
	// KindCredentialsSignin means the email or password was wrong.
	KindCredentialsSignin ErrorKind = "CredentialsSignin"
	// KindCallbackRouteError means the provider failed while checking the
	// credentials, typically because the user store was unavailable.
	KindCallbackRouteError ErrorKind = "CallbackRouteError"
	KindAccessDenied       ErrorKind = "AccessDenied"
	KindConfiguration      ErrorKind = "Configuration"
)

// Error is a recognized sign-in failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Credentials is a sign-in form submission.
type Credentials struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

// Session is an authenticated browser session. Token is the opaque value
// stored in the session cookie.
type Session struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Provider checks credentials and opens a session.
type Provider interface {
	SignIn(ctx context.Context, credentials Credentials) (*Session, error)
}

// Result is the outcome of Authenticate. Exactly one of Session, Message
// or Err is set: a session on success, a user-facing message for a
// recognized failure, and the raw error for anything unhandled.
type Result struct {
	Session *Session
	Message string
	Err     error
}

const (
	MessageInvalidCredentials = "Invalid credentials."
	MessageSomethingWentWrong = "Something went wrong."
)

// Authenticator turns provider outcomes into form results.
type Authenticator struct {
	provider Provider
}

func NewAuthenticator(provider Provider) *Authenticator {
	return &Authenticator{provider: provider}
}

func (a *Authenticator) Authenticate(ctx context.Context, credentials Credentials) Result {
	session, err := a.provider.SignIn(ctx, credentials)
	if err == nil {
		return Result{Session: session}
	}

	var authErr *Error
	if !errors.As(err, &authErr) {
		return Result{Err: err}
	}

	if authErr.Kind == KindCredentialsSignin {
		return Result{Message: MessageInvalidCredentials}
	}
	return Result{Message: MessageSomethingWentWrong}
}
