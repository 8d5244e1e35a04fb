package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/invoices/internal/auth"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/sqlerr"
	"github.com/deppfellow/invoices/internal/validation"
)

type SessionStore interface {
	Get(ctx context.Context, token string) (*auth.Session, error)
	Close(ctx context.Context, token string) error
}

type UserCreator interface {
	Create(ctx context.Context, user model.User) error
}

type AuthService struct {
	authenticator *auth.Authenticator
	sessions      SessionStore
	users         UserCreator
}

func NewAuthService(authenticator *auth.Authenticator, sessions SessionStore, users UserCreator) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		sessions:      sessions,
		users:         users,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, credentials auth.Credentials) auth.Result {
	result := s.authenticator.Authenticate(ctx, credentials)

	logger := zerolog.Ctx(ctx)
	switch {
	case result.Session != nil:
		logger.Info().Str("user_id", result.Session.UserID.String()).Msg("user signed in")
	case result.Message != "":
		logger.Info().Str("reason", result.Message).Msg("sign-in rejected")
	}

	return result
}

// Session resolves a session cookie value.
func (s *AuthService) Session(ctx context.Context, token string) (*auth.Session, error) {
	return s.sessions.Get(ctx, token)
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Close(ctx, token)
}

// NewUser is the input of CreateUser.
type NewUser struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (u *NewUser) Validate() error {
	return validation.Struct(u)
}

// CreateUser stores a user that can sign in with credentials.
func (s *AuthService) CreateUser(ctx context.Context, input NewUser) (*model.User, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:       uuid.New(),
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
			return nil, fmt.Errorf("a user with email %s already exists: %w", input.Email, err)
		}
		return nil, err
	}

	return &user, nil
}
