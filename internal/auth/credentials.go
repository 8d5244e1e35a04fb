package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/repository"
	"github.com/deppfellow/invoices/internal/validation"
)

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type SessionOpener interface {
	Open(ctx context.Context, user model.User) (*Session, error)
}

// CredentialsProvider signs users in against the users table.
type CredentialsProvider struct {
	users    UserFinder
	sessions SessionOpener
}

func NewCredentialsProvider(users UserFinder, sessions SessionOpener) *CredentialsProvider {
	return &CredentialsProvider{users: users, sessions: sessions}
}

// SignIn never tells apart a malformed submission, an unknown email and a
// wrong password: all three are KindCredentialsSignin. A failure to open
// the session is returned unwrapped.
func (p *CredentialsProvider) SignIn(ctx context.Context, credentials Credentials) (*Session, error) {
	if err := validation.Struct(credentials); err != nil {
		return nil, newError(KindCredentialsSignin, err)
	}

	user, err := p.users.GetByEmail(ctx, credentials.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(KindCredentialsSignin, err)
	}
	if err != nil {
		return nil, newError(KindCallbackRouteError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(credentials.Password)); err != nil {
		return nil, newError(KindCredentialsSignin, err)
	}

	return p.sessions.Open(ctx, *user)
}

// HashPassword hashes a password for storage in users.password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
