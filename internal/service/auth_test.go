package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/invoices/internal/auth"
	"github.com/deppfellow/invoices/internal/model"
)

type fakeUserCreator struct {
	users []model.User
	err   error
}

func (f *fakeUserCreator) Create(_ context.Context, user model.User) error {
	if f.err != nil {
		return f.err
	}
	f.users = append(f.users, user)
	return nil
}

type fakeSessionStore struct {
	closed []string
}

func (f *fakeSessionStore) Get(_ context.Context, token string) (*auth.Session, error) {
	if token == "tok" {
		return &auth.Session{Token: token, Email: "user@nextmail.com"}, nil
	}
	return nil, auth.ErrSessionNotFound
}

func (f *fakeSessionStore) Close(_ context.Context, token string) error {
	f.closed = append(f.closed, token)
	return nil
}

type rejectingProvider struct{}

func (rejectingProvider) SignIn(context.Context, auth.Credentials) (*auth.Session, error) {
	return nil, &auth.Error{Kind: auth.KindCredentialsSignin}
}

func newTestAuthService(users *fakeUserCreator, sessions *fakeSessionStore) *AuthService {
	return NewAuthService(auth.NewAuthenticator(rejectingProvider{}), sessions, users)
}

func TestAuthServiceAuthenticate(t *testing.T) {
	s := newTestAuthService(&fakeUserCreator{}, &fakeSessionStore{})

	result := s.Authenticate(context.Background(), auth.Credentials{Email: "user@nextmail.com", Password: "wrong-password"})

	assert.Equal(t, "Invalid credentials.", result.Message)
	assert.Nil(t, result.Session)
}

func TestAuthServiceSessions(t *testing.T) {
	sessions := &fakeSessionStore{}
	s := newTestAuthService(&fakeUserCreator{}, sessions)

	session, err := s.Session(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "user@nextmail.com", session.Email)

	_, err = s.Session(context.Background(), "other")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	require.NoError(t, s.SignOut(context.Background(), "tok"))
	assert.Equal(t, []string{"tok"}, sessions.closed)
}

func TestAuthServiceCreateUser(t *testing.T) {
	users := &fakeUserCreator{}
	s := newTestAuthService(users, &fakeSessionStore{})

	user, err := s.CreateUser(context.Background(), NewUser{Name: "User", Email: "user@nextmail.com", Password: "123456"})
	require.NoError(t, err)

	require.Len(t, users.users, 1)
	assert.Equal(t, user.ID, users.users[0].ID)
	assert.NotEqual(t, "123456", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("123456")))
}

func TestAuthServiceCreateUserInvalid(t *testing.T) {
	users := &fakeUserCreator{}
	s := newTestAuthService(users, &fakeSessionStore{})

	_, err := s.CreateUser(context.Background(), NewUser{Name: "User", Email: "user", Password: "123"})
	require.Error(t, err)
	assert.Empty(t, users.users)
}

func TestAuthServiceCreateUserDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	s := newTestAuthService(&fakeUserCreator{err: fmt.Errorf("failed to insert user: %w", pgErr)}, &fakeSessionStore{})

	_, err := s.CreateUser(context.Background(), NewUser{Name: "User", Email: "user@nextmail.com", Password: "123456"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.ErrorIs(t, err, pgErr)
}
