package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/invoices/internal/model"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db, ttl)
	store.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	store.newToken = func() string { return "tok" }

	return store, mock
}

func TestSessionStoreOpen(t *testing.T) {
	store, mock := newTestStore(t, time.Hour)
	user := model.User{ID: uuid.New(), Email: "user@nextmail.com"}

	want := Session{
		Token:     "tok",
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectSet("session:tok", string(data), time.Hour).SetVal("OK")

	session, err := store.Open(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, &want, session)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStoreOpenError(t *testing.T) {
	store, mock := newTestStore(t, time.Hour)
	user := model.User{ID: uuid.New(), Email: "user@nextmail.com"}

	data, err := json.Marshal(Session{
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	mock.ExpectSet("session:tok", string(data), time.Hour).SetErr(errors.New("OOM"))

	_, err = store.Open(context.Background(), user)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store session")
}

func TestSessionStoreGet(t *testing.T) {
	store, mock := newTestStore(t, time.Hour)
	userID := uuid.New()

	mock.ExpectGet("session:tok").SetVal(`{"userId":"` + userID.String() + `","email":"user@nextmail.com","expiresAt":"2024-03-01T13:00:00Z"}`)
	mock.ExpectGet("session:gone").RedisNil()

	session, err := store.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, "user@nextmail.com", session.Email)

	_, err = store.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStoreClose(t *testing.T) {
	store, mock := newTestStore(t, time.Hour)

	mock.ExpectDel("session:tok").SetVal(0)

	require.NoError(t, store.Close(context.Background(), "tok"))
	require.NoError(t, mock.ExpectationsWereMet())
}
