package registry

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T, store *Store) *Authenticator {
	t.Helper()
	auth, err := NewAuthenticator(context.Background(), store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return auth
}

func TestLoginAndResolve(t *testing.T) {
	store := newTestStore(t)
	auth := newTestAuthenticator(t, store)
	id := createTestUser(t, store, "Nguyen Van A", "0900000001")

	token, err := auth.Login(context.Background(), "0900000001", "hunter2!")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := auth.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Nguyen Van A", user.Fullname)
}

func TestLoginFailureIsUndifferentiated(t *testing.T) {
	store := newTestStore(t)
	auth := newTestAuthenticator(t, store)
	createTestUser(t, store, "Nguyen Van A", "0900000001")

	_, badPassword := auth.Login(context.Background(), "0900000001", "wrong")
	_, unknownPhone := auth.Login(context.Background(), "0999999999", "hunter2!")

	assert.ErrorIs(t, badPassword, ErrUnauthorized)
	assert.ErrorIs(t, unknownPhone, ErrUnauthorized)
	assert.Equal(t, badPassword.Error(), unknownPhone.Error())
}

func TestResolveRejectsGarbage(t *testing.T) {
	store := newTestStore(t)
	auth := newTestAuthenticator(t, store)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := auth.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestResolveRejectsForeignSignature(t *testing.T) {
	store := newTestStore(t)
	auth := newTestAuthenticator(t, store)
	id := createTestUser(t, store, "Nguyen Van A", "0900000001")

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(id, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some other secret"))
	require.NoError(t, err)

	_, err = auth.Resolve(context.Background(), forged)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	store := newTestStore(t)
	auth := newTestAuthenticator(t, store)
	id := createTestUser(t, store, "Nguyen Van A", "0900000001")

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(id, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * TokenTTL)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-TokenTTL)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(auth.secret)
	require.NoError(t, err)

	_, err = auth.Resolve(context.Background(), expired)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveRejectsMissingExpiry(t *testing.T) {
	store := newTestStore(t)
	auth := newTestAuthenticator(t, store)
	id := createTestUser(t, store, "Nguyen Van A", "0900000001")

	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(id, 10),
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	eternal, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(auth.secret)
	require.NoError(t, err)

	_, err = auth.Resolve(context.Background(), eternal)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveRejectsDeletedSubject(t *testing.T) {
	store := newTestStore(t)
	auth := newTestAuthenticator(t, store)
	id := createTestUser(t, store, "Nguyen Van A", "0900000001")

	token, err := auth.Login(context.Background(), "0900000001", "hunter2!")
	require.NoError(t, err)

	require.NoError(t, store.db.Where("id = ?", id).Delete(&UserRecord{}).Error)

	_, err = auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
