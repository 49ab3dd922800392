package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued bearer token stays valid.
const TokenTTL = 15 * time.Minute

// userCtxKey is an unexported type used as the context key for the
// resolved caller.
type userCtxKey struct{}

// WithUser returns a new context with the resolved caller attached.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the resolved caller from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*User)
	return u, ok
}

// Authenticator issues and resolves bearer tokens. Tokens are HS256 JWTs
// signed with a secret held in persistent configuration, so every replica
// sharing the database accepts every other replica's tokens.
type Authenticator struct {
	store  *Store
	secret []byte
	logger *slog.Logger
}

// NewAuthenticator loads the signing secret from the store. The store must
// be migrated first.
func NewAuthenticator(ctx context.Context, store *Store, logger *slog.Logger) (*Authenticator, error) {
	secret, err := store.TokenSecret(ctx)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{store: store, secret: secret, logger: logger}, nil
}

// Login verifies phone+password and issues a token bound to the user's ID.
// Failure is a single undifferentiated ErrUnauthorized: the response never
// reveals whether the phone exists.
func (a *Authenticator) Login(ctx context.Context, phone, password string) (string, error) {
	id, err := a.store.VerifyLogin(ctx, phone, password)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(id, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Resolve decodes a bearer token into the caller's User row. Fails closed
// with ErrUnauthorized on any signature, format, or expiry problem, and
// when the subject does not resolve to exactly one user.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, ErrUnauthorized
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}

	return a.store.GetUser(ctx, id)
}

// Middleware resolves the Authorization header and stores the caller in
// the request context, rejecting the request with 401 otherwise. Routes
// behind it can assume UserFromContext succeeds.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Invalid authentication credentials.")
			return
		}

		user, err := a.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid authentication credentials.")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
