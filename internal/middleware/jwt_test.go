package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	userID   int
	username string
	err      error
}

func (f *fakeValidator) ValidateToken(string) (int, string, error) {
	return f.userID, f.username, f.err
}

func protectedEcho(t *testing.T, wantID int, wantName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(UserKey).(int)
		require.True(t, ok)
		require.Equal(t, wantID, id)

		name, ok := r.Context().Value(UsernameKey).(string)
		require.True(t, ok)
		require.Equal(t, wantName, name)

		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	am := NewAuthMiddleware(&fakeValidator{})
	handler := am.Handle(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	am := NewAuthMiddleware(&fakeValidator{err: errors.New("expired")})
	handler := am.Handle(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	am := NewAuthMiddleware(&fakeValidator{userID: 7, username: "alice"})
	handler := am.Handle(protectedEcho(t, 7, "alice"))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareQueryParamFallback(t *testing.T) {
	// Browser websocket clients cannot set headers; the token rides a
	// query parameter instead.
	am := NewAuthMiddleware(&fakeValidator{userID: 7, username: "alice"})
	handler := am.Handle(protectedEcho(t, 7, "alice"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?token=good-token", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}
