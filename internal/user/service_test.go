package user

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return ss
}

func TestValidateTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	service := NewService(nil, nil, "test-secret", time.Hour)

	ss := signToken(t, "test-secret", Claims{
		ID:       7,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	id, username, err := service.ValidateToken(ss)
	req.NoError(err)
	req.Equal(7, id)
	req.Equal("alice", username)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	service := NewService(nil, nil, "test-secret", time.Hour)

	ss := signToken(t, "other-secret", Claims{ID: 7, Username: "alice"})

	_, _, err := service.ValidateToken(ss)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	service := NewService(nil, nil, "test-secret", time.Hour)

	ss := signToken(t, "test-secret", Claims{
		ID:       7,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, _, err := service.ValidateToken(ss)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service := NewService(nil, nil, "test-secret", time.Hour)

	_, _, err := service.ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
