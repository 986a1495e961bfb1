package auth_test

import (
	"testing"
	"time"

	"progress-service/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	id := auth.Identity{UserID: 7, Email: "a@example.com", Role: "student", SessionID: "sid-1"}

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := issuer.Issue(id)
		require.NoError(t, err)

		got, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := auth.NewTokenIssuer("other-secret", time.Hour).Issue(id)
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := auth.Claims{
			UserID: 7,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("UnsignedRejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
