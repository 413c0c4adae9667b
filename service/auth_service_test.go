// file: service/auth_service_test.go

package service

import (
	"testing"
	"time"

	"go-wallet-ledger/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestBcryptHasher_HashAndVerify ensures that hashing and verification work correctly.
func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	password := "mySecretPassword123"

	hashed, err := hasher.Hash(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hashed)

	assert.True(t, hasher.Verify(password, hashed))
	assert.False(t, hasher.Verify("notMyPassword", hashed))
	assert.False(t, hasher.Verify(password, "not-a-bcrypt-digest"))
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
	assert.Equal(t, 12, NewBcryptHasher(12).Cost)
}

func TestAuthGateway(t *testing.T) {
	gateway, err := NewAuthGateway("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("issued token verifies", func(t *testing.T) {
		tok, err := gateway.IssueToken("acc-1", model.RoleAdmin)
		require.NoError(t, err)

		claims, err := gateway.Verify(tok.Token)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", claims.AccountID)
		assert.Equal(t, model.RoleAdmin, claims.Role)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		past, _ := NewAuthGateway("test-secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, err := past.IssueToken("acc-1", model.RoleUser)
		require.NoError(t, err)

		_, err = gateway.Verify(tok.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("foreign signature is rejected", func(t *testing.T) {
		other, _ := NewAuthGateway("other-secret", time.Hour)
		tok, err := other.IssueToken("acc-1", model.RoleUser)
		require.NoError(t, err)

		_, err = gateway.Verify(tok.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unsigned token is rejected", func(t *testing.T) {
		claims := &model.AppClaims{
			AccountID:        "acc-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = gateway.Verify(raw)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := gateway.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestNewAuthGateway_RequiresSecret(t *testing.T) {
	_, err := NewAuthGateway("", time.Hour)
	assert.Error(t, err)
}
