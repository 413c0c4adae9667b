package service

import (
	"errors"
	"fmt"
	"go-wallet-ledger/logger"
	"go-wallet-ledger/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// CredentialHasher produces and checks one-way digests of passwords and PINs.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash credential")
		return "", err
	}
	return string(bytes), nil
}

func (h *BcryptHasher) Verify(secret, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	return err == nil
}

// AuthGateway issues and verifies session tokens. A token carries the account
// id and role, and is bound to an expiry.
type AuthGateway struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthGateway(secret string, ttl time.Duration) (*AuthGateway, error) {
	if secret == "" {
		return nil, errors.New("jwt secret key is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthGateway{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (g *AuthGateway) IssueToken(accountID string, role model.Role) (*model.TokenResponse, error) {
	expiresAt := g.now().Add(g.ttl)
	claims := &model.AppClaims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(g.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		logger.Log.WithError(err).WithField("account_id", accountID).Error("Failed to sign JWT")
		return nil, fmt.Errorf("failed to sign token string: %w", err)
	}
	return &model.TokenResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify returns the claims of a valid, unexpired token signed by this
// gateway. Any other token yields ErrUnauthorized.
func (g *AuthGateway) Verify(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !token.Valid || claims.AccountID == "" {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}
