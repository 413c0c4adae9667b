package handler

import (
	"context"
	"go-wallet-ledger/common"
	"go-wallet-ledger/model"
	"go-wallet-ledger/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	AccountIDKey contextKey = "accountID"
	UserRoleKey  contextKey = "userRole"
)

// TokenVerifier resolves a bearer token into its claims.
type TokenVerifier interface {
	Verify(token string) (*model.AppClaims, error)
}

func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.NewAppError(http.StatusUnauthorized, service.KindUnauthorized, "Authorization header is required", nil).Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				common.NewAppError(http.StatusUnauthorized, service.KindUnauthorized, "Invalid authorization header format", nil).Send(w)
				return
			}

			claims, err := verifier.Verify(headerParts[1])
			if err != nil {
				common.NewAppError(http.StatusUnauthorized, service.KindUnauthorized, "Invalid or expired token", err).Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDKey, claims.AccountID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleKey).(model.Role)
		if !ok || role != model.RoleAdmin {
			common.NewAppError(http.StatusForbidden, service.KindUnauthorized, "Access denied. Admin privileges required.", nil).Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accountIDFrom(r *http.Request) (string, *common.AppError) {
	id, ok := r.Context().Value(AccountIDKey).(string)
	if !ok || id == "" {
		return "", common.NewAppError(http.StatusUnauthorized, service.KindUnauthorized, "Invalid account ID in token", nil)
	}
	return id, nil
}

// idempotencyKey reads the optional Idempotency-Key header.
func idempotencyKey(r *http.Request) (string, *common.AppError) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(key) > 255 {
		return "", common.NewAppError(http.StatusBadRequest, common.KindValidation, "Idempotency-Key must be at most 255 characters", nil)
	}
	return key, nil
}
