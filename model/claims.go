package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims identifies the acting account. It never carries credentials.
type AppClaims struct {
	AccountID string `json:"account_id"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}
