package models

import (
	"github.com/dgrijalva/jwt-go"
)

// SessionClaims - represents session token claims. It extends jwt.StandardClaims struct
// The token is carried in the admin_session cookie and, for cross-context
// calls, the x-admin-session header
type SessionClaims struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.StandardClaims
}
