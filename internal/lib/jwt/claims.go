// Package jwt implements generation and parsing of JWT tokens with custom claim fields.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims carries the user data stored inside a token.
type CustomClaims struct {
	UserID               string `json:"uid"`  // unique user id
	Role                 string `json:"role"` // "user" or "admin"
	jwt.RegisteredClaims        // standard claims (ExpiresAt, IssuedAt, ...)
}

// Maker describes generation and parsing of signed tokens.
type Maker interface {
	GenerateToken(userID, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with an HS256 secret key and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker creates a MakerImpl from a secret key and a token lifetime.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
