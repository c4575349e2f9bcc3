package jwt

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// DefaultTTL applies when GenerateToken is given a non-positive lifetime
const DefaultTTL = 24 * time.Hour

// Claims represents the JWT claims structure
type Claims struct {
	UserID       uint   `json:"user_id"`
	Login        string `json:"login"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	TokenVersion string `json:"token_version"`
	jwt.RegisteredClaims
}

var (
	secretMu      sync.RWMutex
	signingSecret string
)

// SetSecret installs the signing secret loaded by the application config.
// An empty value falls back to JWT_SECRET.
func SetSecret(s string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	signingSecret = s
}

// GetSecretKey returns the configured secret, then JWT_SECRET, then a development default
func GetSecretKey() []byte {
	secretMu.RLock()
	configured := signingSecret
	secretMu.RUnlock()
	if configured != "" {
		return []byte(configured)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "storefront-dev-secret-change-in-production"
	}
	return []byte(secret)
}

// GenerateToken creates a new JWT token for a user
func GenerateToken(userID uint, login, name, role, tokenVersion string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()

	claims := &Claims{
		UserID:       userID,
		Login:        login,
		Name:         name,
		Role:         role,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "go-storefront",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetSecretKey())
}

// ValidateToken parses and validates a JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return GetSecretKey(), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
