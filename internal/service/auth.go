package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/predictions/internal/domain"
)

// TokenTTL is how long an issued API token stays valid.
const TokenTTL = 24 * time.Hour

// AuthService authenticates API clients of the JSON command endpoint.
// Clients exchange their id and secret for a short-lived JWT.
type AuthService struct {
	clients   map[string]string // client id -> bcrypt hash of secret
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(clients map[string]string, jwtSecret string) *AuthService {
	return &AuthService{
		clients:   clients,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// HashSecret returns the bcrypt hash to configure for a client secret.
func HashSecret(secret string, cost int) (string, error) {
	if len(secret) < 16 {
		return "", fmt.Errorf("%w: client secret must be at least 16 characters", domain.ErrUsage)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// IssueToken verifies the client's credentials and returns a signed JWT.
func (s *AuthService) IssueToken(clientID, secret string) (string, error) {
	hash, ok := s.clients[clientID]
	if !ok || clientID == "" {
		return "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return "", domain.ErrUnauthorized
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return token, nil
}

// ValidateToken parses and validates a JWT and returns the client id in its
// subject. A client removed from configuration loses access immediately.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	if _, ok := s.clients[claims.Subject]; !ok {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
