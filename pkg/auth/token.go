package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKeyBytes = 32

var jwtSigningMethod = jwt.SigningMethodHS256

// NewSessionKey produces an opaque, URL-safe cart session key.
func NewSessionKey() (string, error) {
	buf := make([]byte, sessionKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MintSessionToken issues a signed JWT binding sessionKey for the configured TTL.
func MintSessionToken(cfg config.JWTConfig, now time.Time, sessionKey string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if strings.TrimSpace(sessionKey) == "" {
		return "", fmt.Errorf("session key is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return "", fmt.Errorf("session ttl must be positive")
	}

	claims := CartSessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        sessionKey,
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates the JWT string and returns typed claims.
func ParseSessionToken(cfg config.JWTConfig, tokenString string) (*CartSessionClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &CartSessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.ID) == "" {
		return nil, fmt.Errorf("session token missing jti")
	}
	return claims, nil
}
