package auth

import "github.com/golang-jwt/jwt/v5"

// CartSessionClaims identify an anonymous shopper. The registered ID (jti)
// carries the cart session key.
type CartSessionClaims struct {
	jwt.RegisteredClaims
}

// SessionKey returns the cart session key carried in the token.
func (c *CartSessionClaims) SessionKey() string {
	if c == nil {
		return ""
	}
	return c.ID
}
