package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the display subset of a session token's claims.
type Claims struct {
	Subject  string
	User     string
	IssuedAt time.Time
}

// ParseClaims decodes the claims of a JWT session token without verifying its
// signature; the client never holds the signing key. ok is false for tokens
// that are not JWTs.
func ParseClaims(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, false
	}
	var c Claims
	switch sub := mc["sub"].(type) {
	case string:
		c.Subject = sub
	case float64:
		c.Subject = fmt.Sprintf("%.0f", sub)
	}
	if user, ok := mc["user"].(string); ok {
		c.User = user
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, true
}
