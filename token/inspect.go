package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the subset of access credential claims the client reads. Tokens
// are opaque to the client as far as trust goes - signature verification is
// the server's job - but the payload is still useful for display and for
// deciding whether a credential is already past its expiry.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect extracts claims from a raw token without verifying its signature.
func Inspect(rawToken string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[Inspect] ParseUnverified")
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("[Inspect] error extracting claims")
	}

	sub, _ := mapClaims["sub"].(string)
	role, _ := mapClaims["role"].(string)
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	claims := &Claims{
		Subject: sub,
		Role:    role,
	}
	if iat != 0 {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp != 0 {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}

// Expired reports whether the token carries an exp claim in the past.
// Unparseable tokens count as expired; tokens without an exp claim do not
// (expiry is then only discoverable through a 401).
func Expired(rawToken string, now time.Time) bool {
	claims, err := Inspect(rawToken)
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return false
	}
	return now.After(claims.ExpiresAt)
}
