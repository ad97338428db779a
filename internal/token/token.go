// Package token reads the claims of the stored access token without verifying
// its signature. The client never holds the signing key; this is for display only.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	SubjectClaim    = "sub"
	UserIDClaim     = "id"
	IssuerClaim     = "iss"
	IssuedAtClaim   = "iat"
	ExpirationClaim = "exp"
)

var ErrEmpty = errors.New("token: empty access token")

// Info is what the access token says about its holder.
type Info struct {
	Subject   string
	UserID    string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes raw as a JWT and extracts the known claims.
// Missing claims are left zero.
func Inspect(raw string) (Info, error) {
	if raw == "" {
		return Info{}, ErrEmpty
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return Info{}, fmt.Errorf("parse access token: %w", err)
	}

	return Info{
		Subject:   stringClaim(claims, SubjectClaim),
		UserID:    stringClaim(claims, UserIDClaim),
		Issuer:    stringClaim(claims, IssuerClaim),
		IssuedAt:  timeClaim(claims, IssuedAtClaim),
		ExpiresAt: timeClaim(claims, ExpirationClaim),
	}, nil
}

// Expired reports whether the token carries an expiry at or before now.
// A token without exp never expires.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Remaining is the time left until expiry, zero once expired or without exp.
func (i Info) Remaining(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() || i.Expired(now) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

func stringClaim(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func timeClaim(claims jwt.MapClaims, name string) time.Time {
	if v, ok := claims[name].(float64); ok {
		return time.Unix(int64(v), 0)
	}
	return time.Time{}
}
