package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenParser reads claims without verifying the signature. The backend
// holds the signing key and is the only party that validates tokens; the
// claims here are used for display hints and to skip obviously dead tokens.
var tokenParser = jwt.NewParser()

// tokenClaims returns the claims of a JWT, or nil if the token is opaque
// or malformed.
func tokenClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := tokenParser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// TokenExpired reports whether token is a JWT whose exp claim is in the
// past. Opaque tokens and tokens without exp are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	claims := tokenClaims(token)
	if claims == nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// TokenSubject returns the sub claim of a JWT, or "". The backend issues
// tokens with the account email as subject.
func TokenSubject(token string) string {
	claims := tokenClaims(token)
	if claims == nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
