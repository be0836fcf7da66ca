package utils // package utils provides helper functions for token creation and hashing

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AuthToken represents a signed JWT along with its expiry. The Token field
// contains the serialized JWT string sent in the Authorization header when
// calling protected endpoints.
type AuthToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAuthToken builds and signs an HS256 JWT for a user. It takes the
// signing secret, the user ID and the user's email. Tokens are valid for
// 24 hours. The JWT carries the claims id, email, expiration (exp) and
// issued at (iat).
func NewAuthToken(secret string, userID uint64, email string) (AuthToken, error) {
	// Calculate the expiration by adding the TTL to the current UTC time.
	exp := time.Now().UTC().Add(24 * time.Hour)
	// MapClaims allows arbitrary key/value pairs; id and email identify the
	// authenticated user downstream without a database lookup.
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// Sign the token with the provided secret and obtain the string form.
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AuthToken{}, err
	}
	return AuthToken{Token: signed, Exp: exp}, nil
}
