package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie the session token travels in. A bearer token in
// the Authorization header is accepted as an alternative.
const CookieName = "token"

// tokenTTL bounds how long a session token stays valid. Logging in again
// issues a fresh token and overwrites the stored one.
const tokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims is the payload carried inside a session JWT. Only the user id is
// authoritative — role and everything else is re-read from the database on
// every request so revocations and promotions take effect immediately.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// NewToken issues a signed session token for the given user id.
func NewToken(secret string, userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "codeclash-api",
		},
	})
	return token.SignedString([]byte(secret))
}

// VerifyToken parses and validates a session token, returning its claims.
func VerifyToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
