// Package auth holds the credential primitives: access-token signing and
// validation, password hashing, and the session guard that turns a bearer
// credential into a principal.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Noureldein28/security-todo/internal/common"
)

// Claims carries the registered claims plus the subject's user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// GenerateAccessToken signs a short-lived HS256 token for the subject.
// Access tokens are validated statelessly: no store lookup, just signature
// and expiry. A token issued before logout therefore stays valid until it
// expires naturally; that window is bounded by the short validity duration.
func GenerateAccessToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates the signature and expiry of an access token
// and returns the subject's user id.
//
// Failures map onto the shared taxonomy: common.ErrTokenExpired for an
// outlived token, common.ErrTokenMalformed for anything that is not a valid
// HS256 token of ours (bad signature, wrong algorithm, garbage input).
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrTokenMalformed
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrTokenMalformed
	}

	return claims.UserID, nil
}
