// Package auth issues and verifies broker session tokens, and runs the
// wallet-key challenge that precedes them.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/modelmart/modelmart/internal/common"
)

// Claims carries the wallet principal alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Principal string
}

func GenerateToken(principal string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Principal: principal,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetPrincipalFromToken verifies the token and returns the principal it
// was issued for. Expiry surfaces as common.ErrTokenExpired so clients
// can re-handshake; any other defect is common.ErrInvalidToken.
func GetPrincipalFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Principal, nil
}
