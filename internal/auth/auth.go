// Package auth verifies identity tokens minted by the external auth
// service. The gateway never issues credentials; it only checks the
// signature and extracts the verified identity.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified user attached to a connection.
type Identity struct {
	UserID   string
	Username string
}

// Claims mirrors the token payload issued by the auth service.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// Verify validates an HS256 token and returns the identity it carries.
func Verify(secret, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}

	username := claims.Username
	if username == "" {
		username = claims.UserID
	}
	return Identity{UserID: claims.UserID, Username: username}, nil
}
