package testutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSecret signs the access tokens the fake server issues.
var TokenSecret = []byte("lphoto-test-secret")

var errInvalidToken = errors.New("invalid token")

// Claims carries the user name the way the photo service puts it into its
// access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// GenerateToken issues an HS256 access token for username valid for ttl.
func GenerateToken(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	})
	return token.SignedString(TokenSecret)
}

// UsernameFromToken verifies a token issued by GenerateToken.
func UsernameFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return TokenSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errInvalidToken
	}
	return claims.Username, nil
}
