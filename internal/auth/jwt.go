package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authrelay/internal/models"
)

// Payload is the verified content of an access token.
type Payload struct {
	ID       string
	Email    string
	Username string
}

// Sign mints a bearer token embedding the user's id, email and username,
// signed with the configured algorithm and expiring after ttl.
func Sign(user *models.User, secret, algorithm string, ttl time.Duration) (string, time.Time, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return "", time.Time{}, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}
	expiration := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"exp":      expiration.Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, expiration, err
}

// Verify decodes and validates a token, rejecting signing methods other than
// the configured one and expired or malformed claims.
func Verify(tokenStr, secret, algorithm string) (Payload, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{algorithm}))
	if err != nil || !tok.Valid {
		return Payload{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Payload{}, errors.New("invalid claims")
	}
	id, _ := mapc["id"].(string)
	email, _ := mapc["email"].(string)
	username, _ := mapc["username"].(string)
	if id == "" {
		return Payload{}, errors.New("invalid claims")
	}
	return Payload{ID: id, Email: email, Username: username}, nil
}
