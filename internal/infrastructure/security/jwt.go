// Package security provides JWT token utilities
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SysopSubject is the subject claim of every operator token.
const SysopSubject = "sysop"

// ErrInvalidToken is returned for malformed, expired or foreign tokens.
var ErrInvalidToken = errors.New("invalid token")

// ValidateJWT validates an HS256 token and returns its claims.
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// GenerateSysopToken signs a short-lived operator token.
func GenerateSysopToken(jwtSecret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expires := now.UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": SysopSubject,
		"jti": GenerateULID(),
		"iat": now.UTC().Unix(),
		"exp": expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateSysopToken accepts only unexpired tokens issued by GenerateSysopToken.
func ValidateSysopToken(tokenString, jwtSecret string) error {
	claims, err := ValidateJWT(tokenString, jwtSecret)
	if err != nil {
		return err
	}
	if sub, _ := claims["sub"].(string); sub != SysopSubject {
		return ErrInvalidToken
	}
	return nil
}
