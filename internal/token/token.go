// Package token issues and validates the bearer tokens that scope every
// protected request to one user.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Internal failure kinds. All of them collapse to a single 401 externally;
// the split exists for diagnostics only.
var (
	ErrMalformed = errors.New("token malformed")
	ErrSignature = errors.New("token signature invalid")
	ErrExpired   = errors.New("token expired")
)

// Issuer holds the process-wide signing secret and token lifetime. It is
// constructed once in main from configuration and passed down explicitly.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue mints an HS256 token carrying the user id as subject, expiring one
// TTL from now.
func (i *Issuer) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Validate checks signature and expiry and returns the owning user's id.
func (i *Issuer) Validate(raw string) (int, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) {
			switch {
			case verr.Errors&jwt.ValidationErrorMalformed != 0:
				return 0, ErrMalformed
			case verr.Errors&jwt.ValidationErrorExpired != 0:
				return 0, ErrExpired
			case verr.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
				return 0, ErrSignature
			}
		}
		return 0, ErrMalformed
	}
	if !tok.Valid {
		return 0, ErrSignature
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return 0, ErrMalformed
	}
	return userID, nil
}
