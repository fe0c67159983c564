package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vaughan-dsouza/educatech-blog/internal/models"
)

var (
	ErrInvalidToken = errors.New("session: invalid token")
	ErrExpiredToken = errors.New("session: token expired")
)

// Decoder reads bearer token claims. The client cannot enforce anything, so
// by default the payload is decoded without checking the signature. With a
// Secret set, HS256 signatures are verified as well.
type Decoder struct {
	Secret string
}

// Decode returns the token claims. Expiry is not checked here; see
// IsExpired.
func (d Decoder) Decode(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	if d.Secret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return claims, nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(d.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Check decodes token and rejects it when expired at now.
func (d Decoder) Check(token string, now time.Time) (jwt.MapClaims, error) {
	claims, err := d.Decode(token)
	if err != nil {
		return nil, err
	}
	if IsExpired(claims, now) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

// IsExpired reports whether claims carry no exp or an exp before now.
// A token whose exp equals the current second is still valid.
func IsExpired(claims jwt.MapClaims, now time.Time) bool {
	if claims == nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Unix() < now.Unix()
}

// UserFromClaims builds the session user from token claims. fallbackEmail
// is used when the token has no email claim.
func UserFromClaims(claims jwt.MapClaims, fallbackEmail string) *models.User {
	id := claimString(claims, "sub")
	if id == "" {
		id = claimString(claims, "id")
	}

	email := claimString(claims, "email")
	if email == "" {
		email = fallbackEmail
	}

	isProfessor, _ := claims["isProfessor"].(bool)

	return &models.User{
		ID:            id,
		Email:         email,
		ProfessorName: claimString(claims, "professorName"),
		IsProfessor:   isProfessor,
		ProfessorID:   models.ID(claimString(claims, "professorId")),
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
