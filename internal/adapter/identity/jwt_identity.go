package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// JWTIdentity resolves the current user from the HS256 bearer token the
// external identity service issues. No session state is kept here; the
// token is re-validated on every call.
type JWTIdentity struct {
	secret []byte
}

func NewJWTIdentity(secret string) *JWTIdentity {
	return &JWTIdentity{secret: []byte(secret)}
}

func (j *JWTIdentity) CurrentUser(_ context.Context, token string) (domain.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.User{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.User{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.User{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return domain.User{ID: sub, Email: email}, nil
}

// IssueToken signs a token for the given user, used by local development
// and the adapter tests.
func (j *JWTIdentity) IssueToken(user domain.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

var _ port.Identity = (*JWTIdentity)(nil)
