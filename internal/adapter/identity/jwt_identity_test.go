package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/borrowhub/internal/core/domain"
)

func TestCurrentUser_RoundTrip(t *testing.T) {
	idp := NewJWTIdentity("test-secret")

	token, err := idp.IssueToken(domain.User{ID: "auth-123", Email: "borrower@example.com"}, time.Minute)
	require.NoError(t, err)

	user, err := idp.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "auth-123", user.ID)
	assert.Equal(t, "borrower@example.com", user.Email)
}

func TestCurrentUser_ExpiredToken(t *testing.T) {
	idp := NewJWTIdentity("test-secret")

	token, err := idp.IssueToken(domain.User{ID: "auth-123"}, -time.Minute)
	require.NoError(t, err)

	_, err = idp.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser_WrongSecret(t *testing.T) {
	issuer := NewJWTIdentity("secret-a")
	verifier := NewJWTIdentity("secret-b")

	token, err := issuer.IssueToken(domain.User{ID: "auth-123"}, time.Minute)
	require.NoError(t, err)

	_, err = verifier.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser_Garbage(t *testing.T) {
	idp := NewJWTIdentity("test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := idp.CurrentUser(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestCurrentUser_MissingSubject(t *testing.T) {
	idp := NewJWTIdentity("test-secret")

	claims := jwt.MapClaims{
		"email": "nosub@example.com",
		"exp":   time.Now().Add(time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = idp.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser_RejectsUnsignedToken(t *testing.T) {
	idp := NewJWTIdentity("test-secret")

	claims := jwt.MapClaims{"sub": "auth-123"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = idp.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
