package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "skill-stack", 0)
	tok, err := tm.Issue("user-123")
	require.NoError(t, err)

	claims, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "skill-stack", claims.Issuer)
}

func TestIssue_ThirtyDayWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("k", "", 0)
	tm.now = func() time.Time { return now }

	tok, err := tm.Issue("u1")
	require.NoError(t, err)

	claims, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), claims.ExpiresAt.Time.UTC())
	assert.Equal(t, now, claims.IssuedAt.Time.UTC())
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-31 * 24 * time.Hour)
	tm := NewTokenManager("k", "", 0)
	tm.now = func() time.Time { return issued }
	tok, err := tm.Issue("u1")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("right-secret", "", 0).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", "", 0).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("k", "someone-else", 0).Issue("u3")
	require.NoError(t, err)

	_, err = NewTokenManager("k", "skill-stack", 0).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{UserID: "u4", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenManager("k", "", 0).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("k", "", 0).Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
