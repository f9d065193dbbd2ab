package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baharkarakas/skillstack-backend/internal/models"
)

func newTestHasher() *Hasher { return NewHasher(bcrypt.MinCost) }

func TestNewHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).Cost())
	assert.Equal(t, 12, DefaultCost)
	assert.Equal(t, bcrypt.MinCost, newTestHasher().Cost())
}

func TestHasher_HashVerifyRoundTrip(t *testing.T) {
	h := newTestHasher()

	for _, p := range []string{"secret1", "correct horse battery staple", "pässwörd", strings.Repeat("z", 72)} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)

		ok, err := h.Verify(p, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q should verify", p)
	}
}

func TestHasher_HashIsSalted(t *testing.T) {
	h := newTestHasher()

	h1, err := h.Hash("secret1")
	require.NoError(t, err)
	h2, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHasher_VerifyMismatch(t *testing.T) {
	h := newTestHasher()
	hash, err := h.Hash("secret1")
	require.NoError(t, err)

	ok, err := h.Verify("secret2", hash)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_HashRejectsBadInput(t *testing.T) {
	h := newTestHasher()

	_, err := h.Hash("")
	var ce *CredentialError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = h.Hash(strings.Repeat("x", 73))
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := newTestHasher()

	for _, hash := range []string{"", "not-a-hash", "$2a$99$short"} {
		ok, err := h.Verify("secret1", hash)
		assert.False(t, ok)
		var ce *CredentialError
		require.ErrorAs(t, err, &ce, "hash %q", hash)
		assert.ErrorIs(t, err, ErrMalformedHash)
	}
}

func TestHasher_VerifyEmptyPlaintext(t *testing.T) {
	h := newTestHasher()
	hash, err := h.Hash("secret1")
	require.NoError(t, err)

	_, err = h.Verify("", hash)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHasher_HashIfChanged(t *testing.T) {
	h := newTestHasher()

	t.Run("untouched password keeps the stored hash", func(t *testing.T) {
		u := &models.User{PasswordHash: "$2a$04$existing"}
		changed, err := h.HashIfChanged(u, "")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "$2a$04$existing", u.PasswordHash)
	})

	t.Run("new password is hashed once", func(t *testing.T) {
		u := &models.User{}
		changed, err := h.HashIfChanged(u, "secret1")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.NotEqual(t, "secret1", u.PasswordHash)

		ok, err := h.Verify("secret1", u.PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("hash failure propagates and leaves the record alone", func(t *testing.T) {
		u := &models.User{PasswordHash: "$2a$04$existing"}
		changed, err := h.HashIfChanged(u, strings.Repeat("x", 100))
		var ce *CredentialError
		require.ErrorAs(t, err, &ce)
		assert.False(t, changed)
		assert.Equal(t, "$2a$04$existing", u.PasswordHash)
	})
}
