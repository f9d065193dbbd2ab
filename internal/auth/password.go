package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/baharkarakas/skillstack-backend/internal/models"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("empty password")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	ErrMalformedHash   = errors.New("malformed password hash")
)

// CredentialError is returned when a password cannot be hashed or checked.
// It never carries the plaintext.
type CredentialError struct {
	Op  string
	Err error
}

func (e *CredentialError) Error() string { return "credential " + e.Op + ": " + e.Err.Error() }
func (e *CredentialError) Unwrap() error { return e.Err }

type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Cost() int { return h.cost }

// Hash derives a salted bcrypt hash; two calls with the same input differ.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", &CredentialError{Op: "hash", Err: ErrEmptyPassword}
	}
	if len(plain) > maxPasswordBytes {
		return "", &CredentialError{Op: "hash", Err: ErrPasswordTooLong}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", &CredentialError{Op: "hash", Err: err}
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A mismatch is not an error.
func (h *Hasher) Verify(plain, hash string) (bool, error) {
	if plain == "" {
		return false, &CredentialError{Op: "verify", Err: ErrEmptyPassword}
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &CredentialError{Op: "verify", Err: fmt.Errorf("%w: %v", ErrMalformedHash, err)}
	}
}

// HashIfChanged is the write-path hook for the credential field. An empty
// newPlain means the password was not touched and u is left as is.
func (h *Hasher) HashIfChanged(u *models.User, newPlain string) (bool, error) {
	if newPlain == "" {
		return false, nil
	}
	hash, err := h.Hash(newPlain)
	if err != nil {
		return false, err
	}
	u.PasswordHash = hash
	return true, nil
}
