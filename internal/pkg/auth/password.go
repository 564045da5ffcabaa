package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/skillpivot/api/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptCost is the work factor for stored password hashes.
var BcryptCost = 12

// dummyHash is compared against when no account exists so that unknown
// emails cost the same as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("skillpivot-placeholder"), bcrypt.MinCost)

// HashPassword hashes a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", apperrors.NewValidationError("Password must be at most 72 bytes long.")
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("Password must be at most 72 bytes long.")
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a plaintext password with a stored hash.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// CheckPasswordDummy spends a bcrypt comparison without an account.
func CheckPasswordDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// RandomPassword returns a random secret for accounts that never log in with
// a password, such as Google sign-ins.
func RandomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
