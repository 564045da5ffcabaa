package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// GenerateNumericCode returns a zero-padded random code of the given number
// of digits.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("invalid otp length %d", digits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}

// CodeMatches compares a stored code with user input in constant time and
// checks it has not expired at now.
func CodeMatches(stored *string, expiry *time.Time, input string, now time.Time) bool {
	if stored == nil || expiry == nil || *stored == "" || input == "" {
		return false
	}
	if !now.Before(*expiry) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(input)) == 1
}
