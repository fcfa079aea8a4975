// Package otp generates and hashes the numeric one-time codes used for
// mobile-number login.
package otp

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

var digits = []byte("0123456789")

// GenerateCode returns a numeric code of the given length, each digit drawn
// uniformly from crypto/rand.
func GenerateCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(digits)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}

// HashCode returns a one-way bcrypt hash of the code. Only the hash is ever
// persisted.
func HashCode(code string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CompareCode checks a plaintext code against a stored hash. bcrypt's
// comparison is constant-time.
func CompareCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
