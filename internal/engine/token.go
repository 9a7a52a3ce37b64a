package engine

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	tokenLength   = 25
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var tokenAlphabetSize = big.NewInt(int64(len(tokenAlphabet)))

// GenerateToken returns a random URL-safe confirmation token of 25
// alphanumeric characters.
func GenerateToken() (string, error) {
	b := make([]byte, tokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, tokenAlphabetSize)
		if err != nil {
			return "", fmt.Errorf("generating subscription token: %w", err)
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b), nil
}

// ValidToken reports whether s has the shape of a generated token.
func ValidToken(s string) bool {
	if len(s) != tokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
