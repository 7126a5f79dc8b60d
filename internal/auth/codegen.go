package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	digitAlphabet        = "0123456789"
	alphanumericAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateCode returns length decimal digits drawn uniformly from crypto/rand.
func GenerateCode(length int) (string, error) {
	return randomString(digitAlphabet, length)
}

// GenerateHandle returns a random alphanumeric string of the given length.
func GenerateHandle(length int) (string, error) {
	return randomString(alphanumericAlphabet, length)
}

func randomString(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("random string length must be positive, got %d", length)
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
