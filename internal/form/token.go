package form

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	tokenPrefix   = "sk-"
	tokenLength   = 48
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateToken returns a new access token: "sk-" followed by 48 random
// alphanumerics.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return tokenPrefix + string(buf), nil
}
