package secure

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

type RandomSource interface {
	// Token returns a URL-safe string carrying n random bytes.
	Token(n int) (string, error)
	// Digits returns n uniformly distributed decimal digits.
	Digits(n int) (string, error)
}

type cryptoRandom struct{}

func NewCryptoRandom() RandomSource {
	return cryptoRandom{}
}

func (cryptoRandom) Token(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("secure: read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (cryptoRandom) Digits(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("secure: read random digit: %w", err)
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}
