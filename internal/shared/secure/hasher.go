package secure

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Hasher is a keyed one-way digest. Sum is deterministic so the digest can be
// used as a lookup key; Equal compares digests in constant time.
type Hasher interface {
	Sum(value string) string
	Equal(a, b string) bool
}

type hmacHasher struct {
	key []byte
}

func NewHMACHasher(secret string) (Hasher, error) {
	if secret == "" {
		return nil, errors.New("secure: hash secret is required")
	}
	return &hmacHasher{key: []byte(secret)}, nil
}

func (h *hmacHasher) Sum(value string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *hmacHasher) Equal(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
