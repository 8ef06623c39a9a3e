package secure_test

import (
	"encoding/base64"
	"testing"

	"go-onboarding/internal/shared/secure"

	"github.com/stretchr/testify/assert"
)

func TestHMACHasher(t *testing.T) {
	h, err := secure.NewHMACHasher("secret")
	assert.NoError(t, err)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, h.Sum("abc"), h.Sum("abc"))
		assert.NotEqual(t, h.Sum("abc"), h.Sum("abd"))
		assert.Len(t, h.Sum("abc"), 64)
	})

	t.Run("keyed", func(t *testing.T) {
		other, _ := secure.NewHMACHasher("other")
		assert.NotEqual(t, h.Sum("abc"), other.Sum("abc"))
	})

	t.Run("equal", func(t *testing.T) {
		assert.True(t, h.Equal(h.Sum("x"), h.Sum("x")))
		assert.False(t, h.Equal(h.Sum("x"), h.Sum("y")))
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := secure.NewHMACHasher("")
		assert.Error(t, err)
	})
}

func TestCryptoRandom(t *testing.T) {
	r := secure.NewCryptoRandom()

	t.Run("token carries requested entropy", func(t *testing.T) {
		tok, err := r.Token(32)
		assert.NoError(t, err)
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		assert.NoError(t, err)
		assert.Len(t, raw, 32)

		other, _ := r.Token(32)
		assert.NotEqual(t, tok, other)
	})

	t.Run("digits", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			d, err := r.Digits(6)
			assert.NoError(t, err)
			assert.Len(t, d, 6)
			for _, c := range d {
				assert.True(t, c >= '0' && c <= '9')
			}
		}
	})
}
