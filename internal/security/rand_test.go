package security

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		s, err := RandomString(rand.Reader, Alphanumeric, 12)
		require.NoError(t, err)
		require.Len(t, s, 12)
		for _, ch := range s {
			assert.True(t, strings.ContainsRune(Alphanumeric, ch), "unexpected %q", ch)
		}
	}
}

func TestRandomString_RejectsBiasedBytes(t *testing.T) {
	// 250..255 выше границы 248 и должны быть пропущены
	src := bytes.NewReader([]byte{250, 255, 0, 61, 248, 62, 1})
	s, err := RandomString(src, Alphanumeric, 4)
	require.NoError(t, err)
	assert.Equal(t, "A9AB", s)
}

func TestRandomString_ShortReader(t *testing.T) {
	_, err := RandomString(bytes.NewReader([]byte{1, 2}), Alphanumeric, 6)
	assert.Error(t, err)
}

func TestRandomString_EmptyAlphabet(t *testing.T) {
	_, err := RandomString(rand.Reader, "", 6)
	assert.ErrorIs(t, err, ErrEmptyAlphabet)
}
