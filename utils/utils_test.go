package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reformly/config"
)

func withKeys(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	t.Cleanup(func() { config.Cfg = prev })

	config.Cfg.EncryptionKey = "0123456789abcdef0123456789abcdef"
	config.Cfg.EmailHashSalt = "salt"
}

func TestEncryptEmail_RoundTrip(t *testing.T) {
	withKeys(t)

	a, err := EncryptEmail("mex@example.com")
	require.NoError(t, err)
	b, err := EncryptEmail("mex@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ")

	plain, err := DecryptEmail(a)
	require.NoError(t, err)
	assert.Equal(t, "mex@example.com", plain)

	_, err = DecryptEmail([]byte{1, 2})
	assert.Error(t, err)
}

func TestHashEmail_Normalizes(t *testing.T) {
	withKeys(t)

	assert.Equal(t, HashEmail("Mex@Example.com "), HashEmail("mex@example.com"))
	assert.Len(t, HashEmail("mex@example.com"), 64)

	h := HashEmail("mex@example.com")
	config.Cfg.EmailHashSalt = "other"
	assert.NotEqual(t, h, HashEmail("mex@example.com"))
}

func TestValidate(t *testing.T) {
	assert.True(t, ValidateEmail("a.b+c@example.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("a@b"))

	assert.True(t, ValidateUsername("mex_99"))
	assert.False(t, ValidateUsername("ab"))
	assert.False(t, ValidateUsername("has space"))

	assert.True(t, ValidateOTP("012345"))
	assert.False(t, ValidateOTP("12345"))
	assert.False(t, ValidateOTP("12345a"))
}
