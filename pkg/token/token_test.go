package token

import (
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reformly/config"
	"Reformly/pkg/errors"
)

func setup(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	t.Cleanup(func() { config.Cfg = prev })

	config.Cfg.JWTSecret = "test-secret-with-enough-entropy"
	config.Cfg.JWTExpireMinutes = 30
	config.Cfg.JWTRefreshDays = 7
	require.NoError(t, Init())
}

func TestGenerateAndValidate(t *testing.T) {
	setup(t)

	pair, err := GenerateTokenPair("123456")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.InDelta(t, 30*60, pair.ExpiresIn, 2)

	uid, err := ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "123456", uid)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	setup(t)

	pair, err := GenerateTokenPair("1")
	require.NoError(t, err)

	_, err = ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, errors.ErrInvalidTokenType)
}

func TestValidateRefreshToken_RejectsForeignSigningMethod(t *testing.T) {
	setup(t)

	raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, jwtv5.MapClaims{
		IdentityKey: "1",
		"type":      "refresh",
	}).SignedString([]byte(config.Cfg.JWTSecret))
	require.NoError(t, err)

	_, err = ValidateRefreshToken(raw)
	assert.ErrorIs(t, err, errors.ErrUnexpectedSigningMethod)
}

func TestValidateRefreshToken_WrongSecret(t *testing.T) {
	setup(t)

	pair, err := GenerateTokenPair("1")
	require.NoError(t, err)

	config.Cfg.JWTSecret = "rotated"
	_, err = ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}
