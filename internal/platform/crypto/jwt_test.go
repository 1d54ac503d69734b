package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("s3cret", "ops@example.com", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Sub)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("s3cret", "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("s3cret", "ops", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("s3cret", token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestEmptySecret(t *testing.T) {
	_, err := GenerateToken("", "ops", RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = ParseToken("", "anything")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
