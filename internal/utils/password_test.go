package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneypools/money_pools_app/internal/utils"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := utils.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, utils.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, utils.CheckPasswordHash("wrong password", hash))
	assert.False(t, utils.CheckPasswordHash("", hash))
}

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", "secret", time.Hour, "issuer")
	require.NoError(t, err)

	claims, err := utils.ParseAndValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "issuer", claims.Issuer)

	_, err = utils.ParseAndValidateJWT(token, "other-secret")
	assert.Error(t, err)
}
