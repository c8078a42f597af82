// File: internal/auth/jwt_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(42, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestGenerateRejectsZeroUser(t *testing.T) {
	_, err := GenerateJWT(0, []byte("secret"))
	assert.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := GenerateJWT(1, []byte("right-key"))
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("wrong-key"))
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", []byte("secret"))
	assert.Error(t, err)
}
