package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authrelay/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "8b7d2c9e-2f34-4f10-9df1-0a4c6a1a2b3c",
		Email:    "dev@example.com",
		Username: "dev",
	}
}

func TestSignAndVerify(t *testing.T) {
	user := testUser()
	token, expiration, err := Sign(user, "secret", "HS256", 25*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(25*time.Minute), expiration, 5*time.Second)

	payload, err := Verify(token, "secret", "HS256")
	require.NoError(t, err)
	assert.Equal(t, user.ID, payload.ID)
	assert.Equal(t, user.Email, payload.Email)
	assert.Equal(t, user.Username, payload.Username)
}

func TestSignUnknownAlgorithm(t *testing.T) {
	_, _, err := Sign(testUser(), "secret", "HS999", time.Minute)
	assert.Error(t, err)
}

func TestVerifyAlgorithmMismatch(t *testing.T) {
	token, _, err := Sign(testUser(), "secret", "HS384", time.Minute)
	require.NoError(t, err)

	_, err = Verify(token, "secret", "HS256")
	assert.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, err := Sign(testUser(), "secret", "HS256", time.Minute)
	require.NoError(t, err)

	_, err = Verify(token, "other-secret", "HS256")
	assert.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	token, _, err := Sign(testUser(), "secret", "HS256", -time.Minute)
	require.NoError(t, err)

	_, err = Verify(token, "secret", "HS256")
	assert.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := Verify("not.a.token", "secret", "HS256")
	assert.Error(t, err)

	_, err = Verify("", "secret", "HS256")
	assert.Error(t, err)
}
