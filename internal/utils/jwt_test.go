package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestNewAccessTokenCarriesClaims(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "concierge", 15)
	assert.NoError(t, err)
	assert.NotEmpty(t, at.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "concierge", claims["role"])
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret-a", 1, "customer", 15)
	assert.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	assert.Error(t, err)
}

func TestRefreshTokenHashingIsStable(t *testing.T) {
	rt, err := NewRefreshToken(30)
	assert.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))

	other, err := NewRefreshToken(30)
	assert.NoError(t, err)
	assert.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer", 4)
	assert.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2-but-longer"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
