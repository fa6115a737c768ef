package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", " Admin@Venue.io ", "ADMIN", 30*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), tok.Exp, 5*time.Second)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (any, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	sub, _ := claims.GetSubject()
	assert.Equal(t, "admin@venue.io", sub)
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestNewAccessTokenRejectsEmptyInputs(t *testing.T) {
	_, err := NewAccessToken("", "a@b.c", "ADMIN", time.Minute)
	assert.Error(t, err)
	_, err = NewAccessToken("s", " ", "ADMIN", time.Minute)
	assert.Error(t, err)
}
