package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("coach-1", "statements/coach-1/client.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	owner, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "coach-1", owner)
	assert.Equal(t, "statements/coach-1/client.csv", path)
	assert.Equal(t, expiresAt, parsedExpiry)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return base }
	token, _, err := signer.Generate("coach-1", "a.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, _, _, err = signer.Parse(token, false)
	assert.ErrorIs(t, err, ErrTokenExpired)

	owner, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "coach-1", owner)
	assert.Equal(t, "a.csv", path)
}

func TestSignedURLSignerTampered(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("coach-1", "a.csv")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, _, _, err = other.Parse(token, false)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, _, err = signer.Parse("garbage", false)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
