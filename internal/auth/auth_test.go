package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/auth"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := tm.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue(uuid.New())
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", time.Hour)
	verifier := auth.NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	_, err := tm.Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
