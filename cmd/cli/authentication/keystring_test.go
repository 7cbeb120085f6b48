package authentication

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenLifecycle(t *testing.T) {
	keyring.MockInit()

	_, err := GetTokens()
	assert.ErrorIs(t, err, ErrNotSignedIn)

	creds := &StoredCredentials{Token: "tok", UserID: 1, Username: "alice", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	require.NoError(t, StoreTokens(creds))

	got, err := GetTokens()
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	require.NoError(t, DeleteTokens())
	_, err = GetTokens()
	assert.ErrorIs(t, err, ErrNotSignedIn)

	assert.NoError(t, DeleteTokens(), "signing out twice is fine")
}

func TestExpiredSessionIsIgnored(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, StoreTokens(&StoredCredentials{Token: "old", ExpiresAt: time.Now().Add(-time.Minute).Unix()}))

	_, err := GetTokens()
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
