package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreSetGetClear(t *testing.T) {
	storage := NewMemoryStorage()
	tokens := NewTokenStore(storage)

	access, err := tokens.Get(AccessToken)
	require.NoError(t, err)
	assert.Empty(t, access)

	require.NoError(t, tokens.Set("a1", "r1"))

	access, err = tokens.Get(AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a1", access)

	refresh, err := tokens.Get(RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "r1", refresh)

	require.NoError(t, tokens.SetAccess("a2"))
	access, _ = tokens.Get(AccessToken)
	refresh, _ = tokens.Get(RefreshToken)
	assert.Equal(t, "a2", access)
	assert.Equal(t, "r1", refresh)

	require.NoError(t, tokens.Clear())
	assert.Equal(t, 0, storage.Len())
}

func TestTokenStoreDoesNotValidateTokens(t *testing.T) {
	tokens := NewTokenStore(NewMemoryStorage())
	require.NoError(t, tokens.Set("not a jwt", ""))

	access, err := tokens.Get(AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "not a jwt", access)
}
