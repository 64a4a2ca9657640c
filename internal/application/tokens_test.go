package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klyro-io/klyro-cli/internal/ports/portsfake"
)

func TestTokenKeeperFallsBackToSecretStore(t *testing.T) {
	t.Parallel()

	secrets := portsfake.NewSecretStore()
	require.NoError(t, secrets.Put(context.Background(), "klyro/access_token", "a-persisted"))
	require.NoError(t, secrets.Put(context.Background(), "klyro/refresh_token", "r-persisted"))

	keeper := NewTokenKeeper(secrets)
	assert.Equal(t, "a-persisted", keeper.AccessToken(context.Background()))
	assert.Equal(t, "r-persisted", keeper.RefreshToken(context.Background()))

	// The store copy is now cached in memory; further reads skip the store.
	before := secrets.GetCalls.Load()
	assert.Equal(t, "a-persisted", keeper.AccessToken(context.Background()))
	assert.Equal(t, before, secrets.GetCalls.Load())
}

func TestTokenKeeperSetTokensSkipsEmptyRefresh(t *testing.T) {
	t.Parallel()

	secrets := portsfake.NewSecretStore()
	keeper := NewTokenKeeper(secrets)

	require.NoError(t, keeper.SetTokens(context.Background(), "a-1", ""))
	_, ok := secrets.Stored("klyro/refresh_token")
	assert.False(t, ok)

	require.NoError(t, keeper.SetTokens(context.Background(), "a-2", "r-1"))
	refresh, _ := secrets.Stored("klyro/refresh_token")
	assert.Equal(t, "r-1", refresh)
}

func TestTokenKeeperClearAccessTokenKeepsRefresh(t *testing.T) {
	t.Parallel()

	secrets := portsfake.NewSecretStore()
	keeper := NewTokenKeeper(secrets)
	require.NoError(t, keeper.SetTokens(context.Background(), "a-1", "r-1"))

	keeper.ClearAccessToken(context.Background())

	assert.Empty(t, keeper.AccessToken(context.Background()))
	assert.Equal(t, "r-1", keeper.RefreshToken(context.Background()))
}

func TestTokenKeeperClearAllToleratesMissingSecrets(t *testing.T) {
	t.Parallel()

	keeper := NewTokenKeeper(portsfake.NewSecretStore())
	assert.NoError(t, keeper.ClearAll(context.Background()))
}
