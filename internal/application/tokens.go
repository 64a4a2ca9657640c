package application

import (
	"context"
	"errors"
	"sync"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

const (
	accessTokenKey  = "klyro/access_token"
	refreshTokenKey = "klyro/refresh_token"
)

// TokenKeeper holds the session tokens in memory and mirrors them to the
// secret store, falling back to it when the in-memory copy is empty. It is
// the token source the HTTP client reads from and clears on auth failure.
type TokenKeeper struct {
	mu      sync.RWMutex
	store   ports.SecretStore
	access  string
	refresh string
}

func NewTokenKeeper(store ports.SecretStore) *TokenKeeper {
	return &TokenKeeper{store: store}
}

func (k *TokenKeeper) AccessToken(ctx context.Context) string {
	k.mu.RLock()
	token := k.access
	k.mu.RUnlock()
	if token != "" {
		return token
	}

	stored, err := k.store.Get(ctx, accessTokenKey)
	if err != nil {
		return ""
	}
	k.mu.Lock()
	k.access = stored
	k.mu.Unlock()
	return stored
}

func (k *TokenKeeper) RefreshToken(ctx context.Context) string {
	k.mu.RLock()
	token := k.refresh
	k.mu.RUnlock()
	if token != "" {
		return token
	}

	stored, err := k.store.Get(ctx, refreshTokenKey)
	if err != nil {
		return ""
	}
	k.mu.Lock()
	k.refresh = stored
	k.mu.Unlock()
	return stored
}

func (k *TokenKeeper) SetTokens(ctx context.Context, access, refresh string) error {
	k.mu.Lock()
	k.access = access
	k.refresh = refresh
	k.mu.Unlock()

	if err := k.store.Put(ctx, accessTokenKey, access); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	return k.store.Put(ctx, refreshTokenKey, refresh)
}

// ClearAccessToken drops the access token only; the refresh token stays so
// the session can still be recovered explicitly.
func (k *TokenKeeper) ClearAccessToken(ctx context.Context) {
	k.mu.Lock()
	k.access = ""
	k.mu.Unlock()
	_ = k.store.Delete(ctx, accessTokenKey)
}

func (k *TokenKeeper) ClearAll(ctx context.Context) error {
	k.mu.Lock()
	k.access = ""
	k.refresh = ""
	k.mu.Unlock()

	errAccess := k.store.Delete(ctx, accessTokenKey)
	errRefresh := k.store.Delete(ctx, refreshTokenKey)
	if errAccess != nil && !errors.Is(errAccess, domain.ErrSecretNotFound) {
		return errAccess
	}
	if errRefresh != nil && !errors.Is(errRefresh, domain.ErrSecretNotFound) {
		return errRefresh
	}
	return nil
}
