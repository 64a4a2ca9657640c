package application

import (
	"context"
	"fmt"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/sanitize"
)

// Login exchanges credentials for a token pair and marks the session
// authenticated. The pair is persisted through the token keeper so it
// survives restarts.
func (s *Store) Login(ctx context.Context, email, password string) error {
	email = sanitize.Text(email)

	pair, err := s.apis.Auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return s.SetTokens(ctx, pair.AccessToken, pair.RefreshToken)
}

// SetTokens installs a token pair and persists the authenticated session.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	if access == "" {
		return &domain.Error{
			Kind:    domain.KindValidation,
			Message: "access token is empty",
		}
	}
	if err := s.tokens.SetTokens(ctx, access, refresh); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}

	s.mu.Lock()
	s.session = domain.Session{
		AccessToken:     access,
		RefreshToken:    refresh,
		IsAuthenticated: true,
	}
	s.mu.Unlock()

	return s.persistState(ctx)
}

// Logout destroys the session: tokens, selection, loaded data and both cache
// layers.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.tokens.ClearAll(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("clearing stored tokens")
	}

	s.mu.Lock()
	s.session = domain.Session{}
	s.selection = domain.TenantSelection{}
	s.epoch++
	s.projects = nil
	s.projectsLoaded = false
	s.apiKeys = nil
	s.analytics = domain.AnalyticsSummary{}
	s.events = nil
	s.experiments = nil
	s.recordings = nil
	s.playbooks = nil
	s.revenue = domain.RevenueReport{}
	s.entries = make(map[string]storeEntry)
	s.loading = make(map[Feature]bool)
	s.mu.Unlock()

	s.cache.ClearAll()
	return s.persistState(ctx)
}

// RefreshAccessToken performs a single refresh attempt. On any failure the
// session is destroyed and false is returned; there is no retry loop here.
func (s *Store) RefreshAccessToken(ctx context.Context) bool {
	refresh := s.tokens.RefreshToken(ctx)
	if refresh == "" {
		_ = s.Logout(ctx)
		return false
	}

	pair, err := s.apis.Auth.Refresh(ctx, refresh)
	if err != nil {
		s.logger.Warn().Err(err).Msg("token refresh failed, logging out")
		_ = s.Logout(ctx)
		return false
	}

	if pair.RefreshToken == "" {
		pair.RefreshToken = refresh
	}
	if err := s.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		s.logger.Warn().Err(err).Msg("storing refreshed tokens failed, logging out")
		_ = s.Logout(ctx)
		return false
	}
	return true
}

// MarkSessionExpired flips the session to unauthenticated without touching
// the refresh token. The HTTP client calls this through its unauthorized
// callback after clearing the access token.
func (s *Store) MarkSessionExpired() {
	s.mu.Lock()
	s.session.IsAuthenticated = false
	s.session.AccessToken = ""
	s.mu.Unlock()
}

func (s *Store) requireAuthenticated() error {
	s.mu.RLock()
	ok := s.session.IsAuthenticated
	s.mu.RUnlock()
	if !ok {
		return &domain.Error{
			Kind:    domain.KindValidation,
			Message: domain.ErrNotAuthenticated.Error(),
			Err:     domain.ErrNotAuthenticated,
		}
	}
	return nil
}
