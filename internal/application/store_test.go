package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klyro-io/klyro-cli/internal/cache"
	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
	"github.com/klyro-io/klyro-cli/internal/ports/portsfake"
)

type storeFixture struct {
	store    *Store
	clock    *clockwork.FakeClock
	secrets  *portsfake.SecretStore
	state    *portsfake.StateRepository
	auth     *portsfake.AuthAPI
	projects *portsfake.ProjectsAPI
	metrics  *portsfake.AnalyticsAPI
	cache    *cache.Service
}

func newStoreFixture(t *testing.T, persisted ports.ClientState) *storeFixture {
	t.Helper()

	clock := clockwork.NewFakeClock()
	secrets := portsfake.NewSecretStore()
	state := portsfake.NewStateRepository(persisted)
	auth := &portsfake.AuthAPI{}
	projects := &portsfake.ProjectsAPI{}
	metrics := &portsfake.AnalyticsAPI{}
	cacheService := cache.NewService(clock, zerolog.Nop())

	store, err := New(context.Background(), Config{
		APIs: APIs{
			Auth:        auth,
			Projects:    projects,
			Analytics:   metrics,
			Experiments: &portsfake.ExperimentsAPI{},
			Playbooks:   &portsfake.PlaybooksAPI{},
			Sessions:    &portsfake.SessionsAPI{},
			Revenue:     &portsfake.RevenueAPI{},
		},
		Cache:  cacheService,
		State:  state,
		Tokens: NewTokenKeeper(secrets),
		Clock:  clock,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	return &storeFixture{
		store:    store,
		clock:    clock,
		secrets:  secrets,
		state:    state,
		auth:     auth,
		projects: projects,
		metrics:  metrics,
		cache:    cacheService,
	}
}

func testRange() domain.DateRange {
	return domain.DateRange{StartDate: "2026-08-01", EndDate: "2026-08-28"}
}

func TestNewRestoresPersistedState(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{
		IsAuthenticated:       true,
		SelectedProjectID:     "proj-1",
		ImpersonatedProjectID: "proj-9",
	})

	assert.True(t, f.store.Session().IsAuthenticated)
	assert.Equal(t, "proj-1", f.store.Selection().SelectedProjectID)
	assert.Equal(t, "proj-9", f.store.EffectiveProjectID(), "impersonation wins")
}

func TestEffectiveProjectIDPrefersImpersonation(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})
	assert.Equal(t, "proj-1", f.store.EffectiveProjectID())

	require.NoError(t, f.store.Impersonate(context.Background(), "proj-9", "Beta Site", "support@klyro.io"))
	assert.Equal(t, "proj-9", f.store.EffectiveProjectID())

	require.NoError(t, f.store.ClearImpersonation(context.Background()))
	assert.Equal(t, "proj-1", f.store.EffectiveProjectID())
}

func TestLoginStoresTokensAndPersists(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{})
	f.auth.LoginFunc = func(ctx context.Context, email, password string) (domain.TokenPair, error) {
		assert.Equal(t, "dev@klyro.io", email)
		return domain.TokenPair{AccessToken: "a-1", RefreshToken: "r-1"}, nil
	}

	require.NoError(t, f.store.Login(context.Background(), "dev@klyro.io", "hunter2"))

	assert.True(t, f.store.Session().IsAuthenticated)
	access, _ := f.secrets.Stored("klyro/access_token")
	refresh, _ := f.secrets.Stored("klyro/refresh_token")
	assert.Equal(t, "a-1", access)
	assert.Equal(t, "r-1", refresh)
	assert.True(t, f.state.Saved().IsAuthenticated)
}

func TestSetTokensRejectsEmptyAccessToken(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{})
	err := f.store.SetTokens(context.Background(), "", "r-1")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestLogoutDestroysEverything(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})
	require.NoError(t, f.store.SetTokens(context.Background(), "a-1", "r-1"))

	f.metrics.SummaryFunc = func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error) {
		return domain.AnalyticsSummary{Visitors: 7}, nil
	}
	_, err := f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.NoError(t, err)

	require.NoError(t, f.store.Logout(context.Background()))

	assert.False(t, f.store.Session().IsAuthenticated)
	assert.Empty(t, f.store.EffectiveProjectID())
	_, ok := f.secrets.Stored("klyro/access_token")
	assert.False(t, ok)
	_, ok = f.secrets.Stored("klyro/refresh_token")
	assert.False(t, ok)
	assert.False(t, f.state.Saved().IsAuthenticated)

	f.store.mu.RLock()
	assert.Empty(t, f.store.entries)
	f.store.mu.RUnlock()
}

func TestRefreshAccessTokenWithoutRefreshTokenLogsOut(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	assert.False(t, f.store.RefreshAccessToken(context.Background()))
	assert.False(t, f.store.Session().IsAuthenticated)
	assert.Zero(t, f.auth.RefreshCalls.Load())
}

func TestRefreshAccessTokenSingleAttempt(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	require.NoError(t, f.store.SetTokens(context.Background(), "a-1", "r-1"))

	f.auth.RefreshFunc = func(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
		assert.Equal(t, "r-1", refreshToken)
		return domain.TokenPair{AccessToken: "a-2"}, nil
	}

	assert.True(t, f.store.RefreshAccessToken(context.Background()))
	assert.EqualValues(t, 1, f.auth.RefreshCalls.Load())

	access, _ := f.secrets.Stored("klyro/access_token")
	assert.Equal(t, "a-2", access)
	// Backend returned no rotated refresh token, the old one is kept.
	refresh, _ := f.secrets.Stored("klyro/refresh_token")
	assert.Equal(t, "r-1", refresh)
}

func TestRefreshAccessTokenFailureLogsOut(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	require.NoError(t, f.store.SetTokens(context.Background(), "a-1", "r-1"))

	f.auth.RefreshFunc = func(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
		return domain.TokenPair{}, assert.AnError
	}

	assert.False(t, f.store.RefreshAccessToken(context.Background()))
	assert.EqualValues(t, 1, f.auth.RefreshCalls.Load(), "exactly one attempt, no retry loop")
	assert.False(t, f.store.Session().IsAuthenticated)
}

func TestMarkSessionExpiredKeepsRefreshToken(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{})
	require.NoError(t, f.store.SetTokens(context.Background(), "a-1", "r-1"))

	f.store.MarkSessionExpired()

	assert.False(t, f.store.Session().IsAuthenticated)
	refresh, ok := f.secrets.Stored("klyro/refresh_token")
	assert.True(t, ok)
	assert.Equal(t, "r-1", refresh)
}

func TestSetSelectedProjectFallsBackToFirstLoaded(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	f.projects.ListFunc = func(ctx context.Context) ([]domain.Project, error) {
		return []domain.Project{{ID: "proj-1", Name: "First"}, {ID: "proj-2", Name: "Second"}}, nil
	}
	_, err := f.store.FetchProjects(context.Background(), true)
	require.NoError(t, err)

	selected, err := f.store.SetSelectedProject(context.Background(), "proj-nope")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", selected)
	assert.Equal(t, "proj-1", f.state.Saved().SelectedProjectID)

	selected, err = f.store.SetSelectedProject(context.Background(), "proj-2")
	require.NoError(t, err)
	assert.Equal(t, "proj-2", selected)
}

func TestFetchProjectsCachesUntilForced(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	f.projects.ListFunc = func(ctx context.Context) ([]domain.Project, error) {
		return []domain.Project{{ID: "proj-1", Name: "First"}}, nil
	}

	_, err := f.store.FetchProjects(context.Background(), false)
	require.NoError(t, err)
	_, err = f.store.FetchProjects(context.Background(), false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.projects.ListCalls.Load())

	_, err = f.store.FetchProjects(context.Background(), true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.projects.ListCalls.Load())
}

func TestFetchProjectsRetriesWithBackoffThenGivesUp(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	f.projects.ListFunc = func(ctx context.Context) ([]domain.Project, error) {
		return nil, assert.AnError
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.store.FetchProjects(context.Background(), false)
		done <- err
	}()

	// Three waits between the four attempts: 1s, 2s, 4s.
	for _, wait := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		f.clock.BlockUntil(1)
		f.clock.Advance(wait)
	}

	err := <-done
	require.Error(t, err)
	assert.EqualValues(t, 4, f.projects.ListCalls.Load())
	assert.True(t, f.store.ProjectsLoaded(), "loaded flips even after the final failure")
}

func TestFetchProjectsRetrySucceedsMidway(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	var calls atomic.Int32
	f.projects.ListFunc = func(ctx context.Context) ([]domain.Project, error) {
		if calls.Add(1) < 3 {
			return nil, assert.AnError
		}
		return []domain.Project{{ID: "proj-1", Name: "First"}}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.store.FetchProjects(context.Background(), false)
		done <- err
	}()

	f.clock.BlockUntil(1)
	f.clock.Advance(time.Second)
	f.clock.BlockUntil(1)
	f.clock.Advance(2 * time.Second)

	require.NoError(t, <-done)
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, []domain.Project{{ID: "proj-1", Name: "First"}}, f.store.Projects())
}

func TestFetchAnalyticsUsesStoreCacheWithinTTL(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})
	f.metrics.SummaryFunc = func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error) {
		assert.Equal(t, "proj-1", id)
		return domain.AnalyticsSummary{Visitors: 42}, nil
	}

	first, err := f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.NoError(t, err)
	assert.EqualValues(t, 42, first.Visitors)

	_, err = f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.metrics.SummaryCalls.Load())

	// Force bypasses the cached entry.
	_, err = f.store.FetchAnalytics(context.Background(), testRange(), true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.metrics.SummaryCalls.Load())

	// Expiry refetches too.
	f.clock.Advance(storeTTL + time.Second)
	_, err = f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, f.metrics.SummaryCalls.Load())
}

func TestFetchAnalyticsDifferentRangesCacheSeparately(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})
	f.metrics.SummaryFunc = func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error) {
		return domain.AnalyticsSummary{}, nil
	}

	_, err := f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.NoError(t, err)
	_, err = f.store.FetchAnalytics(context.Background(), domain.DateRange{StartDate: "2026-07-01", EndDate: "2026-07-31"}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.metrics.SummaryCalls.Load())
}

func TestFetchWithoutProjectSelectionFails(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})

	_, err := f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoProjectSelected)
	assert.Zero(t, f.metrics.SummaryCalls.Load())
}

func TestFetchSanitizesResponseStrings(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})
	f.metrics.SummaryFunc = func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error) {
		return domain.AnalyticsSummary{
			TopPages: []domain.PageStat{{Path: `<script>alert(1)</script>/pricing`, Views: 1}},
		}, nil
	}

	summary, err := f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.NoError(t, err)
	assert.Equal(t, "/pricing", summary.TopPages[0].Path)
}

func TestTenantSwitchDropsInFlightWriteBack(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})
	gate := make(chan struct{})
	started := make(chan struct{})
	f.metrics.SummaryFunc = func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error) {
		// The impersonation below warms proj-9 in the background; only the
		// original tenant's fetch participates in the race under test.
		if id != "proj-1" {
			return domain.AnalyticsSummary{}, nil
		}
		close(started)
		<-gate
		return domain.AnalyticsSummary{Visitors: 99}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, err := f.store.FetchAnalytics(context.Background(), testRange(), false)
		assert.NoError(t, err)
		assert.EqualValues(t, 99, summary.Visitors, "caller still receives the value")
	}()

	<-started
	require.NoError(t, f.store.Impersonate(context.Background(), "proj-9", "", ""))
	close(gate)
	<-done

	f.store.mu.RLock()
	_, committed := f.store.entries["proj-1:"+string(FeatureAnalytics)+":"+rangeKey(testRange())]
	visitors := f.store.analytics.Visitors
	f.store.mu.RUnlock()
	assert.False(t, committed, "stale tenant result must not be cached")
	assert.Zero(t, visitors, "stale tenant result must not reach live state")
}

func TestCreateProjectAutoSelectsFirst(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	f.projects.CreateFunc = func(ctx context.Context, name string) (domain.Project, error) {
		return domain.Project{ID: "proj-1", Name: name}, nil
	}

	project, err := f.store.CreateProject(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", project.ID)
	assert.Equal(t, "proj-1", f.store.Selection().SelectedProjectID)
}

func TestCreateProjectRequiresAuthentication(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{})
	_, err := f.store.CreateProject(context.Background(), "Acme")
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestDeleteSelectedProjectReselectsFirstRemaining(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	f.projects.ListFunc = func(ctx context.Context) ([]domain.Project, error) {
		return []domain.Project{{ID: "proj-1"}, {ID: "proj-2"}}, nil
	}
	_, err := f.store.FetchProjects(context.Background(), true)
	require.NoError(t, err)
	_, err = f.store.SetSelectedProject(context.Background(), "proj-1")
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteProject(context.Background(), "proj-1"))
	assert.Equal(t, "proj-2", f.store.Selection().SelectedProjectID)
	assert.Equal(t, []domain.Project{{ID: "proj-2"}}, f.store.Projects())
}

func TestSetStripeKeyDropsCachedRevenue(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})

	_, err := f.store.FetchRevenue(context.Background(), testRange(), false)
	require.NoError(t, err)

	key := "proj-1:" + string(FeatureRevenue) + ":" + rangeKey(testRange())
	f.store.mu.RLock()
	_, cached := f.store.entries[key]
	f.store.mu.RUnlock()
	require.True(t, cached)

	require.NoError(t, f.store.SetStripeKey(context.Background(), "rk_test_123"))

	f.store.mu.RLock()
	_, cached = f.store.entries[key]
	f.store.mu.RUnlock()
	assert.False(t, cached)
}

func TestSnapshotReportsSelectionAndCachedQueries(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	f.projects.ListFunc = func(ctx context.Context) ([]domain.Project, error) {
		return []domain.Project{{ID: "proj-1", Name: "Acme Storefront"}}, nil
	}
	_, err := f.store.FetchProjects(context.Background(), true)
	require.NoError(t, err)
	_, err = f.store.SetSelectedProject(context.Background(), "proj-1")
	require.NoError(t, err)

	_, err = f.store.FetchAnalytics(context.Background(), testRange(), false)
	require.NoError(t, err)

	snap := f.store.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, "proj-1", snap.SelectedProjectID)
	assert.Equal(t, "Acme Storefront", snap.SelectedProjectName)
	assert.True(t, snap.ProjectsLoaded)
	assert.Equal(t, 1, snap.ProjectCount)
	assert.False(t, snap.CachedQueries[FeatureAnalytics].IsZero())
}

func TestPrefetchRequiresProjectSelection(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true})
	err := f.store.Prefetch(context.Background(), testRange())
	require.ErrorIs(t, err, domain.ErrNoProjectSelected)
}

func TestPrefetchWarmsCentralizedCacheThroughSingleflight(t *testing.T) {
	t.Parallel()

	f := newStoreFixture(t, ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"})

	require.NoError(t, f.store.Prefetch(context.Background(), testRange()))

	assert.EqualValues(t, 1, f.metrics.SummaryCalls.Load())
	stats := f.cache.Stats()
	assert.Equal(t, 1, stats[cache.BucketAnalytics])
	assert.Equal(t, 1, stats[cache.BucketEvents])
	assert.Equal(t, 1, stats[cache.BucketExperiments])
	assert.Equal(t, 1, stats[cache.BucketSessions])
	assert.Equal(t, 1, stats[cache.BucketPlaybooks])
	assert.Equal(t, 1, stats[cache.BucketRevenue])

	// A second warm-up for the same window is fully served from cache.
	require.NoError(t, f.store.Prefetch(context.Background(), testRange()))
	assert.EqualValues(t, 1, f.metrics.SummaryCalls.Load())
}
