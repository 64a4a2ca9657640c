// Package application holds the client's single state store: authentication,
// the active project selection and the per-feature cached query results.
// Actions are the only mutators; commands read snapshots.
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/klyro-io/klyro-cli/internal/cache"
	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Feature string

const (
	FeatureProjects    Feature = "projects"
	FeatureAPIKeys     Feature = "apikeys"
	FeatureAnalytics   Feature = "analytics"
	FeatureEvents      Feature = "events"
	FeatureExperiments Feature = "experiments"
	FeatureSessions    Feature = "sessions"
	FeaturePlaybooks   Feature = "playbooks"
	FeatureRevenue     Feature = "revenue"
)

const (
	// storeTTL bounds the store's own query cache, independent from the
	// centralized cache service.
	storeTTL = 5 * time.Minute

	// TTLs for the centralized cache, per bucket.
	summaryTTL = 5 * time.Minute
	listTTL    = 10 * time.Minute

	// prefetchWindowDays is the trailing window warmed on project switch.
	prefetchWindowDays = 30
)

type APIs struct {
	Auth        ports.AuthAPI
	Projects    ports.ProjectsAPI
	Analytics   ports.AnalyticsAPI
	Experiments ports.ExperimentsAPI
	Playbooks   ports.PlaybooksAPI
	Sessions    ports.SessionsAPI
	Revenue     ports.RevenueAPI
}

type Config struct {
	APIs   APIs
	Cache  *cache.Service
	State  ports.StateRepository
	Tokens *TokenKeeper
	Clock  clockwork.Clock
	Logger zerolog.Logger
}

type storeEntry struct {
	data      any
	timestamp time.Time
}

type Store struct {
	logger zerolog.Logger
	clock  clockwork.Clock
	apis   APIs
	cache  *cache.Service
	state  ports.StateRepository
	tokens *TokenKeeper

	mu        sync.RWMutex
	session   domain.Session
	selection domain.TenantSelection
	// epoch increments on every tenant switch; a fetch commits its result
	// only if the epoch it started under is still current, so out-of-order
	// responses for an abandoned project never overwrite newer state.
	epoch uint64

	projects       []domain.Project
	projectsLoaded bool
	apiKeys        []domain.APIKey
	analytics      domain.AnalyticsSummary
	events         []domain.EventSummary
	experiments    []domain.Experiment
	recordings     []domain.RecordingSession
	playbooks      []domain.Playbook
	revenue        domain.RevenueReport

	entries map[string]storeEntry
	loading map[Feature]bool
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.APIs.Auth == nil || cfg.APIs.Projects == nil {
		return nil, errors.New("application.New: auth and projects APIs are required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("application.New: cache service is required")
	}
	if cfg.State == nil {
		return nil, errors.New("application.New: state repository is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("application.New: token keeper is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	s := &Store{
		logger:  cfg.Logger.With().Str("component", "store").Logger(),
		clock:   cfg.Clock,
		apis:    cfg.APIs,
		cache:   cfg.Cache,
		state:   cfg.State,
		tokens:  cfg.Tokens,
		entries: make(map[string]storeEntry),
		loading: make(map[Feature]bool),
	}

	persisted, err := cfg.State.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load client state: %w", err)
	}
	s.session.IsAuthenticated = persisted.IsAuthenticated
	s.selection = domain.TenantSelection{
		SelectedProjectID:       persisted.SelectedProjectID,
		ImpersonatedProjectID:   persisted.ImpersonatedProjectID,
		ImpersonatedProjectName: persisted.ImpersonatedProjectName,
		ImpersonatedUserEmail:   persisted.ImpersonatedUserEmail,
	}

	s.registerPrefetchers()
	return s, nil
}

// EffectiveProjectID is the tenant every data fetch is scoped to; an active
// impersonation always wins over the regular selection.
func (s *Store) EffectiveProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.EffectiveProjectID()
}

func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) Selection() domain.TenantSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

func (s *Store) ProjectsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectsLoaded
}

func (s *Store) Loading(feature Feature) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[feature]
}

func (s *Store) setLoading(feature Feature, v bool) {
	s.mu.Lock()
	s.loading[feature] = v
	s.mu.Unlock()
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// InvalidateProjectCache drops the store's cached queries for the project
// and mirrors the invalidation into the centralized cache service.
func (s *Store) InvalidateProjectCache(projectID string) {
	if projectID == "" {
		return
	}
	prefix := projectID + ":"
	s.mu.Lock()
	for key := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
	s.cache.ClearProject(projectID)
}

func (s *Store) cachedEntry(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.clock.Now().Sub(e.timestamp) >= storeTTL {
		return nil, false
	}
	return e.data, true
}

func (s *Store) persistState(ctx context.Context) error {
	s.mu.RLock()
	state := ports.ClientState{
		IsAuthenticated:         s.session.IsAuthenticated,
		SelectedProjectID:       s.selection.SelectedProjectID,
		ImpersonatedProjectID:   s.selection.ImpersonatedProjectID,
		ImpersonatedProjectName: s.selection.ImpersonatedProjectName,
		ImpersonatedUserEmail:   s.selection.ImpersonatedUserEmail,
	}
	s.mu.RUnlock()

	if err := s.state.Save(ctx, state); err != nil {
		return fmt.Errorf("persist client state: %w", err)
	}
	return nil
}

// Snapshot is what the status view renders.
type Snapshot struct {
	Authenticated           bool
	SelectedProjectID       string
	SelectedProjectName     string
	ImpersonatedProjectID   string
	ImpersonatedProjectName string
	ImpersonatedUserEmail   string
	ProjectsLoaded          bool
	ProjectCount            int
	CachedQueries           map[Feature]time.Time
	Loading                 []Feature
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Authenticated:           s.session.IsAuthenticated,
		SelectedProjectID:       s.selection.SelectedProjectID,
		ImpersonatedProjectID:   s.selection.ImpersonatedProjectID,
		ImpersonatedProjectName: s.selection.ImpersonatedProjectName,
		ImpersonatedUserEmail:   s.selection.ImpersonatedUserEmail,
		ProjectsLoaded:          s.projectsLoaded,
		ProjectCount:            len(s.projects),
		CachedQueries:           make(map[Feature]time.Time),
	}
	for _, p := range s.projects {
		if p.ID == s.selection.SelectedProjectID {
			snap.SelectedProjectName = p.Name
		}
	}

	pid := s.selection.EffectiveProjectID()
	for _, feature := range []Feature{
		FeatureAPIKeys, FeatureAnalytics, FeatureEvents, FeatureExperiments,
		FeatureSessions, FeaturePlaybooks, FeatureRevenue,
	} {
		prefix := pid + ":" + string(feature)
		for key, e := range s.entries {
			if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
				if e.timestamp.After(snap.CachedQueries[feature]) {
					snap.CachedQueries[feature] = e.timestamp
				}
			}
		}
	}
	for feature, active := range s.loading {
		if active {
			snap.Loading = append(snap.Loading, feature)
		}
	}
	return snap
}
