// Package cache is the centralized data cache: keyed, TTL-expiring,
// in-flight-deduplicating storage in front of the service clients. It is the
// single place that guarantees at most one outbound request per cache key.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/klyro-io/klyro-cli/internal/domain"
)

// Version invalidates every persisted entry when the cached shapes change.
// Bump it whenever an entity's JSON layout moves.
const Version = 1

type Bucket string

const (
	BucketProjects    Bucket = "projects"
	BucketAnalytics   Bucket = "analytics"
	BucketEvents      Bucket = "events"
	BucketExperiments Bucket = "experiments"
	BucketSessions    Bucket = "sessions"
	BucketPlaybooks   Bucket = "playbooks"
	BucketRevenue     Bucket = "revenue"
)

type entry struct {
	data      any
	timestamp time.Time
	expiresAt time.Time
	version   int
}

// PrefetchFunc is one per-tenant fetch fired by PrefetchAll.
type PrefetchFunc func(ctx context.Context, projectID string, dr domain.DateRange) error

type Service struct {
	clock  clockwork.Clock
	logger zerolog.Logger
	flight singleflight.Group

	mu      sync.RWMutex
	buckets map[Bucket]map[string]entry
	version int

	prefetchMu  sync.Mutex
	prefetchers map[string]PrefetchFunc
	prefetching atomic.Bool
}

func NewService(clock clockwork.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		clock:       clock,
		logger:      logger.With().Str("component", "cache").Logger(),
		buckets:     make(map[Bucket]map[string]entry),
		version:     Version,
		prefetchers: make(map[string]PrefetchFunc),
	}
}

func composeKey(projectID, key string) string {
	if projectID == "" {
		return key
	}
	return projectID + ":" + key
}

// GetOrFetch returns the cached value for (bucket, projectID, key) while it
// is fresh, otherwise calls fetch and stores the result. Concurrent callers
// for the same key share a single fetch and its outcome. Failures are never
// cached; the next call retries.
func (s *Service) GetOrFetch(ctx context.Context, bucket Bucket, key string, ttl time.Duration, projectID string, fetch func(context.Context) (any, error)) (any, error) {
	fullKey := composeKey(projectID, key)

	if data, ok := s.lookup(bucket, fullKey); ok {
		return data, nil
	}

	flightKey := string(bucket) + "\x00" + fullKey
	data, err, _ := s.flight.Do(flightKey, func() (any, error) {
		// A concurrent flight may have filled the entry between the miss
		// above and acquiring the flight.
		if data, ok := s.lookup(bucket, fullKey); ok {
			return data, nil
		}

		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		s.mu.Lock()
		if s.buckets[bucket] == nil {
			s.buckets[bucket] = make(map[string]entry)
		}
		s.buckets[bucket][fullKey] = entry{
			data:      data,
			timestamp: now,
			expiresAt: now.Add(ttl),
			version:   s.version,
		}
		s.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetOrFetch is the typed wrapper most callers use.
func GetOrFetch[T any](ctx context.Context, s *Service, bucket Bucket, key string, ttl time.Duration, projectID string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	data, err := s.GetOrFetch(ctx, bucket, key, ttl, projectID, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("cache bucket %q key %q holds %T", bucket, key, data)
	}
	return typed, nil
}

func (s *Service) lookup(bucket Bucket, fullKey string) (any, bool) {
	s.mu.RLock()
	e, ok := s.buckets[bucket][fullKey]
	currentVersion := s.version
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if e.version != currentVersion {
		// Stale shape: purge so the refetch writes a brand-new entry.
		s.mu.Lock()
		if stored, still := s.buckets[bucket][fullKey]; still && stored.version == e.version {
			delete(s.buckets[bucket], fullKey)
		}
		s.mu.Unlock()
		return nil, false
	}

	if !s.clock.Now().Before(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// RegisterPrefetcher adds one named per-tenant fetch to the PrefetchAll set.
func (s *Service) RegisterPrefetcher(name string, fn PrefetchFunc) {
	s.prefetchMu.Lock()
	defer s.prefetchMu.Unlock()
	s.prefetchers[name] = fn
}

// PrefetchAll fires every registered fetch for the project concurrently and
// waits for all of them, logging failures instead of propagating them. While
// one batch is in flight any further call is a silent no-op, which keeps a
// user rapidly switching projects from causing request storms.
func (s *Service) PrefetchAll(ctx context.Context, projectID string, dr domain.DateRange) {
	if projectID == "" {
		return
	}
	if !s.prefetching.CompareAndSwap(false, true) {
		s.logger.Debug().Str("project", projectID).Msg("prefetch already in flight, skipping")
		return
	}
	defer s.prefetching.Store(false)

	s.prefetchMu.Lock()
	fetches := make(map[string]PrefetchFunc, len(s.prefetchers))
	for name, fn := range s.prefetchers {
		fetches[name] = fn
	}
	s.prefetchMu.Unlock()

	var wg sync.WaitGroup
	for name, fn := range fetches {
		wg.Add(1)
		go func(name string, fn PrefetchFunc) {
			defer wg.Done()
			if err := fn(ctx, projectID, dr); err != nil {
				s.logger.Debug().Str("project", projectID).Str("fetch", name).Err(err).Msg("prefetch failed")
			}
		}(name, fn)
	}
	wg.Wait()
}

// ClearAll wipes every bucket.
func (s *Service) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[Bucket]map[string]entry)
}

// ClearProject removes every entry composed under the project id, across all
// buckets, and leaves other tenants untouched.
func (s *Service) ClearProject(projectID string) {
	if projectID == "" {
		return
	}
	prefix := projectID + ":"
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, keys := range s.buckets {
		for key := range keys {
			if strings.HasPrefix(key, prefix) {
				delete(keys, key)
			}
		}
	}
}

// Stats reports live entry counts per bucket, for the status view.
func (s *Service) Stats() map[Bucket]int {
	now := s.clock.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Bucket]int, len(s.buckets))
	for bucket, keys := range s.buckets {
		for _, e := range keys {
			if e.version == s.version && now.Before(e.expiresAt) {
				out[bucket]++
			}
		}
	}
	return out
}
