package application

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/sanitize"
)

// Every per-feature fetch follows the same micro-protocol: resolve the
// effective project, consult the store's own TTL cache unless forced, mark
// the feature loading, call the service client, sanitize, and commit the
// result into both the live field and the keyed cache — but only if the
// tenant epoch is unchanged since the fetch started.
func fetchFeature[T any](
	ctx context.Context,
	s *Store,
	feature Feature,
	keySuffix string,
	force bool,
	call func(ctx context.Context, projectID string) (T, error),
	commit func(s *Store, v T),
) (T, error) {
	var zero T

	pid := s.EffectiveProjectID()
	if pid == "" {
		return zero, &domain.Error{
			Kind:    domain.KindValidation,
			Message: domain.ErrNoProjectSelected.Error(),
			Err:     domain.ErrNoProjectSelected,
		}
	}

	key := pid + ":" + string(feature)
	if keySuffix != "" {
		key += ":" + keySuffix
	}

	if !force {
		if cached, ok := s.cachedEntry(key); ok {
			if typed, ok := cached.(T); ok {
				return typed, nil
			}
		}
	}

	epoch := s.currentEpoch()
	s.setLoading(feature, true)
	defer s.setLoading(feature, false)

	v, err := call(ctx, pid)
	if err != nil {
		return zero, err
	}
	sanitize.Struct(&v)

	s.mu.Lock()
	if s.epoch == epoch {
		commit(s, v)
		s.entries[key] = storeEntry{data: v, timestamp: s.clock.Now()}
	} else {
		s.logger.Debug().
			Str("feature", string(feature)).
			Str("project", pid).
			Msg("dropping write-back from abandoned tenant")
	}
	s.mu.Unlock()

	return v, nil
}

func rangeKey(dr domain.DateRange) string {
	return dr.StartDate + "_" + dr.EndDate
}

const (
	fetchProjectsAttempts        = 4
	fetchProjectsInitialInterval = time.Second
)

// FetchProjects is the one fetch with a retry policy: up to three retries
// with 1s/2s/4s backoff. projectsLoaded flips to true even after the final
// failure so callers can stop waiting.
func (s *Store) FetchProjects(ctx context.Context, force bool) ([]domain.Project, error) {
	s.mu.RLock()
	if s.projectsLoaded && !force {
		out := make([]domain.Project, len(s.projects))
		copy(out, s.projects)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.setLoading(FeatureProjects, true)
	defer s.setLoading(FeatureProjects, false)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = fetchProjectsInitialInterval
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = 8 * time.Second
	bo.MaxElapsedTime = 0
	bo.Reset()

	var projects []domain.Project
	var err error
	for attempt := 0; attempt < fetchProjectsAttempts; attempt++ {
		projects, err = s.apis.Projects.List(ctx)
		if err == nil {
			break
		}
		if attempt == fetchProjectsAttempts-1 {
			break
		}

		wait := bo.NextBackOff()
		s.logger.Warn().Err(err).Dur("retry_in", wait).Msg("fetching projects failed, retrying")
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-s.clock.After(wait):
			continue
		}
		break
	}

	s.mu.Lock()
	s.projectsLoaded = true
	if err == nil {
		sanitize.Struct(&projects)
		s.projects = projects
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) FetchAnalytics(ctx context.Context, dr domain.DateRange, force bool) (domain.AnalyticsSummary, error) {
	return fetchFeature(ctx, s, FeatureAnalytics, rangeKey(dr), force,
		func(ctx context.Context, pid string) (domain.AnalyticsSummary, error) {
			return s.apis.Analytics.Summary(ctx, pid, dr)
		},
		func(s *Store, v domain.AnalyticsSummary) { s.analytics = v },
	)
}

func (s *Store) FetchEvents(ctx context.Context, dr domain.DateRange, force bool) ([]domain.EventSummary, error) {
	return fetchFeature(ctx, s, FeatureEvents, rangeKey(dr), force,
		func(ctx context.Context, pid string) ([]domain.EventSummary, error) {
			return s.apis.Analytics.Events(ctx, pid, dr)
		},
		func(s *Store, v []domain.EventSummary) { s.events = v },
	)
}

func (s *Store) FetchExperiments(ctx context.Context, force bool) ([]domain.Experiment, error) {
	return fetchFeature(ctx, s, FeatureExperiments, "", force,
		func(ctx context.Context, pid string) ([]domain.Experiment, error) {
			return s.apis.Experiments.List(ctx, pid)
		},
		func(s *Store, v []domain.Experiment) { s.experiments = v },
	)
}

func (s *Store) FetchSessions(ctx context.Context, dr domain.DateRange, force bool) ([]domain.RecordingSession, error) {
	return fetchFeature(ctx, s, FeatureSessions, rangeKey(dr), force,
		func(ctx context.Context, pid string) ([]domain.RecordingSession, error) {
			return s.apis.Sessions.List(ctx, pid, dr)
		},
		func(s *Store, v []domain.RecordingSession) { s.recordings = v },
	)
}

func (s *Store) FetchPlaybooks(ctx context.Context, force bool) ([]domain.Playbook, error) {
	return fetchFeature(ctx, s, FeaturePlaybooks, "", force,
		func(ctx context.Context, pid string) ([]domain.Playbook, error) {
			return s.apis.Playbooks.List(ctx, pid)
		},
		func(s *Store, v []domain.Playbook) { s.playbooks = v },
	)
}

func (s *Store) FetchRevenue(ctx context.Context, dr domain.DateRange, force bool) (domain.RevenueReport, error) {
	return fetchFeature(ctx, s, FeatureRevenue, rangeKey(dr), force,
		func(ctx context.Context, pid string) (domain.RevenueReport, error) {
			return s.apis.Revenue.Report(ctx, pid, dr)
		},
		func(s *Store, v domain.RevenueReport) { s.revenue = v },
	)
}

func (s *Store) FetchAPIKeys(ctx context.Context, force bool) ([]domain.APIKey, error) {
	return fetchFeature(ctx, s, FeatureAPIKeys, "", force,
		func(ctx context.Context, pid string) ([]domain.APIKey, error) {
			return s.apis.Projects.ListAPIKeys(ctx, pid)
		},
		func(s *Store, v []domain.APIKey) { s.apiKeys = v },
	)
}
