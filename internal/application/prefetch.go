package application

import (
	"context"

	"github.com/klyro-io/klyro-cli/internal/cache"
	"github.com/klyro-io/klyro-cli/internal/domain"
)

// registerPrefetchers wires every per-tenant dataset into the centralized
// cache service so PrefetchAll can warm them in one concurrent batch. The
// prefetch path fills the service cache only; on-demand store fetches keep
// their own cache (see fetch.go).
func (s *Store) registerPrefetchers() {
	s.cache.RegisterPrefetcher("analytics", func(ctx context.Context, pid string, dr domain.DateRange) error {
		_, err := cache.GetOrFetch(ctx, s.cache, cache.BucketAnalytics, "summary:"+rangeKey(dr), summaryTTL, pid,
			func(ctx context.Context) (domain.AnalyticsSummary, error) {
				return s.apis.Analytics.Summary(ctx, pid, dr)
			})
		return err
	})

	s.cache.RegisterPrefetcher("events", func(ctx context.Context, pid string, dr domain.DateRange) error {
		_, err := cache.GetOrFetch(ctx, s.cache, cache.BucketEvents, "list:"+rangeKey(dr), summaryTTL, pid,
			func(ctx context.Context) ([]domain.EventSummary, error) {
				return s.apis.Analytics.Events(ctx, pid, dr)
			})
		return err
	})

	s.cache.RegisterPrefetcher("experiments", func(ctx context.Context, pid string, dr domain.DateRange) error {
		_, err := cache.GetOrFetch(ctx, s.cache, cache.BucketExperiments, "list", listTTL, pid,
			func(ctx context.Context) ([]domain.Experiment, error) {
				return s.apis.Experiments.List(ctx, pid)
			})
		return err
	})

	s.cache.RegisterPrefetcher("sessions", func(ctx context.Context, pid string, dr domain.DateRange) error {
		_, err := cache.GetOrFetch(ctx, s.cache, cache.BucketSessions, "list:"+rangeKey(dr), summaryTTL, pid,
			func(ctx context.Context) ([]domain.RecordingSession, error) {
				return s.apis.Sessions.List(ctx, pid, dr)
			})
		return err
	})

	s.cache.RegisterPrefetcher("playbooks", func(ctx context.Context, pid string, dr domain.DateRange) error {
		_, err := cache.GetOrFetch(ctx, s.cache, cache.BucketPlaybooks, "list", listTTL, pid,
			func(ctx context.Context) ([]domain.Playbook, error) {
				return s.apis.Playbooks.List(ctx, pid)
			})
		return err
	})

	s.cache.RegisterPrefetcher("revenue", func(ctx context.Context, pid string, dr domain.DateRange) error {
		_, err := cache.GetOrFetch(ctx, s.cache, cache.BucketRevenue, "report:"+rangeKey(dr), summaryTTL, pid,
			func(ctx context.Context) (domain.RevenueReport, error) {
				return s.apis.Revenue.Report(ctx, pid, dr)
			})
		return err
	})
}

// Prefetch warms the caches for the effective project immediately (the
// synchronous path behind the prefetch command).
func (s *Store) Prefetch(ctx context.Context, dr domain.DateRange) error {
	pid := s.EffectiveProjectID()
	if pid == "" {
		return &domain.Error{
			Kind:    domain.KindValidation,
			Message: domain.ErrNoProjectSelected.Error(),
			Err:     domain.ErrNoProjectSelected,
		}
	}
	s.cache.PrefetchAll(ctx, pid, dr)
	return nil
}
