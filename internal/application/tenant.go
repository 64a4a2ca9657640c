package application

import (
	"context"
	"time"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/sanitize"
)

// SetSelectedProject validates the requested id against the loaded project
// list. An unknown id falls back to the first loaded project instead of
// erroring; the substitution is logged because it can mask a stale caller.
// Switching bumps the epoch and warms the trailing window in the background.
func (s *Store) SetSelectedProject(ctx context.Context, id domain.ProjectID) (domain.ProjectID, error) {
	id = sanitize.ID(id)

	s.mu.Lock()
	found := false
	for _, p := range s.projects {
		if p.ID == id {
			found = true
			break
		}
	}
	if !found && len(s.projects) > 0 {
		fallback := s.projects[0].ID
		s.logger.Warn().
			Str("requested", id).
			Str("substituted", fallback).
			Msg("requested project not in loaded list, falling back to first")
		id = fallback
	}
	s.selection.SelectedProjectID = id
	s.epoch++
	effective := s.selection.EffectiveProjectID()
	s.mu.Unlock()

	if err := s.persistState(ctx); err != nil {
		return id, err
	}

	s.prefetchAsync(ctx, effective)
	return id, nil
}

// Impersonate overrides the effective project until cleared. Support staff
// use this to see exactly what a customer's dashboard shows.
func (s *Store) Impersonate(ctx context.Context, projectID, projectName, userEmail string) error {
	if err := s.requireAuthenticated(); err != nil {
		return err
	}

	s.mu.Lock()
	s.selection.ImpersonatedProjectID = sanitize.ID(projectID)
	s.selection.ImpersonatedProjectName = sanitize.Text(projectName)
	s.selection.ImpersonatedUserEmail = sanitize.Text(userEmail)
	s.epoch++
	effective := s.selection.EffectiveProjectID()
	s.mu.Unlock()

	if err := s.persistState(ctx); err != nil {
		return err
	}

	s.prefetchAsync(ctx, effective)
	return nil
}

// ClearImpersonation reverts to the regular selection.
func (s *Store) ClearImpersonation(ctx context.Context) error {
	s.mu.Lock()
	s.selection.ImpersonatedProjectID = ""
	s.selection.ImpersonatedProjectName = ""
	s.selection.ImpersonatedUserEmail = ""
	s.epoch++
	s.mu.Unlock()

	return s.persistState(ctx)
}

// prefetchAsync warms every per-tenant dataset for a trailing 30-day window.
// Errors are logged inside the cache service, never surfaced; the detached
// context keeps the warm-up alive past the triggering call.
func (s *Store) prefetchAsync(ctx context.Context, projectID string) {
	if projectID == "" {
		return
	}
	dr := trailingWindow(s.clock.Now(), prefetchWindowDays)
	go s.cache.PrefetchAll(context.WithoutCancel(ctx), projectID, dr)
}

func trailingWindow(now time.Time, days int) domain.DateRange {
	return domain.DateRange{
		StartDate: now.AddDate(0, 0, -days).Format("2006-01-02"),
		EndDate:   now.Format("2006-01-02"),
	}
}
