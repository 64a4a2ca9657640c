package application

import (
	"context"
	"fmt"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/sanitize"
)

// Mutations call the backend and then splice the in-memory copy instead of
// refetching; CreatePlaybook is the exception and forces a full refetch
// because the backend attaches server-computed trigger defaults.

func (s *Store) requireProject() (string, error) {
	pid := s.EffectiveProjectID()
	if pid == "" {
		return "", &domain.Error{
			Kind:    domain.KindValidation,
			Message: domain.ErrNoProjectSelected.Error(),
			Err:     domain.ErrNoProjectSelected,
		}
	}
	return pid, nil
}

func (s *Store) CreateProject(ctx context.Context, name string) (domain.Project, error) {
	if err := s.requireAuthenticated(); err != nil {
		return domain.Project{}, err
	}

	project, err := s.apis.Projects.Create(ctx, sanitize.Text(name))
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	sanitize.Struct(&project)

	s.mu.Lock()
	s.projects = append(s.projects, project)
	if s.selection.SelectedProjectID == "" {
		s.selection.SelectedProjectID = project.ID
	}
	s.mu.Unlock()

	return project, s.persistState(ctx)
}

func (s *Store) DeleteProject(ctx context.Context, id domain.ProjectID) error {
	if err := s.requireAuthenticated(); err != nil {
		return err
	}
	id = sanitize.ID(id)

	if err := s.apis.Projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.mu.Lock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	if s.selection.SelectedProjectID == id {
		s.selection.SelectedProjectID = ""
		if len(s.projects) > 0 {
			s.selection.SelectedProjectID = s.projects[0].ID
		}
		s.epoch++
	}
	s.mu.Unlock()

	s.InvalidateProjectCache(id)
	return s.persistState(ctx)
}

func (s *Store) CreateAPIKey(ctx context.Context, name string) (domain.APIKey, error) {
	pid, err := s.requireProject()
	if err != nil {
		return domain.APIKey{}, err
	}

	key, err := s.apis.Projects.CreateAPIKey(ctx, pid, sanitize.Text(name))
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	sanitize.Struct(&key)

	s.mu.Lock()
	s.apiKeys = append(s.apiKeys, key)
	s.entries[pid+":"+string(FeatureAPIKeys)] = storeEntry{data: append([]domain.APIKey(nil), s.apiKeys...), timestamp: s.clock.Now()}
	s.mu.Unlock()

	return key, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, keyID string) error {
	pid, err := s.requireProject()
	if err != nil {
		return err
	}
	keyID = sanitize.ID(keyID)

	if err := s.apis.Projects.DeleteAPIKey(ctx, pid, keyID); err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}

	s.mu.Lock()
	kept := s.apiKeys[:0]
	for _, k := range s.apiKeys {
		if k.ID != keyID {
			kept = append(kept, k)
		}
	}
	s.apiKeys = kept
	s.entries[pid+":"+string(FeatureAPIKeys)] = storeEntry{data: append([]domain.APIKey(nil), s.apiKeys...), timestamp: s.clock.Now()}
	s.mu.Unlock()

	return nil
}

func (s *Store) CreateExperiment(ctx context.Context, exp domain.Experiment) (domain.Experiment, error) {
	pid, err := s.requireProject()
	if err != nil {
		return domain.Experiment{}, err
	}
	sanitize.Struct(&exp)

	created, err := s.apis.Experiments.Create(ctx, pid, exp)
	if err != nil {
		return domain.Experiment{}, fmt.Errorf("create experiment: %w", err)
	}
	sanitize.Struct(&created)

	s.mu.Lock()
	s.experiments = append(s.experiments, created)
	s.entries[pid+":"+string(FeatureExperiments)] = storeEntry{data: append([]domain.Experiment(nil), s.experiments...), timestamp: s.clock.Now()}
	s.mu.Unlock()

	return created, nil
}

func (s *Store) UpdateExperimentStatus(ctx context.Context, expID string, status domain.ExperimentStatus) (domain.Experiment, error) {
	pid, err := s.requireProject()
	if err != nil {
		return domain.Experiment{}, err
	}
	expID = sanitize.ID(expID)

	updated, err := s.apis.Experiments.UpdateStatus(ctx, pid, expID, status)
	if err != nil {
		return domain.Experiment{}, fmt.Errorf("update experiment status: %w", err)
	}
	sanitize.Struct(&updated)

	s.mu.Lock()
	for i := range s.experiments {
		if s.experiments[i].ID == updated.ID {
			s.experiments[i] = updated
			break
		}
	}
	s.entries[pid+":"+string(FeatureExperiments)] = storeEntry{data: append([]domain.Experiment(nil), s.experiments...), timestamp: s.clock.Now()}
	s.mu.Unlock()

	return updated, nil
}

func (s *Store) CreatePlaybook(ctx context.Context, pb domain.Playbook) (domain.Playbook, error) {
	pid, err := s.requireProject()
	if err != nil {
		return domain.Playbook{}, err
	}
	sanitize.Struct(&pb)

	created, err := s.apis.Playbooks.Create(ctx, pid, pb)
	if err != nil {
		return domain.Playbook{}, fmt.Errorf("create playbook: %w", err)
	}
	sanitize.Struct(&created)

	if _, err := s.FetchPlaybooks(ctx, true); err != nil {
		s.logger.Warn().Err(err).Msg("refreshing playbooks after create")
	}
	return created, nil
}

func (s *Store) UpdatePlaybookStatus(ctx context.Context, pbID string, status domain.PlaybookStatus) (domain.Playbook, error) {
	pid, err := s.requireProject()
	if err != nil {
		return domain.Playbook{}, err
	}
	pbID = sanitize.ID(pbID)

	updated, err := s.apis.Playbooks.UpdateStatus(ctx, pid, pbID, status)
	if err != nil {
		return domain.Playbook{}, fmt.Errorf("update playbook status: %w", err)
	}
	sanitize.Struct(&updated)

	s.mu.Lock()
	for i := range s.playbooks {
		if s.playbooks[i].ID == updated.ID {
			s.playbooks[i] = updated
			break
		}
	}
	s.entries[pid+":"+string(FeaturePlaybooks)] = storeEntry{data: append([]domain.Playbook(nil), s.playbooks...), timestamp: s.clock.Now()}
	s.mu.Unlock()

	return updated, nil
}

// SetStripeKey stores the Stripe restricted key for the effective project
// and drops cached revenue so the next report reflects the new source.
func (s *Store) SetStripeKey(ctx context.Context, stripeKey string) error {
	pid, err := s.requireProject()
	if err != nil {
		return err
	}

	if err := s.apis.Projects.SetStripeKey(ctx, pid, stripeKey); err != nil {
		return fmt.Errorf("set stripe key: %w", err)
	}

	prefix := pid + ":" + string(FeatureRevenue)
	s.mu.Lock()
	for key := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
	return nil
}
