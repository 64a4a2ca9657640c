// Package portsfake provides hand-written fakes for the ports interfaces.
// Behavior is injected through function fields; every call bumps a counter
// so tests can assert on traffic, not just results.
package portsfake

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

// SecretStore is an in-memory ports.SecretStore. Function fields, when set,
// replace the default map-backed behavior.
type SecretStore struct {
	mu      sync.Mutex
	secrets map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	PutFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, key string) error

	GetCalls    atomic.Int32
	PutCalls    atomic.Int32
	DeleteCalls atomic.Int32
}

var _ ports.SecretStore = (*SecretStore)(nil)

func NewSecretStore() *SecretStore {
	return &SecretStore{secrets: make(map[string]string)}
}

func (s *SecretStore) Get(ctx context.Context, key string) (string, error) {
	s.GetCalls.Add(1)
	if s.GetFunc != nil {
		return s.GetFunc(ctx, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.secrets[key]
	if !ok {
		return "", fmt.Errorf("fake secret %q: %w", key, domain.ErrSecretNotFound)
	}
	return value, nil
}

func (s *SecretStore) Put(ctx context.Context, key, value string) error {
	s.PutCalls.Add(1)
	if s.PutFunc != nil {
		return s.PutFunc(ctx, key, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[key] = value
	return nil
}

func (s *SecretStore) Delete(ctx context.Context, key string) error {
	s.DeleteCalls.Add(1)
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.secrets[key]; !ok {
		return fmt.Errorf("fake secret %q: %w", key, domain.ErrSecretNotFound)
	}
	delete(s.secrets, key)
	return nil
}

// Stored returns the current value without counting as a Get.
func (s *SecretStore) Stored(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.secrets[key]
	return value, ok
}

// StateRepository is an in-memory ports.StateRepository.
type StateRepository struct {
	mu    sync.Mutex
	state ports.ClientState

	LoadFunc func(ctx context.Context) (ports.ClientState, error)
	SaveFunc func(ctx context.Context, state ports.ClientState) error

	SaveCalls atomic.Int32
}

var _ ports.StateRepository = (*StateRepository)(nil)

func NewStateRepository(initial ports.ClientState) *StateRepository {
	return &StateRepository{state: initial}
}

func (r *StateRepository) Load(ctx context.Context) (ports.ClientState, error) {
	if r.LoadFunc != nil {
		return r.LoadFunc(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, nil
}

func (r *StateRepository) Save(ctx context.Context, state ports.ClientState) error {
	r.SaveCalls.Add(1)
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, state)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
	return nil
}

func (r *StateRepository) Saved() ports.ClientState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

type AuthAPI struct {
	LoginFunc   func(ctx context.Context, email, password string) (domain.TokenPair, error)
	RefreshFunc func(ctx context.Context, refreshToken string) (domain.TokenPair, error)

	LoginCalls   atomic.Int32
	RefreshCalls atomic.Int32
}

var _ ports.AuthAPI = (*AuthAPI)(nil)

func (a *AuthAPI) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	a.LoginCalls.Add(1)
	if a.LoginFunc != nil {
		return a.LoginFunc(ctx, email, password)
	}
	return domain.TokenPair{}, nil
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	a.RefreshCalls.Add(1)
	if a.RefreshFunc != nil {
		return a.RefreshFunc(ctx, refreshToken)
	}
	return domain.TokenPair{}, nil
}

type ProjectsAPI struct {
	ListFunc         func(ctx context.Context) ([]domain.Project, error)
	CreateFunc       func(ctx context.Context, name string) (domain.Project, error)
	DeleteFunc       func(ctx context.Context, id domain.ProjectID) error
	ListAPIKeysFunc  func(ctx context.Context, id domain.ProjectID) ([]domain.APIKey, error)
	CreateAPIKeyFunc func(ctx context.Context, id domain.ProjectID, name string) (domain.APIKey, error)
	DeleteAPIKeyFunc func(ctx context.Context, id domain.ProjectID, keyID string) error
	SetStripeKeyFunc func(ctx context.Context, id domain.ProjectID, stripeKey string) error

	ListCalls        atomic.Int32
	ListAPIKeysCalls atomic.Int32
}

var _ ports.ProjectsAPI = (*ProjectsAPI)(nil)

func (p *ProjectsAPI) List(ctx context.Context) ([]domain.Project, error) {
	p.ListCalls.Add(1)
	if p.ListFunc != nil {
		return p.ListFunc(ctx)
	}
	return nil, nil
}

func (p *ProjectsAPI) Create(ctx context.Context, name string) (domain.Project, error) {
	if p.CreateFunc != nil {
		return p.CreateFunc(ctx, name)
	}
	return domain.Project{}, nil
}

func (p *ProjectsAPI) Delete(ctx context.Context, id domain.ProjectID) error {
	if p.DeleteFunc != nil {
		return p.DeleteFunc(ctx, id)
	}
	return nil
}

func (p *ProjectsAPI) ListAPIKeys(ctx context.Context, id domain.ProjectID) ([]domain.APIKey, error) {
	p.ListAPIKeysCalls.Add(1)
	if p.ListAPIKeysFunc != nil {
		return p.ListAPIKeysFunc(ctx, id)
	}
	return nil, nil
}

func (p *ProjectsAPI) CreateAPIKey(ctx context.Context, id domain.ProjectID, name string) (domain.APIKey, error) {
	if p.CreateAPIKeyFunc != nil {
		return p.CreateAPIKeyFunc(ctx, id, name)
	}
	return domain.APIKey{}, nil
}

func (p *ProjectsAPI) DeleteAPIKey(ctx context.Context, id domain.ProjectID, keyID string) error {
	if p.DeleteAPIKeyFunc != nil {
		return p.DeleteAPIKeyFunc(ctx, id, keyID)
	}
	return nil
}

func (p *ProjectsAPI) SetStripeKey(ctx context.Context, id domain.ProjectID, stripeKey string) error {
	if p.SetStripeKeyFunc != nil {
		return p.SetStripeKeyFunc(ctx, id, stripeKey)
	}
	return nil
}

type AnalyticsAPI struct {
	SummaryFunc func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error)
	EventsFunc  func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.EventSummary, error)

	SummaryCalls atomic.Int32
	EventsCalls  atomic.Int32
}

var _ ports.AnalyticsAPI = (*AnalyticsAPI)(nil)

func (a *AnalyticsAPI) Summary(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error) {
	a.SummaryCalls.Add(1)
	if a.SummaryFunc != nil {
		return a.SummaryFunc(ctx, id, dr)
	}
	return domain.AnalyticsSummary{}, nil
}

func (a *AnalyticsAPI) Events(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.EventSummary, error) {
	a.EventsCalls.Add(1)
	if a.EventsFunc != nil {
		return a.EventsFunc(ctx, id, dr)
	}
	return nil, nil
}

type ExperimentsAPI struct {
	ListFunc         func(ctx context.Context, id domain.ProjectID) ([]domain.Experiment, error)
	CreateFunc       func(ctx context.Context, id domain.ProjectID, exp domain.Experiment) (domain.Experiment, error)
	UpdateStatusFunc func(ctx context.Context, id domain.ProjectID, expID string, status domain.ExperimentStatus) (domain.Experiment, error)

	ListCalls atomic.Int32
}

var _ ports.ExperimentsAPI = (*ExperimentsAPI)(nil)

func (e *ExperimentsAPI) List(ctx context.Context, id domain.ProjectID) ([]domain.Experiment, error) {
	e.ListCalls.Add(1)
	if e.ListFunc != nil {
		return e.ListFunc(ctx, id)
	}
	return nil, nil
}

func (e *ExperimentsAPI) Create(ctx context.Context, id domain.ProjectID, exp domain.Experiment) (domain.Experiment, error) {
	if e.CreateFunc != nil {
		return e.CreateFunc(ctx, id, exp)
	}
	return exp, nil
}

func (e *ExperimentsAPI) UpdateStatus(ctx context.Context, id domain.ProjectID, expID string, status domain.ExperimentStatus) (domain.Experiment, error) {
	if e.UpdateStatusFunc != nil {
		return e.UpdateStatusFunc(ctx, id, expID, status)
	}
	return domain.Experiment{ID: expID, Status: status}, nil
}

type PlaybooksAPI struct {
	ListFunc         func(ctx context.Context, id domain.ProjectID) ([]domain.Playbook, error)
	CreateFunc       func(ctx context.Context, id domain.ProjectID, pb domain.Playbook) (domain.Playbook, error)
	UpdateStatusFunc func(ctx context.Context, id domain.ProjectID, pbID string, status domain.PlaybookStatus) (domain.Playbook, error)

	ListCalls atomic.Int32
}

var _ ports.PlaybooksAPI = (*PlaybooksAPI)(nil)

func (p *PlaybooksAPI) List(ctx context.Context, id domain.ProjectID) ([]domain.Playbook, error) {
	p.ListCalls.Add(1)
	if p.ListFunc != nil {
		return p.ListFunc(ctx, id)
	}
	return nil, nil
}

func (p *PlaybooksAPI) Create(ctx context.Context, id domain.ProjectID, pb domain.Playbook) (domain.Playbook, error) {
	if p.CreateFunc != nil {
		return p.CreateFunc(ctx, id, pb)
	}
	return pb, nil
}

func (p *PlaybooksAPI) UpdateStatus(ctx context.Context, id domain.ProjectID, pbID string, status domain.PlaybookStatus) (domain.Playbook, error) {
	if p.UpdateStatusFunc != nil {
		return p.UpdateStatusFunc(ctx, id, pbID, status)
	}
	return domain.Playbook{ID: pbID, Status: status}, nil
}

type SessionsAPI struct {
	ListFunc func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.RecordingSession, error)

	ListCalls atomic.Int32
}

var _ ports.SessionsAPI = (*SessionsAPI)(nil)

func (s *SessionsAPI) List(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.RecordingSession, error) {
	s.ListCalls.Add(1)
	if s.ListFunc != nil {
		return s.ListFunc(ctx, id, dr)
	}
	return nil, nil
}

type RevenueAPI struct {
	ReportFunc func(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.RevenueReport, error)

	ReportCalls atomic.Int32
}

var _ ports.RevenueAPI = (*RevenueAPI)(nil)

func (r *RevenueAPI) Report(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.RevenueReport, error) {
	r.ReportCalls.Add(1)
	if r.ReportFunc != nil {
		return r.ReportFunc(ctx, id, dr)
	}
	return domain.RevenueReport{}, nil
}
