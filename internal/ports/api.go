package ports

import (
	"context"

	"github.com/klyro-io/klyro-cli/internal/domain"
)

// Per-domain service clients. Pure translation over the HTTP primitive:
// no caching, no retries, no state.

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

type ProjectsAPI interface {
	List(ctx context.Context) ([]domain.Project, error)
	Create(ctx context.Context, name string) (domain.Project, error)
	Delete(ctx context.Context, id domain.ProjectID) error
	ListAPIKeys(ctx context.Context, id domain.ProjectID) ([]domain.APIKey, error)
	CreateAPIKey(ctx context.Context, id domain.ProjectID, name string) (domain.APIKey, error)
	DeleteAPIKey(ctx context.Context, id domain.ProjectID, keyID string) error
	SetStripeKey(ctx context.Context, id domain.ProjectID, stripeKey string) error
}

type AnalyticsAPI interface {
	Summary(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error)
	Events(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.EventSummary, error)
}

type ExperimentsAPI interface {
	List(ctx context.Context, id domain.ProjectID) ([]domain.Experiment, error)
	Create(ctx context.Context, id domain.ProjectID, exp domain.Experiment) (domain.Experiment, error)
	UpdateStatus(ctx context.Context, id domain.ProjectID, expID string, status domain.ExperimentStatus) (domain.Experiment, error)
}

type PlaybooksAPI interface {
	List(ctx context.Context, id domain.ProjectID) ([]domain.Playbook, error)
	Create(ctx context.Context, id domain.ProjectID, pb domain.Playbook) (domain.Playbook, error)
	UpdateStatus(ctx context.Context, id domain.ProjectID, pbID string, status domain.PlaybookStatus) (domain.Playbook, error)
}

type SessionsAPI interface {
	List(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.RecordingSession, error)
}

type RevenueAPI interface {
	Report(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.RevenueReport, error)
}
