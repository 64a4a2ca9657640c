package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Experiments struct {
	c *Client
}

var _ ports.ExperimentsAPI = (*Experiments)(nil)

func NewExperiments(c *Client) *Experiments { return &Experiments{c: c} }

func (e *Experiments) List(ctx context.Context, id domain.ProjectID) ([]domain.Experiment, error) {
	var experiments []domain.Experiment
	if err := e.c.do(ctx, http.MethodGet, projectPath(id, "/experiments"), nil, &experiments, WithProjectID(id)); err != nil {
		return nil, err
	}
	return experiments, nil
}

func (e *Experiments) Create(ctx context.Context, id domain.ProjectID, exp domain.Experiment) (domain.Experiment, error) {
	var created domain.Experiment
	if err := e.c.do(ctx, http.MethodPost, projectPath(id, "/experiments"), exp, &created, WithProjectID(id)); err != nil {
		return domain.Experiment{}, err
	}
	return created, nil
}

func (e *Experiments) UpdateStatus(ctx context.Context, id domain.ProjectID, expID string, status domain.ExperimentStatus) (domain.Experiment, error) {
	var updated domain.Experiment
	path := projectPath(id, "/experiments/"+url.PathEscape(expID))
	body := map[string]string{"status": string(status)}
	if err := e.c.do(ctx, http.MethodPatch, path, body, &updated, WithProjectID(id)); err != nil {
		return domain.Experiment{}, err
	}
	return updated, nil
}
