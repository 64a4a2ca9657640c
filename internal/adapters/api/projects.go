package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Projects struct {
	c *Client
}

var _ ports.ProjectsAPI = (*Projects)(nil)

func NewProjects(c *Client) *Projects { return &Projects{c: c} }

func projectPath(id domain.ProjectID, suffix string) string {
	return fmt.Sprintf("/api/v1/projects/%s%s", url.PathEscape(id), suffix)
}

func (p *Projects) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := p.c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (p *Projects) Create(ctx context.Context, name string) (domain.Project, error) {
	var project domain.Project
	body := map[string]string{"name": name}
	if err := p.c.do(ctx, http.MethodPost, "/api/v1/projects", body, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (p *Projects) Delete(ctx context.Context, id domain.ProjectID) error {
	return p.c.do(ctx, http.MethodDelete, projectPath(id, ""), nil, nil, WithProjectID(id))
}

func (p *Projects) ListAPIKeys(ctx context.Context, id domain.ProjectID) ([]domain.APIKey, error) {
	var keys []domain.APIKey
	if err := p.c.do(ctx, http.MethodGet, projectPath(id, "/api-keys"), nil, &keys, WithProjectID(id)); err != nil {
		return nil, err
	}
	return keys, nil
}

func (p *Projects) CreateAPIKey(ctx context.Context, id domain.ProjectID, name string) (domain.APIKey, error) {
	var key domain.APIKey
	body := map[string]string{"name": name}
	if err := p.c.do(ctx, http.MethodPost, projectPath(id, "/api-keys"), body, &key, WithProjectID(id)); err != nil {
		return domain.APIKey{}, err
	}
	return key, nil
}

func (p *Projects) DeleteAPIKey(ctx context.Context, id domain.ProjectID, keyID string) error {
	path := projectPath(id, "/api-keys/"+url.PathEscape(keyID))
	return p.c.do(ctx, http.MethodDelete, path, nil, nil, WithProjectID(id))
}

func (p *Projects) SetStripeKey(ctx context.Context, id domain.ProjectID, stripeKey string) error {
	body := map[string]string{"stripe_key": stripeKey}
	return p.c.do(ctx, http.MethodPut, projectPath(id, "/stripe-key"), body, nil, WithProjectID(id))
}
