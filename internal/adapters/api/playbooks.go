package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Playbooks struct {
	c *Client
}

var _ ports.PlaybooksAPI = (*Playbooks)(nil)

func NewPlaybooks(c *Client) *Playbooks { return &Playbooks{c: c} }

func (p *Playbooks) List(ctx context.Context, id domain.ProjectID) ([]domain.Playbook, error) {
	var playbooks []domain.Playbook
	if err := p.c.do(ctx, http.MethodGet, projectPath(id, "/playbooks"), nil, &playbooks, WithProjectID(id)); err != nil {
		return nil, err
	}
	return playbooks, nil
}

func (p *Playbooks) Create(ctx context.Context, id domain.ProjectID, pb domain.Playbook) (domain.Playbook, error) {
	var created domain.Playbook
	if err := p.c.do(ctx, http.MethodPost, projectPath(id, "/playbooks"), pb, &created, WithProjectID(id)); err != nil {
		return domain.Playbook{}, err
	}
	return created, nil
}

func (p *Playbooks) UpdateStatus(ctx context.Context, id domain.ProjectID, pbID string, status domain.PlaybookStatus) (domain.Playbook, error) {
	var updated domain.Playbook
	path := projectPath(id, "/playbooks/"+url.PathEscape(pbID))
	body := map[string]string{"status": string(status)}
	if err := p.c.do(ctx, http.MethodPatch, path, body, &updated, WithProjectID(id)); err != nil {
		return domain.Playbook{}, err
	}
	return updated, nil
}
