package api

import (
	"context"
	"net/http"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Sessions struct {
	c *Client
}

var _ ports.SessionsAPI = (*Sessions)(nil)

func NewSessions(c *Client) *Sessions { return &Sessions{c: c} }

func (s *Sessions) List(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.RecordingSession, error) {
	var sessions []domain.RecordingSession
	path := projectPath(id, "/sessions") + rangeSuffix(dr)
	if err := s.c.do(ctx, http.MethodGet, path, nil, &sessions, WithProjectID(id)); err != nil {
		return nil, err
	}
	return sessions, nil
}
