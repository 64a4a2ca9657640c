package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Analytics struct {
	c *Client
}

var _ ports.AnalyticsAPI = (*Analytics)(nil)

func NewAnalytics(c *Client) *Analytics { return &Analytics{c: c} }

func rangeSuffix(dr domain.DateRange) string {
	q := url.Values{}
	if dr.StartDate != "" {
		q.Set("start_date", dr.StartDate)
	}
	if dr.EndDate != "" {
		q.Set("end_date", dr.EndDate)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (a *Analytics) Summary(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.AnalyticsSummary, error) {
	var summary domain.AnalyticsSummary
	path := projectPath(id, "/analytics") + rangeSuffix(dr)
	if err := a.c.do(ctx, http.MethodGet, path, nil, &summary, WithProjectID(id)); err != nil {
		return domain.AnalyticsSummary{}, err
	}
	return summary, nil
}

func (a *Analytics) Events(ctx context.Context, id domain.ProjectID, dr domain.DateRange) ([]domain.EventSummary, error) {
	var events []domain.EventSummary
	path := projectPath(id, "/events") + rangeSuffix(dr)
	if err := a.c.do(ctx, http.MethodGet, path, nil, &events, WithProjectID(id)); err != nil {
		return nil, err
	}
	return events, nil
}
