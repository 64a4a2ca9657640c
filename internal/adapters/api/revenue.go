package api

import (
	"context"
	"net/http"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Revenue struct {
	c *Client
}

var _ ports.RevenueAPI = (*Revenue)(nil)

func NewRevenue(c *Client) *Revenue { return &Revenue{c: c} }

func (r *Revenue) Report(ctx context.Context, id domain.ProjectID, dr domain.DateRange) (domain.RevenueReport, error) {
	var report domain.RevenueReport
	path := projectPath(id, "/revenue") + rangeSuffix(dr)
	if err := r.c.do(ctx, http.MethodGet, path, nil, &report, WithProjectID(id)); err != nil {
		return domain.RevenueReport{}, err
	}
	return report, nil
}
