// Package api implements the HTTP request primitive and the typed service
// clients for the Klyro backend. Error classification happens here, exactly
// once per call; everything above dispatches on domain.ErrorKind.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/klyro-io/klyro-cli/internal/domain"
)

const projectHeader = "X-Project-ID"

// DefaultBaseURL is used when no backend address is configured.
const DefaultBaseURL = "http://localhost:8000"

// TokenSource supplies the bearer token for authenticated calls. The
// implementation is expected to fall back to persistent storage when no
// token is held in memory, and Clear must drop both.
type TokenSource interface {
	AccessToken(ctx context.Context) string
	ClearAccessToken(ctx context.Context)
}

type Config struct {
	BaseURL string
	Tokens  TokenSource
	Logger  zerolog.Logger
	// DefaultProjectID resolves the tenant header when a call carries no
	// explicit override. May return "".
	DefaultProjectID func() string
	// OnUnauthorized fires once per call that fails authentication, after
	// the stored token has been cleared.
	OnUnauthorized func()
}

type Client struct {
	http             *resty.Client
	logger           zerolog.Logger
	tokens           TokenSource
	defaultProjectID func() string
	onUnauthorized   func()
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(base).
		SetHeader("Accept", "application/json")

	return &Client{
		http:             rc,
		logger:           cfg.Logger.With().Str("component", "api").Logger(),
		tokens:           cfg.Tokens,
		defaultProjectID: cfg.DefaultProjectID,
		onUnauthorized:   cfg.OnUnauthorized,
	}
}

// HTTPClient exposes the underlying transport client, used by tests to
// install a mock transport.
func (c *Client) HTTPClient() *http.Client { return c.http.GetClient() }

type requestOptions struct {
	requireAuth bool
	projectID   string
}

type RequestOption func(*requestOptions)

// WithoutAuth issues the call without a bearer token.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.requireAuth = false }
}

// WithProjectID overrides the tenant header for a single call.
func WithProjectID(id string) RequestOption {
	return func(o *requestOptions) { o.projectID = id }
}

// errorBody is the error shape the backend is expected to return.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	o := requestOptions{requireAuth: true}
	for _, opt := range opts {
		opt(&o)
	}

	req := c.http.R().SetContext(ctx)

	if o.requireAuth {
		if token := c.tokens.AccessToken(ctx); token != "" {
			req.SetAuthToken(token)
		}
	}

	projectID := o.projectID
	if projectID == "" && c.defaultProjectID != nil {
		projectID = c.defaultProjectID()
	}
	if projectID != "" {
		req.SetHeader(projectHeader, projectID)
	}

	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &domain.Error{
			Kind:    domain.KindNetworkError,
			Message: fmt.Sprintf("%s %s failed", method, path),
			Err:     err,
		}
	}

	if resp.IsError() {
		return c.classify(ctx, method, path, resp)
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &domain.Error{
				Kind:    domain.KindServerError,
				Message: fmt.Sprintf("decode %s %s response", method, path),
				Err:     err,
			}
		}
	}
	return nil
}

// authFailurePatterns are the backend messages that mean the token is no
// longer usable, even when the status is not 401.
var authFailurePatterns = []string{"Invalid token", "Unauthorized", "Token expired"}

func (c *Client) classify(ctx context.Context, method, path string, resp *resty.Response) error {
	var eb errorBody
	_ = json.Unmarshal(resp.Body(), &eb)

	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}

	status := resp.StatusCode()
	if status == http.StatusUnauthorized || matchesAuthFailure(msg) {
		c.tokens.ClearAccessToken(ctx)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		c.logger.Warn().Int("status", status).Str("path", path).Msg("session expired")
		return &domain.Error{Kind: domain.KindAuthExpired, Message: domain.SessionExpiredMessage}
	}

	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	kind := domain.KindServerError
	switch {
	case status == http.StatusNotFound:
		kind = domain.KindNotFound
	case status < http.StatusInternalServerError:
		kind = domain.KindValidation
	}

	c.logger.Debug().Int("status", status).Str("method", method).Str("path", path).Msg(msg)
	return &domain.Error{Kind: kind, Message: msg}
}

func matchesAuthFailure(msg string) bool {
	for _, p := range authFailurePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
