package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommandPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestStatusSignedOut(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "authenticated: no")
	assert.Contains(t, stdout, "klyro login")
}

func TestLoginRequiresEmailFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "login", "--password", "hunter2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"email\" not set")
}

func TestLoginRequiresPassword(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "login", "--email", "dev@klyro.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no password provided")
}

func TestLoginThenStatusShowsAuthenticated(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed in as dev@klyro.io")

	stdout, _, err = executeCLI(t, home, server.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "authenticated: yes")
}

func TestLoginPersistsTokensToFileStore(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "secrets", "klyro", "access_token"))
	require.NoError(t, err)
	assert.Equal(t, "access-123", string(data))
}

func TestProjectsListAndSelect(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, server.URL, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "proj-1")
	assert.Contains(t, stdout, "Acme Storefront")

	stdout, _, err = executeCLI(t, home, server.URL, "projects", "select", "proj-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Selected project proj-1")

	stdout, _, err = executeCLI(t, home, server.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "proj-1")
}

func TestProjectsSelectUnknownIDFallsBackToFirst(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, server.URL, "projects", "select", "proj-nope")
	require.NoError(t, err)
	assert.Contains(t, stdout, "selected proj-1 instead")
}

func TestAnalyticsWithoutProjectSelectionFails(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"auth", "set", "--access-token", "access-123", "--refresh-token", "refresh-456")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, server.URL, "analytics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project selected")
}

func TestAnalyticsRendersSummary(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, server.URL, "projects", "select", "proj-1")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, server.URL,
		"analytics", "--start", "2026-08-01", "--end", "2026-08-28")
	require.NoError(t, err)
	assert.Contains(t, stdout, "visitors:    1234")
	assert.Contains(t, stdout, "/pricing")
}

func TestAuthExportPrintsTokenPair(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"auth", "set", "--access-token", "access-123", "--refresh-token", "refresh-456")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, server.URL, "auth", "export")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "access-123")
	assert.Contains(t, stdout, "refresh-456")
}

func TestLogoutClearsSession(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, server.URL, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed out.")

	stdout, _, err = executeCLI(t, home, server.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "authenticated: no")
}

func TestImpersonateShowsBannerInStatus(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	home := t.TempDir()

	_, _, err := executeCLI(t, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, server.URL,
		"impersonate", "proj-9", "--project-name", "Beta Site", "--user-email", "support@klyro.io")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, server.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Impersonating Beta Site as support@klyro.io")

	_, _, err = executeCLI(t, home, server.URL, "impersonate", "clear")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, server.URL, "status")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Impersonating")
}

func TestRevenueSetStripeKeyRequiresKeyFlag(t *testing.T) {
	server := newBackendStub(t)
	defer server.Close()

	_, _, err := executeCLI(t, t.TempDir(), server.URL, "revenue", "set-stripe-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"key\" not set")
}

func executeCLI(t *testing.T, home, apiURL string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("KLYRO_HOME", home)
	if apiURL != "" {
		t.Setenv("KLYRO_API_URL", apiURL)
	}

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// newBackendStub serves the handful of endpoints the CLI tests exercise.
func newBackendStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"access_token":"access-123","refresh_token":"refresh-456"}`)
	})
	mux.HandleFunc("GET /api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[{"id":"proj-1","name":"Acme Storefront","domain":"acme.example"}]`)
	})
	mux.HandleFunc("GET /api/v1/projects/{id}/analytics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"project_id":"proj-1","visitors":1234,"page_views":5678,"bounce_rate":41.5,"avg_session_secs":93,"top_pages":[{"path":"/pricing","views":420}]}`)
	})
	mux.HandleFunc("GET /api/v1/projects/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("GET /api/v1/projects/{id}/experiments", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("GET /api/v1/projects/{id}/playbooks", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("GET /api/v1/projects/{id}/sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("GET /api/v1/projects/{id}/revenue", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"project_id":"proj-1","mrr_cents":0,"arr_cents":0}`)
	})

	return httptest.NewServer(mux)
}
