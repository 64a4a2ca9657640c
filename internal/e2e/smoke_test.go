package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	server := httptest.NewServer(backendStub())
	defer server.Close()

	_, stderr, err := runKlyro(t, binaryPath, home, server.URL,
		"login", "--email", "dev@klyro.io", "--password", "hunter2")
	require.NoError(t, err, "stderr: %s", stderr)

	_, stderr, err = runKlyro(t, binaryPath, home, server.URL, "projects", "select", "proj-1")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runKlyro(t, binaryPath, home, server.URL, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "authenticated: yes")
	assert.Contains(t, stdout, "proj-1")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "klyro-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/klyro")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build klyro binary: %s", string(output))
	return binaryPath
}

func runKlyro(t *testing.T, binaryPath, home, apiURL string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"KLYRO_HOME="+home,
		"KLYRO_API_URL="+apiURL,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func backendStub() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"access_token":"access-123","refresh_token":"refresh-456"}`)
	})
	mux.HandleFunc("GET /api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[{"id":"proj-1","name":"Acme Storefront"}]`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{}`)
	})
	return mux
}
