package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klyro-io/klyro-cli/internal/ports"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	t.Setenv("KLYRO_HOME", t.TempDir())

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	return repo
}

func TestRepositoryLoadMissingFileReturnsZeroState(t *testing.T) {
	repo := newTestRepository(t)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.ClientState{}, state)
}

func TestRepositorySaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	want := ports.ClientState{
		IsAuthenticated:         true,
		SelectedProjectID:       "proj-1",
		ImpersonatedProjectID:   "proj-2",
		ImpersonatedProjectName: "Beta Site",
		ImpersonatedUserEmail:   "support@klyro.io",
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRepositorySaveOverwritesPreviousState(t *testing.T) {
	repo := newTestRepository(t)

	first := ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-1"}
	require.NoError(t, repo.Save(context.Background(), first))

	second := ports.ClientState{IsAuthenticated: true, SelectedProjectID: "proj-9"}
	require.NoError(t, repo.Save(context.Background(), second))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestRepositoryStateFilePermissions(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(context.Background(), ports.ClientState{IsAuthenticated: true}))

	info, err := os.Stat(repo.statePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(stateFileMode), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(repo.statePath))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp", "temp file left behind")
	}
}

func TestRepositoryLoadRejectsNewerSchemaVersion(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(repo.statePath), stateDirMode))
	require.NoError(t, os.WriteFile(repo.statePath, []byte("version = 99\n"), stateFileMode))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported state schema version")
}

func TestRepositoryLoadRejectsMalformedFile(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(repo.statePath), stateDirMode))
	require.NoError(t, os.WriteFile(repo.statePath, []byte("not [valid toml"), stateFileMode))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode state file")
}

func TestRepositoryHonorsConfiguredStatePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("KLYRO_HOME", home)

	custom := filepath.Join(t.TempDir(), "nested", "state.toml")
	cfg := viper.New()
	cfg.Set("state.path", custom)

	repo, err := NewRepository(cfg)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), ports.ClientState{SelectedProjectID: "proj-1"}))

	_, err = os.Stat(custom)
	require.NoError(t, err)
}
