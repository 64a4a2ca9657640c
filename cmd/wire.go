package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	apiclient "github.com/klyro-io/klyro-cli/internal/adapters/api"
	statusadapter "github.com/klyro-io/klyro-cli/internal/adapters/render/status"
	chainstore "github.com/klyro-io/klyro-cli/internal/adapters/secrets/chain"
	tomlstate "github.com/klyro-io/klyro-cli/internal/adapters/state/toml"
	"github.com/klyro-io/klyro-cli/internal/application"
	"github.com/klyro-io/klyro-cli/internal/cache"
)

type app struct {
	store          *application.Store
	cache          *cache.Service
	logger         zerolog.Logger
	statusRenderer func(application.Snapshot, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

func wireApp() (*app, error) {
	logger := newLogger()

	stateRepo, err := tomlstate.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire state repository: %w", err)
	}

	secretStore, err := chainstore.NewEnvFirstWithFileFallback(filepath.Join(klyroHome(), "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	tokens := application.NewTokenKeeper(secretStore)
	clock := clockwork.NewRealClock()
	cacheService := cache.NewService(clock, logger)

	// The client and the store reference each other: the client resolves the
	// tenant header and the expiry callback from the store, the store calls
	// the typed clients. Late binding through the closure breaks the cycle.
	var store *application.Store
	client := apiclient.NewClient(apiclient.Config{
		BaseURL: envOrDefault("KLYRO_API_URL", apiclient.DefaultBaseURL),
		Tokens:  tokens,
		Logger:  logger,
		DefaultProjectID: func() string {
			if store == nil {
				return ""
			}
			return store.EffectiveProjectID()
		},
		OnUnauthorized: func() {
			if store != nil {
				store.MarkSessionExpired()
			}
		},
	})

	store, err = application.New(context.Background(), application.Config{
		APIs: application.APIs{
			Auth:        apiclient.NewAuth(client),
			Projects:    apiclient.NewProjects(client),
			Analytics:   apiclient.NewAnalytics(client),
			Experiments: apiclient.NewExperiments(client),
			Playbooks:   apiclient.NewPlaybooks(client),
			Sessions:    apiclient.NewSessions(client),
			Revenue:     apiclient.NewRevenue(client),
		},
		Cache:  cacheService,
		State:  stateRepo,
		Tokens: tokens,
		Clock:  clock,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire application store: %w", err)
	}

	return &app{
		store:          store,
		cache:          cacheService,
		logger:         logger,
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(envOrDefault("KLYRO_LOG_LEVEL", "warn"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func klyroHome() string {
	if dir := os.Getenv("KLYRO_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".klyro"
	}
	return filepath.Join(homeDir, ".klyro")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
