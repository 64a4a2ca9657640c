// Package env reads secrets from environment variables. The store is
// read-only: CI and scripted use inject KLYRO_ACCESS_TOKEN and friends,
// while interactive logins persist through the file fallback.
package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

var errReadOnly = errors.New("env secret store is read-only")

type Store struct {
	lookup func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{lookup: os.LookupEnv}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := envName(key)
	if err != nil {
		return "", err
	}

	value, ok := s.lookup(name)
	if !ok || value == "" {
		return "", fmt.Errorf("env secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errReadOnly
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errReadOnly
}

// envName maps "klyro/access_token" to "KLYRO_ACCESS_TOKEN".
func envName(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("secret key is empty")
	}

	name := strings.ToUpper(trimmed)
	name = strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name)
	return name, nil
}
