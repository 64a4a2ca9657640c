package ports

import "context"

// SecretStore holds the session tokens. Implementations must return
// domain.ErrSecretNotFound for missing keys so callers can distinguish
// "logged out" from a real failure.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
