package secrets

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned by a Provider when the named secret does not exist.
var ErrSecretNotFound = errors.New("secret not found")

// Provider reads and writes secrets stored as flat JSON string maps.
type Provider interface {
	// GetSecret retrieves a secret by name and returns its key-value map.
	GetSecret(ctx context.Context, name string) (map[string]string, error)

	// PutSecret replaces the value of a secret, creating it when missing.
	PutSecret(ctx context.Context, name string, value map[string]string) error
}
