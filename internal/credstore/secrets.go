package credstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/Checker-Finance/blogctl/pkg/secrets"
)

// SecretsStore maps the whole key space onto a single secret holding a JSON map.
// Reads are served from a TTL cache; writes go through to the provider and
// refresh the cache.
type SecretsStore struct {
	logger   *zap.Logger
	provider secrets.Provider
	name     string
	cache    *secrets.Cache[map[string]string]
	mu       sync.Mutex
}

// NewSecrets returns a store backed by the secret called name.
func NewSecrets(logger *zap.Logger, provider secrets.Provider, name string, cache *secrets.Cache[map[string]string]) *SecretsStore {
	return &SecretsStore{
		logger:   logger,
		provider: provider,
		name:     name,
		cache:    cache,
	}
}

func (s *SecretsStore) Get(ctx context.Context, key string) (string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	v, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *SecretsStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx)
	if err != nil {
		return err
	}
	next := maps.Clone(data)
	next[key] = value
	return s.store(ctx, next)
}

func (s *SecretsStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	next := maps.Clone(data)
	delete(next, key)
	return s.store(ctx, next)
}

func (s *SecretsStore) load(ctx context.Context) (map[string]string, error) {
	if data, ok := s.cache.Get(s.name); ok {
		return data, nil
	}

	data, err := s.provider.GetSecret(ctx, s.name)
	if errors.Is(err, secrets.ErrSecretNotFound) {
		data = map[string]string{}
	} else if err != nil {
		s.logger.Warn("credstore.secret_fetch_failed",
			zap.String("secret", s.name),
			zap.Error(err))
		return nil, fmt.Errorf("credstore: load secret %q: %w", s.name, err)
	}
	if data == nil {
		data = map[string]string{}
	}

	s.cache.Put(s.name, data)
	return data, nil
}

func (s *SecretsStore) store(ctx context.Context, data map[string]string) error {
	if err := s.provider.PutSecret(ctx, s.name, data); err != nil {
		s.cache.Bust(s.name)
		return fmt.Errorf("credstore: write secret %q: %w", s.name, err)
	}
	s.cache.Put(s.name, data)
	s.logger.Debug("credstore.secret_written", zap.String("secret", s.name))
	return nil
}
