package credstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Checker-Finance/blogctl/internal/config"
	"github.com/Checker-Finance/blogctl/pkg/secrets"
)

// Open builds the Store selected by cfg.CredBackend.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.CredBackend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile, "":
		return NewFile(cfg.CredFile), nil
	case config.BackendRedis:
		return NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.RedisPrefix)
	case config.BackendKeyring:
		return NewKeyring(cfg.KeyringService), nil
	case config.BackendAWS:
		provider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		cache := secrets.NewCache[map[string]string](cfg.CacheTTL)
		return NewSecrets(logger, provider, cfg.AWSSecretName, cache), nil
	default:
		return nil, fmt.Errorf("credstore: unknown backend %q", cfg.CredBackend)
	}
}
