package cache

import (
	"fmt"
	"time"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	StoreKindMemory = "memory"
	StoreKindRedis  = "redis"
)

// CredentialStoreFactory creates credential stores based on configuration
type CredentialStoreFactory struct {
	redisConfig           config.RedisConfig
	validity              time.Duration
	forceRefreshWindow    time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CredentialStoreFactoryOption is a functional option for configuring the factory
type CredentialStoreFactoryOption func(*CredentialStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CredentialStoreFactoryOption {
	return func(f *CredentialStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable
func WithInMemoryFallback(allow bool) CredentialStoreFactoryOption {
	return func(f *CredentialStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCredentialStoreFactory creates a new factory
func NewCredentialStoreFactory(redisCfg config.RedisConfig, validity, forceRefreshWindow time.Duration, opts ...CredentialStoreFactoryOption) *CredentialStoreFactory {
	f := &CredentialStoreFactory{
		redisConfig:           redisCfg,
		validity:              validity,
		forceRefreshWindow:    forceRefreshWindow,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemoryStore creates a process-local store.
// Replicas using in-memory stores each authenticate separately.
func (f *CredentialStoreFactory) CreateInMemoryStore() einvoice.CredentialStore {
	return NewCredentialCache(f.validity, f.forceRefreshWindow).Store()
}

// CreateRedisStore creates a store shared through Redis
func (f *CredentialStoreFactory) CreateRedisStore() (*RedisCredentialStore, error) {
	store, err := NewRedisCredentialStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.validity, f.forceRefreshWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis credential store: %w", err)
	}
	return store, nil
}

// CreateStore returns the store selected by kind. A Redis store that cannot
// connect falls back to memory unless fallback is disabled.
func (f *CredentialStoreFactory) CreateStore(kind string) (einvoice.CredentialStore, error) {
	switch kind {
	case "", StoreKindMemory:
		f.logger.Info("using in-memory credential store")
		return f.CreateInMemoryStore(), nil
	case StoreKindRedis:
	default:
		return nil, fmt.Errorf("unknown credential store %q", kind)
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis credential store")
		return store, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for credential store but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory credential store",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
