package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCredentialKeyPrefix = "einvoice:credentials:"
	accessTokenKey             = "access_token"
	authSessionKey             = "auth_session"
)

// RedisCredentialStore implements einvoice.CredentialStore on Redis so that
// several gateway replicas share one credential pair. Keys expire together
// with the credential they hold.
type RedisCredentialStore struct {
	client             *redis.Client
	keyPrefix          string
	validity           time.Duration
	forceRefreshWindow time.Duration
	now                func() time.Time
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type storedAccessToken struct {
	Value     string    `json:"value"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type storedAuthSession struct {
	AuthToken string    `json:"auth_token"`
	Sek       string    `json:"sek"`
	UserName  string    `json:"user_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewRedisCredentialStore connects to Redis and verifies the connection
func NewRedisCredentialStore(cfg RedisConfig, validity, forceRefreshWindow time.Duration) (*RedisCredentialStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCredentialStoreWithClient(client, "", validity, forceRefreshWindow), nil
}

// NewRedisCredentialStoreWithClient creates a store on an existing client
func NewRedisCredentialStoreWithClient(client *redis.Client, keyPrefix string, validity, forceRefreshWindow time.Duration, opts ...RedisCredentialStoreOption) *RedisCredentialStore {
	if keyPrefix == "" {
		keyPrefix = defaultCredentialKeyPrefix
	}
	if validity <= 0 {
		validity = DefaultValidityWindow
	}
	if forceRefreshWindow <= 0 {
		forceRefreshWindow = DefaultForceRefreshWindow
	}
	s := &RedisCredentialStore{
		client:             client,
		keyPrefix:          keyPrefix,
		validity:           validity,
		forceRefreshWindow: forceRefreshWindow,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RedisCredentialStoreOption configures a RedisCredentialStore
type RedisCredentialStoreOption func(*RedisCredentialStore)

// WithRedisClock replaces time.Now for expiry checks
func WithRedisClock(now func() time.Time) RedisCredentialStoreOption {
	return func(s *RedisCredentialStore) {
		s.now = now
	}
}

// AccessToken returns the shared token if present and unexpired
func (s *RedisCredentialStore) AccessToken(ctx context.Context) (einvoice.AccessToken, bool, error) {
	var stored storedAccessToken
	found, err := s.load(ctx, accessTokenKey, &stored)
	if err != nil || !found {
		return einvoice.AccessToken{}, false, err
	}
	token := einvoice.AccessToken(stored)
	if !token.IsValidAt(s.now()) {
		return einvoice.AccessToken{}, false, nil
	}
	return token, true, nil
}

// SetAccessToken stores value with a full validity window starting now
func (s *RedisCredentialStore) SetAccessToken(ctx context.Context, value string) (einvoice.AccessToken, error) {
	now := s.now()
	token := einvoice.AccessToken{
		Value:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.validity),
	}
	if err := s.store(ctx, accessTokenKey, storedAccessToken(token)); err != nil {
		return einvoice.AccessToken{}, err
	}
	return token, nil
}

// ShouldForceRefresh reports whether the shared token is about to expire
func (s *RedisCredentialStore) ShouldForceRefresh(ctx context.Context) (bool, error) {
	var stored storedAccessToken
	found, err := s.load(ctx, accessTokenKey, &stored)
	if err != nil || !found {
		return false, err
	}
	return withinForceRefreshWindow(stored.ExpiresAt, s.now(), s.forceRefreshWindow), nil
}

// AuthSession returns the shared session if complete and unexpired
func (s *RedisCredentialStore) AuthSession(ctx context.Context) (einvoice.AuthSession, bool, error) {
	var stored storedAuthSession
	found, err := s.load(ctx, authSessionKey, &stored)
	if err != nil || !found {
		return einvoice.AuthSession{}, false, err
	}
	session := einvoice.AuthSession(stored)
	if !session.IsValidAt(s.now()) {
		return einvoice.AuthSession{}, false, nil
	}
	return session, true, nil
}

// SetAuthSession stores the session triple with a fresh validity window
func (s *RedisCredentialStore) SetAuthSession(ctx context.Context, authToken, sek, userName string) (einvoice.AuthSession, error) {
	session := einvoice.AuthSession{
		AuthToken: authToken,
		Sek:       sek,
		UserName:  userName,
		ExpiresAt: s.now().Add(s.validity),
	}
	if err := s.store(ctx, authSessionKey, storedAuthSession(session)); err != nil {
		return einvoice.AuthSession{}, err
	}
	return session, nil
}

// InvalidateAll removes both credentials
func (s *RedisCredentialStore) InvalidateAll(ctx context.Context) error {
	if err := s.client.Del(ctx, s.keyPrefix+accessTokenKey, s.keyPrefix+authSessionKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate credentials: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisCredentialStore) Close() error {
	return s.client.Close()
}

func (s *RedisCredentialStore) load(ctx context.Context, name string, dest any) (bool, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return true, nil
}

func (s *RedisCredentialStore) store(ctx context.Context, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+name, raw, s.validity).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

var _ einvoice.CredentialStore = (*RedisCredentialStore)(nil)
