package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/einvoice/internal/domain/einvoice"
)

const (
	// DefaultValidityWindow is how long a fetched credential is trusted.
	DefaultValidityWindow = 360 * time.Minute
	// DefaultForceRefreshWindow is the span before access-token expiry in
	// which enhanced authentication asks upstream to rotate the token.
	DefaultForceRefreshWindow = 10 * time.Minute
)

// CredentialCache holds the GSP access token and enhanced-auth session in
// memory. It performs no I/O and is safe for concurrent use.
type CredentialCache struct {
	mu                 sync.RWMutex
	validity           time.Duration
	forceRefreshWindow time.Duration
	now                func() time.Time

	token   *einvoice.AccessToken
	session *einvoice.AuthSession
}

// CredentialCacheOption configures a CredentialCache
type CredentialCacheOption func(*CredentialCache)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) CredentialCacheOption {
	return func(c *CredentialCache) {
		c.now = now
	}
}

// NewCredentialCache creates an empty cache. Zero durations fall back to the defaults.
func NewCredentialCache(validity, forceRefreshWindow time.Duration, opts ...CredentialCacheOption) *CredentialCache {
	if validity <= 0 {
		validity = DefaultValidityWindow
	}
	if forceRefreshWindow <= 0 {
		forceRefreshWindow = DefaultForceRefreshWindow
	}
	c := &CredentialCache{
		validity:           validity,
		forceRefreshWindow: forceRefreshWindow,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken returns the cached token if it has not expired.
// An expired entry is ignored, not cleared.
func (c *CredentialCache) AccessToken() (einvoice.AccessToken, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil || !c.token.IsValidAt(c.now()) {
		return einvoice.AccessToken{}, false
	}
	return *c.token, true
}

// SetAccessToken stores value with a full validity window starting now
func (c *CredentialCache) SetAccessToken(value string) einvoice.AccessToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.token = &einvoice.AccessToken{
		Value:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.validity),
	}
	return *c.token
}

// ShouldForceRefresh is true iff an access-token expiry is recorded and it
// lies within (now, now+forceRefreshWindow].
func (c *CredentialCache) ShouldForceRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil {
		return false
	}
	return withinForceRefreshWindow(c.token.ExpiresAt, c.now(), c.forceRefreshWindow)
}

// AuthSession returns the cached session if it is complete and unexpired
func (c *CredentialCache) AuthSession() (einvoice.AuthSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil || !c.session.IsValidAt(c.now()) {
		return einvoice.AuthSession{}, false
	}
	return *c.session, true
}

// SetAuthSession stores the session triple with a fresh validity window
func (c *CredentialCache) SetAuthSession(authToken, sek, userName string) einvoice.AuthSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = &einvoice.AuthSession{
		AuthToken: authToken,
		Sek:       sek,
		UserName:  userName,
		ExpiresAt: c.now().Add(c.validity),
	}
	return *c.session
}

// InvalidateAll drops both credentials
func (c *CredentialCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = nil
	c.session = nil
}

// Store exposes the cache as an einvoice.CredentialStore
func (c *CredentialCache) Store() einvoice.CredentialStore {
	return memoryStore{cache: c}
}

func withinForceRefreshWindow(expiresAt, now time.Time, window time.Duration) bool {
	remaining := expiresAt.Sub(now)
	return remaining > 0 && remaining <= window
}

type memoryStore struct {
	cache *CredentialCache
}

func (s memoryStore) AccessToken(_ context.Context) (einvoice.AccessToken, bool, error) {
	token, ok := s.cache.AccessToken()
	return token, ok, nil
}

func (s memoryStore) SetAccessToken(_ context.Context, value string) (einvoice.AccessToken, error) {
	return s.cache.SetAccessToken(value), nil
}

func (s memoryStore) ShouldForceRefresh(_ context.Context) (bool, error) {
	return s.cache.ShouldForceRefresh(), nil
}

func (s memoryStore) AuthSession(_ context.Context) (einvoice.AuthSession, bool, error) {
	session, ok := s.cache.AuthSession()
	return session, ok, nil
}

func (s memoryStore) SetAuthSession(_ context.Context, authToken, sek, userName string) (einvoice.AuthSession, error) {
	return s.cache.SetAuthSession(authToken, sek, userName), nil
}

func (s memoryStore) InvalidateAll(_ context.Context) error {
	s.cache.InvalidateAll()
	return nil
}

var _ einvoice.CredentialStore = memoryStore{}
