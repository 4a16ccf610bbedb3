package einvoice

import (
	"context"
	"time"
)

// AccessToken is the bearer credential issued by the GSP authenticate endpoint.
type AccessToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsValidAt reports whether the token is usable at t.
func (t AccessToken) IsValidAt(at time.Time) bool {
	return t.Value != "" && at.Before(t.ExpiresAt)
}

// AuthSession is the enhanced-authentication session. It is only useful
// together with a concurrently valid AccessToken.
type AuthSession struct {
	AuthToken string
	Sek       string
	UserName  string
	ExpiresAt time.Time
}

// IsComplete reports whether all three session fields are set.
func (s AuthSession) IsComplete() bool {
	return s.AuthToken != "" && s.Sek != "" && s.UserName != ""
}

// IsValidAt reports whether the session is complete and unexpired at t.
func (s AuthSession) IsValidAt(at time.Time) bool {
	return s.IsComplete() && at.Before(s.ExpiresAt)
}

// Credentials is the pair presented on document-issuing calls.
type Credentials struct {
	AccessToken AccessToken
	Session     AuthSession
}

// CredentialStore holds at most one AccessToken and one AuthSession.
// Expired entries read as absent. Writes reset the validity window from
// the time of the write; the two timers are independent.
type CredentialStore interface {
	AccessToken(ctx context.Context) (AccessToken, bool, error)
	SetAccessToken(ctx context.Context, value string) (AccessToken, error)
	ShouldForceRefresh(ctx context.Context) (bool, error)
	AuthSession(ctx context.Context) (AuthSession, bool, error)
	SetAuthSession(ctx context.Context, authToken, sek, userName string) (AuthSession, error)
	InvalidateAll(ctx context.Context) error
}
