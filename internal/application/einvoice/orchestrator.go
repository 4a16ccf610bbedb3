package einvoice

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	domain "github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/infrastructure/gsp"
	"github.com/erp/einvoice/internal/infrastructure/logger"
	"github.com/erp/einvoice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// singleflight keys, one per credential
const (
	flightAccessToken = "access_token"
	flightAuthSession = "auth_session"
)

// Gateway is the raw GSP API used by the orchestrator
type Gateway interface {
	MissingSettings() []string
	Authenticate(ctx context.Context) (*gsp.Response, error)
	EnhancedAuthenticate(ctx context.Context, accessToken string, forceRefresh bool) (*gsp.Response, error)
	GenerateIRN(ctx context.Context, creds domain.Credentials, payload any) (*gsp.Response, error)
	CancelIRN(ctx context.Context, creds domain.Credentials, req domain.CancelRequest) (*gsp.Response, error)
	GetIRNByDocument(ctx context.Context, creds domain.Credentials, lookup domain.DocumentLookup) (*gsp.Response, error)
}

// Orchestrator attaches valid credentials to every IRN call. Per invocation
// it ensures the access token, then the auth session, then performs the
// target call and normalizes the reply.
type Orchestrator struct {
	store   domain.CredentialStore
	gateway Gateway
	flights singleflight.Group
	logger  *zap.Logger
	metrics *telemetry.GSPMetrics
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger sets the fallback logger used when the request
// context carries none
func WithOrchestratorLogger(l *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithOrchestratorMetrics records credential fetches and IRN outcomes
func WithOrchestratorMetrics(m *telemetry.GSPMetrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// NewOrchestrator creates an Orchestrator over store and gateway
func NewOrchestrator(store domain.CredentialStore, gateway Gateway, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		gateway: gateway,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateIRN registers a document payload and returns the issued IRN
func (o *Orchestrator) GenerateIRN(ctx context.Context, payload any) (*domain.IRNResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "Orchestrator", "GenerateIRN")
	defer span.End()

	result, err := o.invoke(ctx, gsp.OpGenerateIRN, func(ctx context.Context, creds domain.Credentials) (*gsp.Response, error) {
		return o.gateway.GenerateIRN(ctx, creds, payload)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrIRN, result.Irn)
	return result, nil
}

// CancelIRN cancels an IRN. A reply carrying the Irn is a success.
func (o *Orchestrator) CancelIRN(ctx context.Context, req domain.CancelRequest) (*domain.IRNResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "Orchestrator", "CancelIRN", telemetry.SpanAttrIRN, req.Irn)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := o.invoke(ctx, gsp.OpCancelIRN, func(ctx context.Context, creds domain.Credentials) (*gsp.Response, error) {
		return o.gateway.CancelIRN(ctx, creds, req)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// GetIRNByDocument fetches the IRN already issued upstream for a document
func (o *Orchestrator) GetIRNByDocument(ctx context.Context, lookup domain.DocumentLookup) (*domain.IRNResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "Orchestrator", "GetIRNByDocument",
		telemetry.SpanAttrDocumentType, string(lookup.Type),
		telemetry.SpanAttrDocumentNumber, lookup.Number,
	)
	defer span.End()

	result, err := o.invoke(ctx, gsp.OpGetIRNByDocument, func(ctx context.Context, creds domain.Credentials) (*gsp.Response, error) {
		return o.gateway.GetIRNByDocument(ctx, creds, lookup)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// VerifySession ensures a credential pair is available without calling a
// document endpoint. No secret is returned.
func (o *Orchestrator) VerifySession(ctx context.Context) (*domain.SessionInfo, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "Orchestrator", "VerifySession")
	defer span.End()

	if err := o.checkConfigured(); err != nil {
		return nil, err
	}
	creds, err := o.ensureCredentials(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &domain.SessionInfo{
		UserName:             creds.Session.UserName,
		AccessTokenExpiresAt: creds.AccessToken.ExpiresAt,
		SessionExpiresAt:     creds.Session.ExpiresAt,
	}, nil
}

// ResetCredentials drops both cached credentials
func (o *Orchestrator) ResetCredentials(ctx context.Context) error {
	if err := o.store.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate credentials: %w", err)
	}
	o.log(ctx).Info("E-invoice credentials reset")
	return nil
}

type targetCall func(ctx context.Context, creds domain.Credentials) (*gsp.Response, error)

func (o *Orchestrator) invoke(ctx context.Context, op string, call targetCall) (result *domain.IRNResult, err error) {
	if err := o.checkConfigured(); err != nil {
		return nil, err
	}

	telemetry.WithOperationLabels(ctx, "orchestrator", op, func(ctx context.Context) {
		var creds domain.Credentials
		creds, err = o.ensureCredentials(ctx)
		if err != nil {
			o.metrics.RecordIRNOperation(ctx, op, false)
			return
		}
		result, err = o.callTarget(ctx, op, creds, call)
		o.metrics.RecordIRNOperation(ctx, op, err == nil)
	})
	return result, err
}

func (o *Orchestrator) callTarget(ctx context.Context, op string, creds domain.Credentials, call targetCall) (*domain.IRNResult, error) {
	log := o.log(ctx).With(zap.String("operation", op))

	resp, err := call(ctx, creds)
	if err != nil {
		e := transportFailure(err)
		if e.Status == http.StatusUnauthorized || e.Code == codeInvalidToken {
			o.invalidateRejected(ctx, log, e)
		}
		return nil, e
	}

	body, ok := decodeBody(resp.Body)
	if !ok {
		return nil, domain.NewTransportError(resp.StatusCode, "e-invoice service returned an unreadable body", nil)
	}

	if result, ok := parseIRNResult(body); ok {
		log.Info("IRN operation succeeded", zap.String("irn", result.Irn), zap.String("ack_no", result.AckNo))
		return result, nil
	}

	message, code := normalizeFailure(body)
	e := domain.NewBusinessError(resp.StatusCode, message, code, resp.Body)
	if code == codeInvalidToken {
		o.invalidateRejected(ctx, log, e)
	}
	log.Warn("IRN operation rejected", zap.String("message", message), zap.String("code", code))
	return nil, e
}

// invalidateRejected evicts credentials upstream refused so the next
// invocation re-authenticates. The current invocation is not retried.
func (o *Orchestrator) invalidateRejected(ctx context.Context, log *zap.Logger, cause *domain.Error) {
	if err := o.store.InvalidateAll(ctx); err != nil {
		log.Error("Failed to invalidate rejected credentials", zap.Error(err))
		return
	}
	log.Warn("Cached credentials rejected upstream, invalidated",
		zap.Int("status", cause.Status),
		zap.String("code", cause.Code),
	)
}

func (o *Orchestrator) checkConfigured() error {
	if missing := o.gateway.MissingSettings(); len(missing) > 0 {
		return domain.NewConfigurationError(missing)
	}
	return nil
}

func (o *Orchestrator) ensureCredentials(ctx context.Context) (domain.Credentials, error) {
	token, err := o.ensureAccessToken(ctx)
	if err != nil {
		return domain.Credentials{}, err
	}
	session, err := o.ensureAuthSession(ctx, token)
	if err != nil {
		return domain.Credentials{}, err
	}
	return domain.Credentials{AccessToken: token, Session: session}, nil
}

func (o *Orchestrator) ensureAccessToken(ctx context.Context) (domain.AccessToken, error) {
	if token, ok, err := o.store.AccessToken(ctx); err != nil {
		return domain.AccessToken{}, fmt.Errorf("read access token: %w", err)
	} else if ok {
		return token, nil
	}

	v, err := o.shareFetch(ctx, flightAccessToken, func(ctx context.Context) (any, error) {
		// a concurrent flight may have populated the store meanwhile
		if token, ok, err := o.store.AccessToken(ctx); err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		} else if ok {
			return token, nil
		}
		return o.fetchAccessToken(ctx)
	})
	if err != nil {
		return domain.AccessToken{}, err
	}
	return v.(domain.AccessToken), nil
}

// shareFetch runs fetch once for all concurrent callers of key. The fetch
// outlives the caller that started it; each caller stops waiting when its
// own context ends.
func (o *Orchestrator) shareFetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := o.flights.DoChan(key, func() (any, error) {
		return fetch(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, transportFailure(ctx.Err())
	}
}

func (o *Orchestrator) fetchAccessToken(ctx context.Context) (domain.AccessToken, error) {
	resp, err := o.gateway.Authenticate(ctx)
	if err != nil {
		o.metrics.RecordCredentialFetch(ctx, flightAccessToken, false)
		return domain.AccessToken{}, transportFailure(err)
	}

	body, ok := decodeBody(resp.Body)
	if !ok {
		o.metrics.RecordCredentialFetch(ctx, flightAccessToken, false)
		return domain.AccessToken{}, domain.NewTransportError(resp.StatusCode, "authenticate returned an unreadable body", nil)
	}
	if !authSucceeded(body) {
		o.metrics.RecordCredentialFetch(ctx, flightAccessToken, false)
		message, code := normalizeFailure(body)
		return domain.AccessToken{}, domain.NewBusinessError(resp.StatusCode, message, code, resp.Body)
	}

	value := authField(body, "accessToken", "AccessToken", "access_token")
	if value == "" {
		o.metrics.RecordCredentialFetch(ctx, flightAccessToken, false)
		return domain.AccessToken{}, domain.NewBusinessError(resp.StatusCode, "authenticate response did not include an access token", "", resp.Body)
	}

	token, err := o.store.SetAccessToken(ctx, value)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("store access token: %w", err)
	}
	o.metrics.RecordCredentialFetch(ctx, flightAccessToken, true)
	o.log(ctx).Info("GSP access token obtained",
		logger.Secret("access_token", token.Value),
		zap.Time("expires_at", token.ExpiresAt),
	)
	return token, nil
}

func (o *Orchestrator) ensureAuthSession(ctx context.Context, token domain.AccessToken) (domain.AuthSession, error) {
	if session, ok, err := o.store.AuthSession(ctx); err != nil {
		return domain.AuthSession{}, fmt.Errorf("read auth session: %w", err)
	} else if ok {
		return session, nil
	}

	v, err := o.shareFetch(ctx, flightAuthSession, func(ctx context.Context) (any, error) {
		if session, ok, err := o.store.AuthSession(ctx); err != nil {
			return nil, fmt.Errorf("read auth session: %w", err)
		} else if ok {
			return session, nil
		}
		return o.fetchAuthSession(ctx, token)
	})
	if err != nil {
		return domain.AuthSession{}, err
	}
	return v.(domain.AuthSession), nil
}

func (o *Orchestrator) fetchAuthSession(ctx context.Context, token domain.AccessToken) (domain.AuthSession, error) {
	forceRefresh, err := o.store.ShouldForceRefresh(ctx)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("check force refresh: %w", err)
	}

	resp, err := o.gateway.EnhancedAuthenticate(ctx, token.Value, forceRefresh)
	if err != nil {
		o.metrics.RecordCredentialFetch(ctx, flightAuthSession, false)
		return domain.AuthSession{}, transportFailure(err)
	}

	body, ok := decodeBody(resp.Body)
	if !ok {
		o.metrics.RecordCredentialFetch(ctx, flightAuthSession, false)
		return domain.AuthSession{}, domain.NewTransportError(resp.StatusCode, "enhanced authentication returned an unreadable body", nil)
	}
	if !authSucceeded(body) {
		o.metrics.RecordCredentialFetch(ctx, flightAuthSession, false)
		message, code := normalizeFailure(body)
		return domain.AuthSession{}, domain.NewBusinessError(resp.StatusCode, message, code, resp.Body)
	}

	authToken := authField(body, "AuthToken")
	sek := authField(body, "Sek")
	userName := authField(body, "UserName")
	if authToken == "" || sek == "" || userName == "" {
		o.metrics.RecordCredentialFetch(ctx, flightAuthSession, false)
		return domain.AuthSession{}, domain.NewBusinessError(resp.StatusCode, "enhanced authentication response is missing session fields", "", resp.Body)
	}

	session, err := o.store.SetAuthSession(ctx, authToken, sek, userName)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("store auth session: %w", err)
	}
	o.metrics.RecordCredentialFetch(ctx, flightAuthSession, true)
	o.log(ctx).Info("GSP auth session obtained",
		zap.String("user_name", userName),
		zap.Bool("force_refresh", forceRefresh),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return session, nil
}

func (o *Orchestrator) log(ctx context.Context) *zap.Logger {
	return logger.Ctx(ctx, o.logger)
}

// transportFailure converts a gateway error into a transport failure, using
// the normalized message when the error body is JSON
func transportFailure(err error) *domain.Error {
	var te *gsp.TransportError
	if !errors.As(err, &te) {
		return domain.NewTransportError(0, "", err)
	}

	message := te.Message
	var code string
	if body, ok := decodeBody(te.Body); ok {
		m, c := normalizeFailure(body)
		if m != UnknownUpstreamError {
			message = m
		}
		code = c
	}
	e := domain.NewTransportError(te.StatusCode, message, te)
	e.Code = code
	return e
}

var _ IRNProvider = (*Orchestrator)(nil)
