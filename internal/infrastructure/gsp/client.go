package gsp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize caps how much of an upstream body is read (5MB)
const maxResponseSize = 5 << 20

// Operation names used in logs, metrics and errors
const (
	OpAuthenticate         = "authenticate"
	OpEnhancedAuthenticate = "enhanced_authenticate"
	OpGenerateIRN          = "generate_irn"
	OpCancelIRN            = "cancel_irn"
	OpGetIRNByDocument     = "get_irn_by_document"
)

// Response is a 2xx JSON reply from the GSP. Business success is not
// interpreted here.
type Response struct {
	StatusCode int
	Body       []byte
}

// TransportError reports an exchange that produced no usable JSON reply:
// no response at all, a non-2xx status or a non-JSON content type.
type TransportError struct {
	Operation  string
	StatusCode int
	Body       []byte
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gsp %s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("gsp %s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("gsp %s: %s", e.Operation, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client performs raw HTTP exchanges with the GSP e-invoice API
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *telemetry.GSPMetrics
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records call counts and latency
func WithMetrics(m *telemetry.GSPMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client. Configuration completeness is not checked here
// so the gateway can start unconfigured; see Config.Validate.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.applyDefaults()

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: limiter,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MissingSettings lists required settings that are not configured
func (c *Client) MissingSettings() []string {
	return c.cfg.MissingSettings()
}

// Authenticate obtains an access token using the deployment client credentials
func (c *Client) Authenticate(ctx context.Context) (*Response, error) {
	headers := map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
	}
	return c.do(ctx, OpAuthenticate, http.MethodPost, c.cfg.AuthPath, nil, headers, nil)
}

type enhancedAuthRequest struct {
	Username                string `json:"Username"`
	Password                string `json:"Password"`
	ForceRefreshAccessToken bool   `json:"ForceRefreshAccessToken"`
}

// EnhancedAuthenticate obtains the AuthToken/Sek/UserName session for accessToken
func (c *Client) EnhancedAuthenticate(ctx context.Context, accessToken string, forceRefresh bool) (*Response, error) {
	headers := map[string]string{
		"gstin":         c.cfg.GSTIN,
		"Authorization": "Bearer " + accessToken,
	}
	body := enhancedAuthRequest{
		Username:                c.cfg.Username,
		Password:                c.cfg.Password,
		ForceRefreshAccessToken: forceRefresh,
	}
	return c.do(ctx, OpEnhancedAuthenticate, http.MethodPost, c.cfg.EnhancedAuthPath, nil, headers, body)
}

// GenerateIRN submits an e-invoice document
func (c *Client) GenerateIRN(ctx context.Context, creds einvoice.Credentials, payload any) (*Response, error) {
	return c.do(ctx, OpGenerateIRN, http.MethodPost, c.cfg.GenerateIRNPath, nil, c.documentHeaders(creds), payload)
}

// CancelIRN cancels a previously generated IRN
func (c *Client) CancelIRN(ctx context.Context, creds einvoice.Credentials, req einvoice.CancelRequest) (*Response, error) {
	return c.do(ctx, OpCancelIRN, http.MethodPost, c.cfg.CancelIRNPath, nil, c.documentHeaders(creds), req)
}

// GetIRNByDocument looks up the IRN issued for a document
func (c *Client) GetIRNByDocument(ctx context.Context, creds einvoice.Credentials, lookup einvoice.DocumentLookup) (*Response, error) {
	query := url.Values{}
	query.Set("doctype", string(lookup.Type))
	query.Set("docnum", lookup.Number)
	query.Set("docdate", lookup.Date.Format(einvoice.DateLayout))
	return c.do(ctx, OpGetIRNByDocument, http.MethodGet, c.cfg.IRNByDocPath, query, c.documentHeaders(creds), nil)
}

func (c *Client) documentHeaders(creds einvoice.Credentials) map[string]string {
	return map[string]string{
		"gstin":         c.cfg.GSTIN,
		"Authorization": "Bearer " + creds.AccessToken.Value,
		"AuthToken":     creds.Session.AuthToken,
		"user_name":     creds.Session.UserName,
		"sek":           creds.Session.Sek,
	}
}

// do sends one request, retrying once when no response was received and
// retries are enabled. Non-2xx replies are never retried.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, headers map[string]string, body any) (*Response, error) {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gsp %s: failed to encode request: %w", op, err)
		}
	}

	attempts := 1
	if c.cfg.RetryOnTransportError {
		attempts = 2
	}

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Operation: op, Message: "request not sent", Err: err}
		}

		req, err := newRequest(ctx, method, endpoint, payload, headers)
		if err != nil {
			return nil, fmt.Errorf("gsp %s: failed to create request: %w", op, err)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.RecordCall(ctx, op, 0, time.Since(start))
			if attempt < attempts && ctx.Err() == nil {
				c.logger.Warn("GSP call failed without response, retrying",
					zap.String("operation", op),
					zap.Error(err),
				)
				c.metrics.RecordRetry(ctx, op)
				continue
			}
			return nil, &TransportError{Operation: op, Message: "e-invoice service unreachable", Err: err}
		}

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		elapsed := time.Since(start)
		c.metrics.RecordCall(ctx, op, resp.StatusCode, elapsed)

		c.logger.Debug("GSP call completed",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", elapsed),
			zap.Int("attempt", attempt),
		)

		if readErr != nil {
			return nil, &TransportError{Operation: op, StatusCode: resp.StatusCode, Message: "failed to read response", Err: readErr}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &TransportError{
				Operation:  op,
				StatusCode: resp.StatusCode,
				Body:       raw,
				Message:    extractMessage(raw, resp.Status),
			}
		}
		if ct := resp.Header.Get("Content-Type"); !isJSON(ct) {
			return nil, &TransportError{
				Operation:  op,
				StatusCode: resp.StatusCode,
				Body:       raw,
				Message:    fmt.Sprintf("unexpected content type %q", ct),
			}
		}
		return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
	}
}

func newRequest(ctx context.Context, method, endpoint string, payload []byte, headers map[string]string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		// GSP header names are case-sensitive on some providers
		req.Header[k] = []string{v}
	}
	return req, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// extractMessage pulls a human readable message out of an error body
func extractMessage(raw []byte, fallback string) string {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		for _, key := range []string{"ErrorMessage", "errorMessage", "message", "Message", "error"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fallback
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
