package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// GSP call outcomes recorded on einvoice_gsp_calls_total.
const (
	OutcomeSuccess   = "success"
	OutcomeHTTPError = "http_error"
	OutcomeNetwork   = "network_error"
)

// GSPMetrics records upstream e-invoice API activity.
type GSPMetrics struct {
	callsTotal        *Counter
	callDuration      *Histogram
	retriesTotal      *Counter
	credentialFetches *Counter
	irnOperations     *Counter
}

// NewGSPMetrics registers the GSP instruments on meter
func NewGSPMetrics(meter metric.Meter) (*GSPMetrics, error) {
	if meter == nil {
		return nil, &MetricsError{Message: "meter is required"}
	}

	calls, err := NewCounter(meter, "einvoice_gsp_calls_total", "Upstream GSP API calls", "{call}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "einvoice_gsp_call_duration_seconds",
		Description: "Upstream GSP API call latency",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	retries, err := NewCounter(meter, "einvoice_gsp_retries_total", "Upstream calls retried after a connection error", "{call}")
	if err != nil {
		return nil, err
	}
	fetches, err := NewCounter(meter, "einvoice_credential_fetches_total", "Credential fetches by type and result", "{fetch}")
	if err != nil {
		return nil, err
	}
	irn, err := NewCounter(meter, "einvoice_irn_operations_total", "IRN operations by type and result", "{operation}")
	if err != nil {
		return nil, err
	}

	return &GSPMetrics{
		callsTotal:        calls,
		callDuration:      duration,
		retriesTotal:      retries,
		credentialFetches: fetches,
		irnOperations:     irn,
	}, nil
}

// RecordCall records one HTTP exchange. status is zero when no response arrived.
func (m *GSPMetrics) RecordCall(ctx context.Context, operation string, status int, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case status == 0:
		outcome = OutcomeNetwork
	case status < 200 || status > 299:
		outcome = OutcomeHTTPError
	}
	m.callsTotal.Inc(ctx,
		AttrGSPOperation.String(operation),
		AttrGSPOutcome.String(outcome),
		AttrHTTPStatusCode.String(strconv.Itoa(status)),
	)
	m.callDuration.RecordDuration(ctx, d, AttrGSPOperation.String(operation))
}

// RecordRetry counts a retried call
func (m *GSPMetrics) RecordRetry(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.retriesTotal.Inc(ctx, AttrGSPOperation.String(operation))
}

// RecordCredentialFetch counts an access token or session fetch
func (m *GSPMetrics) RecordCredentialFetch(ctx context.Context, credential string, ok bool) {
	if m == nil {
		return
	}
	m.credentialFetches.Inc(ctx, AttrCredential.String(credential), AttrGSPOutcome.String(outcomeOf(ok)))
}

// RecordIRNOperation counts a generate, cancel or lookup result
func (m *GSPMetrics) RecordIRNOperation(ctx context.Context, operation string, ok bool) {
	if m == nil {
		return
	}
	m.irnOperations.Inc(ctx, AttrGSPOperation.String(operation), AttrGSPOutcome.String(outcomeOf(ok)))
}

func outcomeOf(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return "failure"
}

// MetricsError is returned when instruments cannot be created.
type MetricsError struct {
	Message string
}

func (e *MetricsError) Error() string {
	return "telemetry: " + e.Message
}
