package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelComponent = "component"
	ProfilingLabelOperation = "operation"
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
)

// MaxLabelValueLength caps label values.
const MaxLabelValueLength = 128

// HighCardinalityLabels are dropped from profiling labels. Document
// numbers, IRNs and GSTINs are unbounded per deployment.
var HighCardinalityLabels = map[string]bool{
	"request_id":      true,
	"trace_id":        true,
	"span_id":         true,
	"irn":             true,
	"gstin":           true,
	"document_number": true,
}

// WithProfilingLabels runs fn with pprof labels attached, so CPU samples
// taken inside can be filtered by them in Pyroscope. Labels apply even when
// the profiler is not running; they then only show up in local pprof.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// WithOperationLabels labels fn with the component and operation it serves,
// e.g. ("orchestrator", "generate_irn").
func WithOperationLabels(ctx context.Context, component, operation string, fn func(context.Context)) {
	WithProfilingLabels(ctx, map[string]string{
		ProfilingLabelComponent: component,
		ProfilingLabelOperation: operation,
	}, fn)
}

// sanitizeLabels returns key/value pairs sorted by key, without empty or
// high-cardinality entries and with values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if value == "" {
			continue
		}
		sanitized := sanitizeLabelKey(key)
		if sanitized == "" || HighCardinalityLabels[sanitized] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, sanitized, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases key into snake_case and drops other characters.
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			out = append(out, c)
		}
	}
	return string(out)
}
