// Package telemetry provides Pyroscope continuous profiling integration.
package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Label keys shared across the profiling surface.
const (
	// ProfilingLabelController is the label key for the handler/controller name.
	ProfilingLabelController = "controller"
	// ProfilingLabelRoute is the label key for the route pattern.
	ProfilingLabelRoute = "route"
	// ProfilingLabelMethod is the label key for the HTTP method.
	ProfilingLabelMethod = "method"
	// ProfilingLabelOperation is the label key for the operation name.
	ProfilingLabelOperation = "operation"
	// ProfilingLabelRegion is the label key for code regions such as db_query.
	ProfilingLabelRegion = "region"
)

// MaxLabelValueLength caps label values; longer values are truncated before
// they reach Pyroscope.
const MaxLabelValueLength = 128

// HighCardinalityLabels lists label keys that sanitizeLabels drops outright.
// Per-request identifiers multiply Pyroscope series without adding any
// aggregation value.
//
// Treat the map as read-only.
var HighCardinalityLabels = map[string]bool{
	"request_id": true,
	"entity_id":  true,
	"trace_id":   true,
	"span_id":    true,
	"session_id": true,
}

// WithProfilingLabels runs fn under the given profiling labels so samples
// taken inside can be sliced by them in the Pyroscope UI. The labels map is
// read once and never retained.
//
//	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("customer_search", nil),
//	    func(ctx context.Context) {
//	        result, err = repo.Search(ctx, query)
//	    })
//
// pyroscope.TagWrapper builds on Go's native pprof labels, so the labels are
// visible to standard pprof tooling as well.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// ProfilingScope accumulates labels across call sites before running a
// function under them. Methods return the scope for chaining:
//
//	telemetry.NewProfilingScope(nil).
//	    WithOperation("event_dispatch").
//	    WithLabel("event_type", event.EventType()).
//	    Run(ctx, func(ctx context.Context) { handler.Handle(ctx, event) })
type ProfilingScope struct {
	labels map[string]string
}

// NewProfilingScope seeds a scope with the given labels. Nil means an empty
// scope.
func NewProfilingScope(labels map[string]string) *ProfilingScope {
	s := &ProfilingScope{labels: make(map[string]string, len(labels))}
	maps.Copy(s.labels, labels)
	return s
}

// WithLabel adds a single label to the scope.
func (s *ProfilingScope) WithLabel(key, value string) *ProfilingScope {
	s.labels[key] = value
	return s
}

// WithController adds the controller label.
func (s *ProfilingScope) WithController(controller string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelController, controller)
}

// WithRoute adds the route label.
func (s *ProfilingScope) WithRoute(route string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRoute, route)
}

// WithMethod adds the method label.
func (s *ProfilingScope) WithMethod(method string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelMethod, method)
}

// WithOperation adds the operation label.
func (s *ProfilingScope) WithOperation(operation string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelOperation, operation)
}

// WithRegion adds the region label.
func (s *ProfilingScope) WithRegion(region string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRegion, region)
}

// Labels returns a copy of the accumulated labels.
func (s *ProfilingScope) Labels() map[string]string {
	return maps.Clone(s.labels)
}

// Run executes fn under the accumulated labels.
func (s *ProfilingScope) Run(ctx context.Context, fn func(context.Context)) {
	WithProfilingLabels(ctx, s.labels, fn)
}

// sanitizeLabels flattens a label map into pyroscope's pair format. Keys are
// normalized to snake_case, values truncated to MaxLabelValueLength, and
// empty or high-cardinality entries dropped. Output order is deterministic.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range slices.Sorted(maps.Keys(labels)) {
		value := labels[key]
		if key == "" || value == "" || HighCardinalityLabels[key] {
			continue
		}

		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		if key = sanitizeLabelKey(key); key == "" {
			continue
		}
		pairs = append(pairs, key, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases the key, folds spaces and hyphens into
// underscores, and drops everything else outside [a-z0-9_].
func sanitizeLabelKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-':
			return '_'
		default:
			return -1
		}
	}, key)
}

// HTTPRequestLabels builds the standard label set for HTTP request
// profiling. Empty values are left out.
func HTTPRequestLabels(controller, route, method string) map[string]string {
	labels := make(map[string]string, 3)
	if controller != "" {
		labels[ProfilingLabelController] = controller
	}
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	return labels
}

// OperationLabels builds a label set for a named operation, merged with any
// extra labels. Extra entries win on key collision.
func OperationLabels(operation string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	labels[ProfilingLabelOperation] = operation
	maps.Copy(labels, extra)
	return labels
}
