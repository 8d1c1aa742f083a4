// Package tracer provides a small tracing abstraction for the demographics
// module.
//
// The interface keeps OpenTelemetry out of the service and client code so the
// upstream call and the shaping step can be traced without either depending
// on a specific tracing backend.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span. The returned context carries the span and
	// should be passed to child operations.
	//
	//   ctx, span := tr.Start(ctx, tracer.SpanUpstreamFetch,
	//       tracer.Int("results", 1000),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the demographics module.
const (
	SpanReport        = "demographics.report"
	SpanUpstreamFetch = "demographics.randomuser.fetch"
	SpanShape         = "demographics.shape"
	SpanChartRender   = "demographics.chart.render"
)

// Attribute keys used by the demographics module.
const (
	AttrResults     = "randomuser.results"
	AttrGender      = "randomuser.gender"
	AttrNationality = "randomuser.nat"
	AttrStatusCode  = "http.status_code"
	AttrRecords     = "records"
	AttrUnbucketed  = "records.unbucketed"
	AttrTopN        = "top_n"
	AttrShared      = "singleflight.shared"
)

// Event names used by the demographics module.
const (
	EventPriorChartDisposed = "chart.disposed"
)
