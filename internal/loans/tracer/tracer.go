// Package tracer provides a small tracing abstraction for the loan review flow.
//
// The service depends on the Tracer interface only. NoopTracer is used in tests
// and when tracing is disabled; OTelTracer adapts OpenTelemetry.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
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

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the loan review flow.
const (
	SpanReview    = "loans.review"
	SpanLookup    = "loans.lookup"
	SpanNormalize = "loans.normalize"
	SpanAssess    = "loans.assess"
)

// Attribute keys. Borrower data is never attached to spans.
const (
	AttrLoanID       = "loan.id"
	AttrErrorCode    = "error.code"
	AttrFailedField  = "normalize.field"
	AttrFailedReason = "normalize.reason"
	AttrRiskScore    = "risk.score"
	AttrRiskCategory = "risk.category"
)
