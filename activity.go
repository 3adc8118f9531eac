package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignInSuccess   ActivityEventType = "auth.signin.success"
	ActivityEventSignInFailure   ActivityEventType = "auth.signin.failure"
	ActivityEventProvisioned     ActivityEventType = "auth.federated.provisioned"
	ActivityEventSessionRejected ActivityEventType = "auth.session.rejected"
)

// ActivityEvent captures audit-friendly information about an action.
// It never carries passwords and only carries the email on provisioning.
type ActivityEvent struct {
	EventType  ActivityEventType
	Provider   ProviderTag
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// MultiSink fans an event out to every sink, returning the first error.
type MultiSink []ActivitySink

// Record implements ActivitySink.
func (m MultiSink) Record(ctx context.Context, event ActivityEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
