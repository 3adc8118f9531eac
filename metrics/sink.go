// Package metrics exposes sign in activity as prometheus counters.
package metrics

import (
	"context"

	"github.com/goliatone/go-chat-auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat_auth"

// Sink counts activity events. It implements auth.ActivitySink.
type Sink struct {
	signIns         *prometheus.CounterVec
	provisioned     prometheus.Counter
	sessionRejected *prometheus.CounterVec
}

var _ auth.ActivitySink = (*Sink)(nil)

// NewSink registers the auth counters on registry. A nil registry uses
// prometheus.DefaultRegisterer.
func NewSink(registry prometheus.Registerer) *Sink {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Sink{
		signIns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signin_total",
			Help:      "Sign in attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		provisioned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioned_total",
			Help:      "Federated users created on first sign in.",
		}),
		sessionRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_rejected_total",
			Help:      "Session tokens rejected, split by expiry.",
		}, []string{"expired"}),
	}
}

// Record implements auth.ActivitySink.
func (s *Sink) Record(_ context.Context, event auth.ActivityEvent) error {
	provider := string(event.Provider)
	if provider == "" {
		provider = "unknown"
	}

	switch event.EventType {
	case auth.ActivityEventSignInSuccess:
		s.signIns.WithLabelValues(provider, "success").Inc()
	case auth.ActivityEventSignInFailure:
		s.signIns.WithLabelValues(provider, "failure").Inc()
	case auth.ActivityEventProvisioned:
		s.provisioned.Inc()
	case auth.ActivityEventSessionRejected:
		expired := "false"
		if v, ok := event.Metadata["expired"].(bool); ok && v {
			expired = "true"
		}
		s.sessionRejected.WithLabelValues(expired).Inc()
	}
	return nil
}
