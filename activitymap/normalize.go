package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-chat-auth"
)

const (
	// MetadataKeyProvider stores the provider tag of the event.
	MetadataKeyProvider = "provider"
)

const (
	defaultChannel    = "auth"
	defaultObjectType = "user"
	defaultActorID    = "anonymous"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

// Normalize converts an auth.ActivityEvent into a generic normalized shape.
func Normalize(event auth.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	userID := strings.TrimSpace(event.UserID)
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    firstNonEmpty(userID, options.actorFallback),
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   userID,
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// LogSink returns a sink that writes each normalized event to logger.
func LogSink(logger auth.Logger, opts ...Option) auth.ActivitySink {
	if logger == nil {
		logger = auth.DefaultLogger()
	}
	return auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		n := Normalize(event, opts...)
		args := []any{
			"verb", n.Verb,
			"actor_id", n.ActorID,
			"channel", n.Channel,
		}
		if n.ObjectID != "" {
			args = append(args, "object_type", n.ObjectType, "object_id", n.ObjectID)
		}
		for k, v := range n.Metadata {
			args = append(args, k, v)
		}
		logger.Info("auth activity", args...)
		return nil
	})
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the default object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used when the event has no user.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func normalizeMetadata(event auth.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if event.Provider != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyProvider]; !exists {
			metadata[MetadataKeyProvider] = string(event.Provider)
		}
	}

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
