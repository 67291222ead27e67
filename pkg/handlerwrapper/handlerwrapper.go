// Package handlerwrapper adapts typed event handlers to Watermill.
package handlerwrapper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CorrelationIDKey is the message metadata key carrying the run identifier.
const CorrelationIDKey = "correlation_id"

// Result is one outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// TypedHandler handles a decoded payload and returns the events to publish.
type TypedHandler[T any] func(ctx context.Context, payload *T) ([]Result, error)

// WrapTyped decodes the message JSON into T, runs handler under a span, and
// publishes every returned Result to its own topic. Undecodable messages are
// logged and acked; handler errors nack the message.
func WrapTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler TypedHandler[T],
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := msg.Context()
		if id := msg.Metadata.Get(CorrelationIDKey); id != "" {
			ctx = attr.WithCorrelationID(ctx, id)
		}

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
			))
		} else {
			span = trace.SpanFromContext(ctx)
		}
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to decode message payload",
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			return fmt.Errorf("%s: %w", handlerName, err)
		}

		for _, res := range results {
			out, err := NewMessage(ctx, res)
			if err != nil {
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			if err := publisher.Publish(res.Topic, out); err != nil {
				return fmt.Errorf("%s: publish %s: %w", handlerName, res.Topic, err)
			}
		}
		return nil
	}
}

// NewMessage encodes a Result as a JSON Watermill message, carrying over the
// context's correlation ID.
func NewMessage(ctx context.Context, res Result) (*message.Message, error) {
	body, err := json.Marshal(res.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", res.Topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range res.Metadata {
		msg.Metadata.Set(k, v)
	}
	if id := attr.CorrelationID(ctx); id != "" && msg.Metadata.Get(CorrelationIDKey) == "" {
		msg.Metadata.Set(CorrelationIDKey, id)
	}
	msg.Metadata.Set("topic", res.Topic)
	return msg, nil
}
