package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// AuditSubjects is captured by the audit stream.
var AuditSubjects = []string{"analytics.>"}

// EnsureAuditStream creates or extends a JetStream stream that records every
// analytics event published over core NATS.
func EnsureAuditStream(ctx context.Context, conn *nc.Conn, name string, logger *slog.Logger) error {
	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	stream, err := js.Stream(ctx, name)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := js.CreateStream(ctx, jetstream.StreamConfig{Name: name, Subjects: AuditSubjects}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		logger.Info("Created JetStream stream", slog.String("stream", name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", name, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}
	missing := false
	for _, subject := range AuditSubjects {
		found := false
		for _, existing := range info.Config.Subjects {
			if existing == subject {
				found = true
				break
			}
		}
		if !found {
			info.Config.Subjects = append(info.Config.Subjects, subject)
			missing = true
		}
	}
	if missing {
		if _, err := js.UpdateStream(ctx, info.Config); err != nil {
			return fmt.Errorf("failed to update stream %s: %w", name, err)
		}
		logger.Info("Stream updated with audit subjects", slog.String("stream", name))
	}
	return nil
}
