package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the publisher/subscriber pair used by module routers.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// Backend names the transport: "gochannel" or "nats".
	Backend() string
}

// Config selects the transport. An empty NATSURL keeps everything in process.
type Config struct {
	NATSURL     string
	QueueGroup  string
	AuditStream string
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsConn   *nc.Conn
	backend    string
	logger     *slog.Logger
}

// NewEventBus connects to NATS when configured, otherwise returns an in-process
// gochannel bus.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger)

	if cfg.NATSURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		logger.InfoContext(ctx, "Using in-process event bus")
		return &eventBus{publisher: ch, subscriber: ch, backend: "gochannel", logger: logger}, nil
	}

	options := []nc.Option{
		nc.Name("team-ledger"),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	natsConn, err := nc.Connect(cfg.NATSURL, options...)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if cfg.AuditStream != "" {
		if err := EnsureAuditStream(ctx, natsConn, cfg.AuditStream, logger); err != nil {
			natsConn.Close()
			return nil, err
		}
	}

	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{Disabled: true}

	publisher, err := nats.NewPublisherWithNatsConn(natsConn, nats.PublisherPublishConfig{
		Marshaler:         marshaler,
		SubjectCalculator: nats.DefaultSubjectCalculator,
		JetStream:         jsConfig,
	}, wmLogger)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriberWithNatsConn(natsConn, nats.SubscriberSubscriptionConfig{
		Unmarshaler:       marshaler,
		QueueGroupPrefix:  cfg.QueueGroup,
		SubscribersCount:  1,
		AckWaitTimeout:    30 * time.Second,
		CloseTimeout:      30 * time.Second,
		SubscribeTimeout:  30 * time.Second,
		SubjectCalculator: nats.DefaultSubjectCalculator,
		JetStream:         jsConfig,
	}, wmLogger)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Connected to NATS", slog.String("url", cfg.NATSURL))
	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		natsConn:   natsConn,
		backend:    "nats",
		logger:     logger,
	}, nil
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	eb.logger.Debug("Publishing messages", slog.String("topic", topic), slog.Int("count", len(messages)))
	return eb.publisher.Publish(topic, messages...)
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))
	return eb.subscriber.Subscribe(ctx, topic)
}

func (eb *eventBus) Backend() string { return eb.backend }

// Close closes the publisher and subscriber, then the NATS connection.
func (eb *eventBus) Close() error {
	var errs []error
	if err := eb.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if any(eb.subscriber) != any(eb.publisher) {
		if err := eb.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}
