package notify

import (
	"context"
	"fmt"
	"time"

	"livetokens/internal/logger"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Publisher delivers domain events to external notification collaborators
// (chat broadcast, toy triggers). Delivery is best-effort from the caller's
// point of view; at-least-once semantics come from the outbox in front of it.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close()
}

// Config holds the NATS JetStream connection settings
type Config struct {
	URL        string
	StreamName string
}

type jetStreamPublisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewJetStreamPublisher connects to NATS and ensures the event stream exists
func NewJetStreamPublisher(cfg Config) (Publisher, error) {
	opts := []nats.Option{
		nats.Name("livetokens-notifier"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{"tips.>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}

	return &jetStreamPublisher{nc: nc, js: js}, nil
}

func (p *jetStreamPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	_, err := p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *jetStreamPublisher) Close() {
	p.nc.Close()
}
