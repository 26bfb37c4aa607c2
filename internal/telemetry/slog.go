package telemetry

import (
	"context"
	"log/slog"
)

// SlogPublisher writes events to the structured log. Used when no brokers
// are configured (local development, tests).
type SlogPublisher struct {
	logger *slog.Logger
}

// NewSlogPublisher constructs a log-backed publisher.
func NewSlogPublisher(logger *slog.Logger) *SlogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogPublisher{logger: logger}
}

func (p *SlogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "telemetry event",
		"event", event.Name,
		"payload", event.Payload,
		"timestamp", event.Timestamp,
	)
	return nil
}

func (p *SlogPublisher) Close() {}
