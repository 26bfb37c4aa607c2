// Package telemetry delivers resolution audit events to an external sink.
// Delivery is fire-and-forget: the resolution path never blocks on and never
// fails because of telemetry.
package telemetry

import (
	"context"
	"time"
)

// Event is one structured audit record describing a resolution branch.
type Event struct {
	Name      string         `json:"name"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher delivers events to a durable sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
