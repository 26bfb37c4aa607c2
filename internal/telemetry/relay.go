package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultBufferSize = 1024

// drainTimeout bounds how long shutdown waits for buffered events.
const drainTimeout = 5 * time.Second

// Relay decouples event producers from the publisher with a bounded buffer.
// Log never blocks: when the buffer is full the event is dropped and counted.
type Relay struct {
	publisher Publisher
	events    chan Event
	logger    *slog.Logger
	clock     func() time.Time

	dropped   atomic.Int64
	droppedC  prometheus.Counter
	published prometheus.Counter
}

// RelayOption configures a Relay instance.
type RelayOption func(*Relay)

// WithBufferSize sets the event buffer capacity.
func WithBufferSize(size int) RelayOption {
	return func(r *Relay) {
		if size > 0 {
			r.events = make(chan Event, size)
		}
	}
}

// WithRelayLogger sets the structured logger.
func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRelayClock sets the clock function for testability.
func WithRelayClock(clock func() time.Time) RelayOption {
	return func(r *Relay) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithRegistry registers relay metrics on the given registerer.
func WithRegistry(reg prometheus.Registerer) RelayOption {
	return func(r *Relay) {
		r.droppedC = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "facesign_telemetry_dropped_total",
			Help: "Telemetry events dropped because the relay buffer was full.",
		})
		r.published = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "facesign_telemetry_published_total",
			Help: "Telemetry events handed to the publisher.",
		})
	}
}

// NewRelay constructs a relay in front of the given publisher.
func NewRelay(publisher Publisher, opts ...RelayOption) *Relay {
	relay := &Relay{
		publisher: publisher,
		events:    make(chan Event, defaultBufferSize),
		logger:    slog.Default(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(relay)
		}
	}
	return relay
}

// Log enqueues an event. It never blocks and never returns an error; a full
// buffer drops the event.
func (r *Relay) Log(_ context.Context, name string, payload map[string]any) {
	event := Event{Name: name, Payload: payload, Timestamp: r.clock().UTC()}
	select {
	case r.events <- event:
	default:
		r.dropped.Add(1)
		if r.droppedC != nil {
			r.droppedC.Inc()
		}
		r.logger.Warn("telemetry event dropped", "event", name)
	}
}

// Dropped reports how many events have been dropped since start.
func (r *Relay) Dropped() int64 {
	return r.dropped.Load()
}

// Run drains the buffer to the publisher until ctx is cancelled, then
// flushes remaining events for up to drainTimeout and closes the publisher.
// Intended to run in its own goroutine (errgroup in the composition root).
func (r *Relay) Run(ctx context.Context) error {
	defer r.publisher.Close()

	for {
		select {
		case event := <-r.events:
			r.publish(ctx, event)
		case <-ctx.Done():
			r.drain()
			return ctx.Err()
		}
	}
}

func (r *Relay) drain() {
	deadline, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-r.events:
			r.publish(deadline, event)
		default:
			return
		}
	}
}

func (r *Relay) publish(ctx context.Context, event Event) {
	if err := r.publisher.Publish(ctx, event); err != nil {
		// Telemetry loss is tolerable; resolution outcomes are not affected.
		r.logger.Warn("telemetry publish failed", "event", event.Name, "error", err)
		return
	}
	if r.published != nil {
		r.published.Inc()
	}
}
