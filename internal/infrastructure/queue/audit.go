package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/api/metrics"
	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

const (
	defaultQueueSize = 256
	sinkTimeout      = 5 * time.Second
)

// AuditRecorder buffers audit events in a bounded channel drained by a
// single background worker. Record never blocks: when the queue is full the
// event is dropped and counted, so a slow audit sink can never back up
// request handling.
type AuditRecorder struct {
	events chan domain.AuditEvent
	sink   ports.AuditRepository
	log    zerolog.Logger
}

// NewAuditRecorder creates an AuditRecorder with the given queue capacity.
// If queueSize <= 0, defaultQueueSize is used.
func NewAuditRecorder(sink ports.AuditRepository, queueSize int, log zerolog.Logger) *AuditRecorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &AuditRecorder{
		events: make(chan domain.AuditEvent, queueSize),
		sink:   sink,
		log:    log,
	}
}

// Start launches the worker goroutine. The worker stops when ctx is
// cancelled; events still queued at that point are not flushed.
func (r *AuditRecorder) Start(ctx context.Context) {
	go r.run(ctx)
}

// Record enqueues an event without blocking. Fire-and-forget: a full queue
// drops the event.
func (r *AuditRecorder) Record(event domain.AuditEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	select {
	case r.events <- event:
		metrics.AuditQueueDepth.Set(float64(len(r.events)))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		r.log.Warn().Str("action", event.Action).Str("resource", event.Resource).Msg("audit queue full, event dropped")
	}
}

func (r *AuditRecorder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.events:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.Set(float64(len(r.events)))

			writeCtx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			if err := r.sink.Insert(writeCtx, &event); err != nil {
				// Audit failures are logged, never escalated.
				r.log.Error().Err(err).Str("action", event.Action).Msg("failed to persist audit event")
			}
			cancel()
		}
	}
}
