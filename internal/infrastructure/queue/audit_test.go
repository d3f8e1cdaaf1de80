package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

type memSink struct {
	mu      sync.Mutex
	events  []domain.AuditEvent
	blockCh chan struct{}
}

func (s *memSink) Insert(_ context.Context, event *domain.AuditEvent) error {
	if s.blockCh != nil {
		<-s.blockCh
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *memSink) List(context.Context, ports.Page) ([]domain.AuditEvent, int64, error) {
	return nil, 0, nil
}

func (s *memSink) Recent(context.Context, int) ([]domain.AuditEvent, error) {
	return nil, nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestAuditRecorder_PersistsEvents(t *testing.T) {
	sink := &memSink{}
	recorder := NewAuditRecorder(sink, 8, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recorder.Start(ctx)

	recorder.Record(domain.AuditEvent{Action: "login", Resource: "auth", Outcome: domain.AuditSuccess})
	recorder.Record(domain.AuditEvent{Action: "create", Resource: "user", Outcome: domain.AuditSuccess})

	waitFor(t, func() bool { return sink.count() == 2 })

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.events[0].Action != "login" || sink.events[1].Action != "create" {
		t.Fatalf("events out of order: %+v", sink.events)
	}
	if sink.events[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be stamped")
	}
}

func TestAuditRecorder_DropsWhenFull(t *testing.T) {
	// Block the sink so the worker cannot drain while we overfill the queue.
	sink := &memSink{blockCh: make(chan struct{})}
	recorder := NewAuditRecorder(sink, 2, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recorder.Start(ctx)

	// Record never blocks even with a stalled worker; the surplus is dropped.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			recorder.Record(domain.AuditEvent{Action: "spam", Resource: "test"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	close(sink.blockCh)
	waitFor(t, func() bool { return sink.count() >= 1 })
	if sink.count() > 3 {
		// 2 queued + at most 1 in flight in the worker.
		t.Fatalf("expected surplus events to be dropped, persisted %d", sink.count())
	}
}

func TestAuditRecorder_StopsOnContextCancel(t *testing.T) {
	sink := &memSink{}
	recorder := NewAuditRecorder(sink, 8, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	recorder.Start(ctx)
	cancel()

	// Give the worker a moment to observe cancellation, then enqueue. The
	// event stays queued; nothing new is persisted.
	time.Sleep(20 * time.Millisecond)
	recorder.Record(domain.AuditEvent{Action: "late", Resource: "test"})
	time.Sleep(50 * time.Millisecond)

	if sink.count() != 0 {
		t.Fatalf("worker persisted events after cancellation")
	}
}
