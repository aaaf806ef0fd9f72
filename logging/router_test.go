package logging_test

import (
	"context"
	"testing"
	"time"

	"driftmap/client/logging"
	"driftmap/client/logging/sinks"
)

func fixedClock() logging.Clock {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return logging.ClockFunc(func() time.Time { return at })
}

func newRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(fixedClock(), cfg, []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("construct router: %v", err)
	}
	return router, memory
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close router: %v", err)
	}
}

func TestRouterDeliversToSinks(t *testing.T) {
	router, memory := newRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{
		Type:     "sync.tenant_mismatch",
		Seq:      3,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySync,
	})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected one delivered event, got %d", len(events))
	}
	if events[0].Type != "sync.tenant_mismatch" || events[0].Seq != 3 {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("router must stamp missing timestamps")
	}
	if stats := router.Stats(); stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	router, memory := newRouter(t, logging.DefaultConfig())
	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityError})
	closeRouter(t, router)
	if len(memory.Events()) != 0 {
		t.Fatalf("events without a type must be discarded")
	}
}

func TestRouterSeverityFilter(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "a", Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "b", Severity: logging.SeverityError})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 || events[0].Type != "b" {
		t.Fatalf("expected only the error event, got %+v", events)
	}
}

func TestRouterAttachesGlobalFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"tenant": int64(7)}
	router, memory := newRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "a", Severity: logging.SeverityInfo})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if got, ok := events[0].Extra["tenant"]; !ok || got != int64(7) {
		t.Fatalf("expected global field attached, got %+v", events[0].Extra)
	}
}

func TestRouterRejectsAfterClose(t *testing.T) {
	router, memory := newRouter(t, logging.DefaultConfig())
	closeRouter(t, router)
	router.Publish(context.Background(), logging.Event{Type: "late", Severity: logging.SeverityError})
	if len(memory.Events()) != 0 {
		t.Fatalf("closed router must drop publishes")
	}
}
