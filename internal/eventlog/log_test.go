package eventlog

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/telemetry"
)

func TestAppend_PreservesOrder(t *testing.T) {
	l := New()

	l.Append("n1", "Start", domain.EventStatusRunning, "", nil)
	l.Append("n1", "Start", domain.EventStatusSuccess, "", "out")
	l.System(domain.EventStatusError, "boom")

	entries := l.Entries()
	if len(entries) != 3 || l.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Status != domain.EventStatusRunning || entries[1].Status != domain.EventStatusSuccess {
		t.Errorf("unexpected order: %+v", entries)
	}
	if entries[1].Details != "out" {
		t.Errorf("details not stored: %v", entries[1].Details)
	}
	if !entries[2].IsSystem() || entries[2].NodeName != domain.SystemNodeName {
		t.Errorf("expected system event, got %+v", entries[2])
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Error("event ids must be unique")
	}

	// Entries возвращает копию
	entries[0].Message = "changed"
	if l.Entries()[0].Message == "changed" {
		t.Error("Entries must return a copy")
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("expected empty log, got %d", l.Len())
	}
}

func TestAppend_UsesClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l := New(WithClock(func() time.Time { return fixed }))

	event := l.Append("n1", "Start", domain.EventStatusRunning, "", nil)
	if !event.Timestamp.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, event.Timestamp)
	}
}

func TestObserver(t *testing.T) {
	l := New()

	var seen []domain.EventStatus
	l.AddObserver(ObserverFunc(func(e domain.Event) {
		seen = append(seen, e.Status)
	}))

	l.Append("n1", "Start", domain.EventStatusRunning, "", nil)
	l.Append("n1", "Start", domain.EventStatusSuccess, "", nil)

	if len(seen) != 2 || seen[0] != domain.EventStatusRunning || seen[1] != domain.EventStatusSuccess {
		t.Errorf("unexpected observed events: %v", seen)
	}
}

func TestSubscribe(t *testing.T) {
	l := New()
	ch, cancel := l.Subscribe(context.Background(), 10)

	l.Append("n1", "Start", domain.EventStatusRunning, "", nil)

	select {
	case e := <-ch:
		if e.NodeID != "n1" {
			t.Errorf("unexpected event %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	cancel() // повторный вызов безопасен

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}

	// Запись после отписки не паникует
	l.Append("n1", "Start", domain.EventStatusSuccess, "", nil)
}

func TestSubscribe_ContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := l.Subscribe(ctx, 1)

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed on context cancel")
	}
}

func TestSubscribe_DropsWhenFull(t *testing.T) {
	reg := prometheus.NewRegistry()
	l := New(WithMetrics(telemetry.NewMetrics(reg)))

	ch, cancel := l.Subscribe(context.Background(), 1)
	defer cancel()

	for i := 0; i < 3; i++ {
		l.Append("n1", "Start", domain.EventStatusRunning, "", nil)
	}

	if l.Len() != 3 {
		t.Errorf("log must keep all entries, got %d", l.Len())
	}
	if len(ch) != 1 {
		t.Errorf("expected 1 buffered event, got %d", len(ch))
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var dropped float64
	for _, mf := range families {
		if mf.GetName() == "flowcraft_events_dropped_total" {
			dropped = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if dropped != 2 {
		t.Errorf("expected 2 dropped events, got %v", dropped)
	}
}
