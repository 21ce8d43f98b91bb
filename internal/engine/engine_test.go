package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/eventlog"
	"github.com/shaiso/Flowcraft/internal/graph"
	"github.com/shaiso/Flowcraft/internal/telemetry"
)

// recordActivity записывает входы и возвращает output (или input, если output nil).
type recordActivity struct {
	typ    string
	output any
	err    error

	mu     sync.Mutex
	inputs []any
}

func (a *recordActivity) Type() string             { return a.typ }
func (a *recordActivity) Label() string            { return a.typ }
func (a *recordActivity) Fields() []activity.Field { return nil }

func (a *recordActivity) Compute(ctx context.Context, req *activity.Request) (any, error) {
	a.mu.Lock()
	a.inputs = append(a.inputs, req.Input)
	a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	if a.output != nil {
		return a.output, nil
	}
	return req.Input, nil
}

func (a *recordActivity) Inputs() []any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]any(nil), a.inputs...)
}

// sourceActivity — точка входа с фиксированным output.
type sourceActivity struct {
	recordActivity
}

func (a *sourceActivity) EntryPoint() {}

// blockActivity ждёт закрытия release.
type blockActivity struct {
	started chan struct{}
	release chan struct{}
}

func (a *blockActivity) Type() string             { return "block" }
func (a *blockActivity) Label() string            { return "Block" }
func (a *blockActivity) Fields() []activity.Field { return nil }

func (a *blockActivity) Compute(ctx context.Context, req *activity.Request) (any, error) {
	close(a.started)
	select {
	case <-a.release:
		return "released", nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fixture struct {
	store    *graph.Store
	registry *activity.Registry
	log      *eventlog.Log
	engine   *Engine
}

func newFixture(t *testing.T, extra ...activity.Activity) *fixture {
	t.Helper()

	registry := activity.DefaultRegistry()
	for _, a := range extra {
		registry.Register(a)
	}

	f := &fixture{
		store:    graph.NewStore(),
		registry: registry,
		log:      eventlog.New(),
	}
	f.engine = New(Config{
		Store:    f.store,
		Registry: f.registry,
		Log:      f.log,
		Metrics:  telemetry.NewMetrics(prometheus.NewRegistry()),
		Logger:   telemetry.Discard(),
	})
	return f
}

func (f *fixture) add(t *testing.T, activityType string, config map[string]any) string {
	t.Helper()
	id := f.store.AddNode(activityType, domain.Position{})
	if config != nil {
		f.store.UpdateNode(id, graph.NodeUpdate{Config: config})
	}
	return id
}

func (f *fixture) connect(t *testing.T, src, dst string) {
	t.Helper()
	if _, ok := f.store.AddConnection(src, dst); !ok {
		t.Fatalf("connection %s→%s rejected", src, dst)
	}
}

func (f *fixture) status(t *testing.T, id string) domain.NodeStatus {
	t.Helper()
	node, ok := f.store.GetNode(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	return node.Status
}

func (f *fixture) disable(id string) {
	disabled := false
	f.store.UpdateNode(id, graph.NodeUpdate{Enabled: &disabled})
}

type eventKey struct {
	Node   string
	Status domain.EventStatus
}

func eventKeys(events []domain.Event) []eventKey {
	keys := make([]eventKey, len(events))
	for i, e := range events {
		keys[i] = eventKey{Node: e.NodeName, Status: e.Status}
	}
	return keys
}

func TestRun_StartCreateFileEnd(t *testing.T) {
	f := newFixture(t)
	start := f.add(t, activity.TypeStart, nil)
	create := f.add(t, activity.TypeCreateFile, map[string]any{"fileName": "report.txt", "content": "abc"})
	end := f.add(t, activity.TypeEnd, nil)
	f.connect(t, start, create)
	f.connect(t, create, end)

	if err := f.engine.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var success []string
	for _, e := range f.log.Entries() {
		if e.Status == domain.EventStatusSuccess {
			success = append(success, e.NodeID)
		}
	}
	if diff := cmp.Diff([]string{start, create, end}, success); diff != "" {
		t.Errorf("success order mismatch (-want +got):\n%s", diff)
	}

	node, _ := f.store.GetNode(create)
	info, ok := node.Output.(activity.FileInfo)
	if !ok {
		t.Fatalf("expected FileInfo output, got %T", node.Output)
	}
	if info.FullName != "report.txt" {
		t.Errorf("expected fullName report.txt, got %s", info.FullName)
	}

	endNode, _ := f.store.GetNode(end)
	if endNode.Output != node.Output {
		t.Errorf("end should receive createFile output, got %v", endNode.Output)
	}

	record, ok := f.engine.LastRun()
	if !ok || record.Status != domain.RunStatusSucceeded {
		t.Errorf("expected succeeded run, got %+v", record)
	}
	if len(record.Events) != 6 {
		t.Errorf("expected 6 events in run record, got %d", len(record.Events))
	}
}

func TestRun_NoEntryNodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture) []string
	}{
		{
			name:  "empty graph",
			setup: func(t *testing.T, f *fixture) []string { return nil },
		},
		{
			name: "no start node",
			setup: func(t *testing.T, f *fixture) []string {
				a := f.add(t, activity.TypeCreateFile, map[string]any{"fileName": "a.txt"})
				b := f.add(t, activity.TypeEnd, nil)
				f.connect(t, a, b)
				return []string{a, b}
			},
		},
		{
			name: "disabled start node",
			setup: func(t *testing.T, f *fixture) []string {
				s := f.add(t, activity.TypeStart, nil)
				f.disable(s)
				return []string{s}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ids := tt.setup(t, f)

			err := f.engine.Run(context.Background())
			if !errors.Is(err, ErrNoEntryNodes) {
				t.Fatalf("expected ErrNoEntryNodes, got %v", err)
			}

			events := f.log.Entries()
			if len(events) != 1 {
				t.Fatalf("expected exactly 1 event, got %d", len(events))
			}
			if !events[0].IsSystem() || events[0].Status != domain.EventStatusError {
				t.Errorf("expected system error event, got %+v", events[0])
			}
			if events[0].Message != "workflow must have at least one active start node" {
				t.Errorf("unexpected message %q", events[0].Message)
			}

			for _, id := range ids {
				if s := f.status(t, id); s != domain.NodeStatusIdle {
					t.Errorf("node %s status changed to %s", id, s)
				}
			}

			record, _ := f.engine.LastRun()
			if record.Status != domain.RunStatusFailed {
				t.Errorf("expected failed run, got %s", record.Status)
			}
		})
	}
}

func TestRun_InactiveNodePassThrough(t *testing.T) {
	source := &sourceActivity{recordActivity{typ: "source", output: "payload"}}
	middle := &recordActivity{typ: "middle", output: "changed"}
	sink := &recordActivity{typ: "sink"}
	f := newFixture(t, source, middle, sink)

	a := f.add(t, "source", nil)
	b := f.add(t, "middle", nil)
	c := f.add(t, "sink", nil)
	f.connect(t, a, b)
	f.connect(t, b, c)
	f.disable(b)

	if err := f.engine.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := f.status(t, b); s != domain.NodeStatusIdle {
		t.Errorf("inactive node should stay idle, got %s", s)
	}
	if len(middle.Inputs()) != 0 {
		t.Error("inactive node must not compute")
	}
	if diff := cmp.Diff([]any{"payload"}, sink.Inputs()); diff != "" {
		t.Errorf("sink input mismatch (-want +got):\n%s", diff)
	}

	var skipped bool
	for _, e := range f.log.Entries() {
		if e.NodeID == b && e.Status == domain.EventStatusSkip {
			skipped = true
			if e.Message != "skipping inactive node" {
				t.Errorf("unexpected skip message %q", e.Message)
			}
		}
	}
	if !skipped {
		t.Error("expected skip event for inactive node")
	}
}

func TestRun_ConfigActiveFalseSkipsNode(t *testing.T) {
	f := newFixture(t)
	start := f.add(t, activity.TypeStart, nil)
	end := f.add(t, activity.TypeEnd, nil)
	f.connect(t, start, end)
	f.store.UpdateNode(end, graph.NodeUpdate{Config: map[string]any{domain.LegacyActiveKey: false}})

	if err := f.engine.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := f.status(t, end); s != domain.NodeStatusIdle {
		t.Errorf("disabled node should stay idle, got %s", s)
	}

	want := []eventKey{
		{"Start", domain.EventStatusRunning},
		{"Start", domain.EventStatusSuccess},
		{"End", domain.EventStatusSkip},
	}
	if diff := cmp.Diff(want, eventKeys(f.log.Entries())); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Reachability(t *testing.T) {
	f := newFixture(t)
	start := f.add(t, activity.TypeStart, nil)
	end := f.add(t, activity.TypeEnd, nil)
	orphan := f.add(t, activity.TypeEnd, nil)
	f.connect(t, start, end)

	if err := f.engine.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := f.status(t, end); s != domain.NodeStatusSuccess {
		t.Errorf("reachable node should succeed, got %s", s)
	}
	if s := f.status(t, orphan); s != domain.NodeStatusIdle {
		t.Errorf("unreachable node should stay idle, got %s", s)
	}

	stats := f.engine.Stats()
	if stats.TotalNodes != 3 || stats.SuccessNodes != 2 || stats.IdleNodes != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRun_DepthFirstOrder(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, activity.TypeStart, map[string]any{"name": "A"})
	b := f.add(t, activity.TypeEnd, map[string]any{"name": "B"})
	c := f.add(t, activity.TypeEnd, map[string]any{"name": "C"})
	d := f.add(t, activity.TypeEnd, map[string]any{"name": "D"})
	f.connect(t, a, b)
	f.connect(t, a, c)
	f.connect(t, b, d)

	if err := f.engine.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []eventKey{
		{"A", domain.EventStatusRunning}, {"A", domain.EventStatusSuccess},
		{"B", domain.EventStatusRunning}, {"B", domain.EventStatusSuccess},
		{"D", domain.EventStatusRunning}, {"D", domain.EventStatusSuccess},
		{"C", domain.EventStatusRunning}, {"C", domain.EventStatusSuccess},
	}
	if diff := cmp.Diff(want, eventKeys(f.log.Entries())); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FanInRunsPerIncomingEdge(t *testing.T) {
	left := &recordActivity{typ: "left", output: "L"}
	right := &recordActivity{typ: "right", output: "R"}
	join := &recordActivity{typ: "join"}
	f := newFixture(t, left, right, join)

	start := f.add(t, activity.TypeStart, nil)
	l := f.add(t, "left", nil)
	r := f.add(t, "right", nil)
	j := f.add(t, "join", nil)
	f.connect(t, start, l)
	f.connect(t, start, r)
	f.connect(t, l, j)
	f.connect(t, r, j)

	if err := f.engine.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]any{"L", "R"}, join.Inputs()); diff != "" {
		t.Errorf("join inputs mismatch (-want +got):\n%s", diff)
	}

	node, _ := f.store.GetNode(j)
	if node.Output != "R" {
		t.Errorf("join should keep output of the last invocation, got %v", node.Output)
	}
}

func TestRun_FailureAbortsRun(t *testing.T) {
	failing := &recordActivity{typ: "failing", err: errors.New("disk full")}
	after := &recordActivity{typ: "after"}
	sibling := &recordActivity{typ: "sibling"}
	f := newFixture(t, failing, after, sibling)

	start := f.add(t, activity.TypeStart, nil)
	fail := f.add(t, "failing", nil)
	down := f.add(t, "after", nil)
	sib := f.add(t, "sibling", nil)
	second := f.add(t, activity.TypeStart, nil)
	f.connect(t, start, fail)
	f.connect(t, start, sib)
	f.connect(t, fail, down)

	err := f.engine.Run(context.Background())
	var opErr *activity.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if opErr.NodeID != fail {
		t.Errorf("expected failing node %s, got %s", fail, opErr.NodeID)
	}

	node, _ := f.store.GetNode(fail)
	if node.Status != domain.NodeStatusError || node.Error != "disk full" {
		t.Errorf("unexpected failing node state: %s %q", node.Status, node.Error)
	}
	if s := f.status(t, start); s != domain.NodeStatusSuccess {
		t.Errorf("start should keep success, got %s", s)
	}
	for _, id := range []string{down, sib, second} {
		if s := f.status(t, id); s != domain.NodeStatusIdle {
			t.Errorf("node %s should not run after failure, got %s", id, s)
		}
	}
	if len(after.Inputs()) != 0 || len(sibling.Inputs()) != 0 {
		t.Error("no activity should compute after failure")
	}

	events := f.log.Entries()
	last := events[len(events)-1]
	if !last.IsSystem() || last.Status != domain.EventStatusError || last.Message != "disk full" {
		t.Errorf("expected trailing system error event, got %+v", last)
	}

	record, _ := f.engine.LastRun()
	if record.Status != domain.RunStatusFailed || record.Error != "disk full" {
		t.Errorf("unexpected run record %+v", record)
	}
}

func TestRun_ResetsPreviousState(t *testing.T) {
	f := newFixture(t)
	start := f.add(t, activity.TypeStart, nil)
	orphan := f.add(t, activity.TypeEnd, nil)
	f.store.UpdateNode(orphan, graph.StatusUpdate(domain.NodeStatusError, nil, "old"))
	f.log.System(domain.EventStatusError, "stale")

	if err := f.engine.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	node, _ := f.store.GetNode(orphan)
	if node.Status != domain.NodeStatusIdle || node.Error != "" {
		t.Errorf("previous state should be reset, got %s %q", node.Status, node.Error)
	}
	for _, e := range f.log.Entries() {
		if e.Message == "stale" {
			t.Error("event log should be cleared at run start")
		}
	}
	if s := f.status(t, start); s != domain.NodeStatusSuccess {
		t.Errorf("expected success, got %s", s)
	}
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	block := &blockActivity{started: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, block)

	start := f.add(t, activity.TypeStart, nil)
	b := f.add(t, "block", nil)
	f.connect(t, start, b)

	done := make(chan error, 1)
	go func() {
		done <- f.engine.Run(context.Background())
	}()

	select {
	case <-block.started:
	case <-time.After(time.Second):
		t.Fatal("run did not start")
	}

	if !f.engine.IsRunning() {
		t.Error("engine should report running")
	}
	if err := f.engine.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}
	if _, err := f.engine.ExecuteNode(context.Background(), start, nil); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("ExecuteNode during run: expected ErrRunInProgress, got %v", err)
	}

	close(block.release)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not finish")
	}

	if f.engine.IsRunning() {
		t.Error("guard should be released after run")
	}
	if s := f.status(t, b); s != domain.NodeStatusSuccess {
		t.Errorf("expected success, got %s", s)
	}
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.add(t, activity.TypeStart, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.engine.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteNode_UnknownNode(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ExecuteNode(context.Background(), "missing", nil)
	if !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestExecuteNode_ReturnsOwnResult(t *testing.T) {
	f := newFixture(t)
	create := f.add(t, activity.TypeCreateFile, map[string]any{"fileName": "a.txt"})
	end := f.add(t, activity.TypeEnd, nil)
	f.connect(t, create, end)

	out, err := f.engine.ExecuteNode(context.Background(), create, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info, ok := out.(activity.FileInfo); !ok || info.FullName != "a.txt" {
		t.Errorf("unexpected result %v", out)
	}
	if s := f.status(t, end); s != domain.NodeStatusSuccess {
		t.Errorf("children should run, got %s", s)
	}
}
