package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shaiso/Flowcraft/internal/domain"
)

func TestAddNode_Defaults(t *testing.T) {
	s := NewStore()

	id := s.AddNode("createFile", domain.Position{X: 10, Y: 20})
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	node, ok := s.GetNode(id)
	if !ok {
		t.Fatal("node should exist")
	}
	if node.ActivityType != "createFile" {
		t.Errorf("expected createFile, got %s", node.ActivityType)
	}
	if !node.Enabled {
		t.Error("new node should be enabled")
	}
	if node.Status != domain.NodeStatusIdle {
		t.Errorf("expected idle, got %s", node.Status)
	}
	if node.Config == nil || len(node.Config) != 0 {
		t.Errorf("expected empty config, got %v", node.Config)
	}
	if node.Position.X != 10 || node.Position.Y != 20 {
		t.Errorf("unexpected position %+v", node.Position)
	}

	other := s.AddNode("end", domain.Position{})
	if other == id {
		t.Error("ids must be unique")
	}
}

func TestUpdateNode_MergesConfig(t *testing.T) {
	s := NewStore()
	id := s.AddNode("createFile", domain.Position{})

	s.UpdateNode(id, NodeUpdate{Config: map[string]any{"fileName": "a.txt", "path": "/tmp"}})
	s.UpdateNode(id, NodeUpdate{Config: map[string]any{"fileName": "b.txt"}})

	node, _ := s.GetNode(id)
	if node.Config["fileName"] != "b.txt" {
		t.Errorf("expected b.txt, got %v", node.Config["fileName"])
	}
	if node.Config["path"] != "/tmp" {
		t.Errorf("path should survive shallow merge, got %v", node.Config["path"])
	}

	s.UpdateNode(id, StatusUpdate(domain.NodeStatusError, nil, "boom"))
	node, _ = s.GetNode(id)
	if node.Status != domain.NodeStatusError || node.Error != "boom" {
		t.Errorf("unexpected status update: %s %q", node.Status, node.Error)
	}

	// Отсутствующий узел — no-op
	s.UpdateNode("missing", NodeUpdate{Config: map[string]any{"x": 1}})
}

func TestUpdateNode_ReturnsCopy(t *testing.T) {
	s := NewStore()
	id := s.AddNode("start", domain.Position{})

	node, _ := s.GetNode(id)
	node.Config["name"] = "mutated"

	fresh, _ := s.GetNode(id)
	if _, ok := fresh.Config["name"]; ok {
		t.Error("GetNode must return a copy")
	}
}

func TestUpdateNode_ManualEditDropsMapping(t *testing.T) {
	s := NewStore()
	src := s.AddNode("createFile", domain.Position{})
	dst := s.AddNode("writeFile", domain.Position{})

	m := domain.FieldMapping{TargetField: "path", SourceNodeID: src, SourceNodeName: "Create", SourceField: "path"}
	if !s.SetFieldMapping(dst, m, "/data") {
		t.Fatal("mapping should be set")
	}

	node, _ := s.GetNode(dst)
	if node.Config["path"] != "/data" {
		t.Errorf("mapped value should be written, got %v", node.Config["path"])
	}
	if _, ok := node.Mappings["path"]; !ok {
		t.Fatal("mapping should be recorded")
	}

	// Правка другого поля не трогает связь
	s.UpdateNode(dst, NodeUpdate{Config: map[string]any{"content": "x"}})
	node, _ = s.GetNode(dst)
	if _, ok := node.Mappings["path"]; !ok {
		t.Error("mapping should survive edits of other fields")
	}

	s.UpdateNode(dst, NodeUpdate{Config: map[string]any{"path": "/manual"}})
	node, _ = s.GetNode(dst)
	if _, ok := node.Mappings["path"]; ok {
		t.Error("manual edit should drop mapping")
	}
}

func TestUpdateNode_ActiveKeyTogglesEnabled(t *testing.T) {
	s := NewStore()
	id := s.AddNode("end", domain.Position{})

	s.UpdateNode(id, NodeUpdate{Config: map[string]any{domain.LegacyActiveKey: false, "name": "End"}})
	node, _ := s.GetNode(id)
	if node.Enabled {
		t.Error("config.active=false should disable node")
	}
	if _, ok := node.Config[domain.LegacyActiveKey]; ok {
		t.Errorf("active key should not be stored in config: %v", node.Config)
	}
	if node.Config["name"] != "End" {
		t.Errorf("other keys should be merged, got %v", node.Config)
	}

	s.UpdateNode(id, NodeUpdate{Config: map[string]any{domain.LegacyActiveKey: true}})
	node, _ = s.GetNode(id)
	if !node.Enabled {
		t.Error("config.active=true should enable node")
	}

	// Небулево значение — обычный ключ конфигурации
	s.UpdateNode(id, NodeUpdate{Config: map[string]any{domain.LegacyActiveKey: "no"}})
	node, _ = s.GetNode(id)
	if !node.Enabled || node.Config[domain.LegacyActiveKey] != "no" {
		t.Errorf("non-bool active should be kept as config, got enabled=%v config=%v", node.Enabled, node.Config)
	}
}

func TestRemoveNode_CascadesConnections(t *testing.T) {
	s := NewStore()
	a := s.AddNode("start", domain.Position{})
	b := s.AddNode("createFile", domain.Position{})
	c := s.AddNode("end", domain.Position{})
	d := s.AddNode("end", domain.Position{})

	ab, _ := s.AddConnection(a, b)
	bc, _ := s.AddConnection(b, c)
	ad, _ := s.AddConnection(a, d)
	cd, _ := s.AddConnection(c, d)

	var removed []string
	s.OnNodeRemoved(func(id string) { removed = append(removed, id) })

	s.RemoveNode(b)

	if _, ok := s.GetNode(b); ok {
		t.Error("node b should be removed")
	}
	if s.ConnectionCount() != 2 {
		t.Fatalf("expected 2 connections, got %d", s.ConnectionCount())
	}

	survivors := s.Connections()
	if survivors[0].ID != ad || survivors[1].ID != cd {
		t.Errorf("unexpected survivors: %+v", survivors)
	}
	for _, conn := range survivors {
		if conn.ID == ab || conn.ID == bc {
			t.Errorf("connection %s should be removed", conn.ID)
		}
	}

	if len(removed) != 1 || removed[0] != b {
		t.Errorf("listener should be notified once with %s, got %v", b, removed)
	}

	// Повторное удаление — без уведомления
	s.RemoveNode(b)
	if len(removed) != 1 {
		t.Error("removing absent node should not notify")
	}
}

func TestAddConnection_Rejections(t *testing.T) {
	s := NewStore()
	a := s.AddNode("start", domain.Position{})
	b := s.AddNode("createFile", domain.Position{})
	c := s.AddNode("end", domain.Position{})

	if _, ok := s.AddConnection(a, a); ok {
		t.Error("self-loop should be rejected")
	}
	if _, ok := s.AddConnection(a, "missing"); ok {
		t.Error("unknown target should be rejected")
	}
	if _, ok := s.AddConnection("missing", a); ok {
		t.Error("unknown source should be rejected")
	}

	if _, ok := s.AddConnection(a, b, WithHandles("out", "in")); !ok {
		t.Fatal("a→b should be accepted")
	}
	if _, ok := s.AddConnection(a, b); ok {
		t.Error("duplicate pair should be rejected")
	}
	if _, ok := s.AddConnection(b, a); ok {
		t.Error("reverse pair should be rejected")
	}
	if s.ConnectionCount() != 1 {
		t.Errorf("expected exactly 1 connection, got %d", s.ConnectionCount())
	}

	conn := s.Connections()[0]
	if conn.SourceHandle != "out" || conn.TargetHandle != "in" {
		t.Errorf("handles not stored: %+v", conn)
	}

	// Длинный цикл a→b→c→a
	if _, ok := s.AddConnection(b, c); !ok {
		t.Fatal("b→c should be accepted")
	}
	if _, ok := s.AddConnection(c, a); ok {
		t.Error("edge closing a 3-cycle should be rejected")
	}
	if s.ConnectionCount() != 2 {
		t.Errorf("expected 2 connections, got %d", s.ConnectionCount())
	}
}

func TestAddConnection_DiamondAllowed(t *testing.T) {
	s := NewStore()
	a := s.AddNode("start", domain.Position{})
	b := s.AddNode("createFile", domain.Position{})
	c := s.AddNode("end", domain.Position{})

	for _, pair := range [][2]string{{a, c}, {b, c}, {a, b}} {
		if _, ok := s.AddConnection(pair[0], pair[1]); !ok {
			t.Errorf("%v should be accepted", pair)
		}
	}
}

func TestConnections_Order(t *testing.T) {
	s := NewStore()
	a := s.AddNode("start", domain.Position{})
	b := s.AddNode("end", domain.Position{})
	c := s.AddNode("end", domain.Position{})

	s.AddConnection(a, c)
	s.AddConnection(a, b)

	out := s.OutgoingConnections(a)
	if len(out) != 2 || out[0].TargetID != c || out[1].TargetID != b {
		t.Errorf("outgoing should follow creation order, got %+v", out)
	}

	in := s.IncomingConnections(b)
	if len(in) != 1 || in[0].SourceID != a {
		t.Errorf("unexpected incoming: %+v", in)
	}

	first := s.Connections()[0].ID
	s.RemoveConnection(first)
	if s.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection after remove, got %d", s.ConnectionCount())
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	a := s.AddNode("start", domain.Position{})
	b := s.AddNode("end", domain.Position{})
	s.AddConnection(a, b)

	var removed []string
	s.OnNodeRemoved(func(id string) { removed = append(removed, id) })

	s.Clear()

	if s.NodeCount() != 0 || s.ConnectionCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes, %d connections", s.NodeCount(), s.ConnectionCount())
	}
	if diff := cmp.Diff([]string{a, b}, removed); diff != "" {
		t.Errorf("removed listeners mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NotifiesRemovedNodes(t *testing.T) {
	s := NewStore()
	a := s.AddNode("start", domain.Position{})
	b := s.AddNode("end", domain.Position{})

	var removed []string
	s.OnNodeRemoved(func(id string) { removed = append(removed, id) })

	keep, _ := s.GetNode(b)
	if err := s.Load(domain.Document{Nodes: []domain.Node{keep}}); err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff([]string{a}, removed); diff != "" {
		t.Errorf("removed listeners mismatch (-want +got):\n%s", diff)
	}
}

func TestDropMappingsFrom(t *testing.T) {
	s := NewStore()
	src := s.AddNode("createFile", domain.Position{})
	dst := s.AddNode("writeFile", domain.Position{})
	s.SetFieldMapping(dst, domain.FieldMapping{TargetField: "path", SourceNodeID: src, SourceField: "path"}, "/data")

	s.DropMappingsFrom(src)

	node, _ := s.GetNode(dst)
	if len(node.Mappings) != 0 {
		t.Errorf("expected no mappings, got %+v", node.Mappings)
	}
	if node.Config["path"] != "/data" {
		t.Errorf("value should stay, got %v", node.Config["path"])
	}
}

func TestResetRunState(t *testing.T) {
	s := NewStore()
	id := s.AddNode("start", domain.Position{})
	s.UpdateNode(id, StatusUpdate(domain.NodeStatusSuccess, "out", ""))

	s.ResetRunState()

	node, _ := s.GetNode(id)
	if node.Status != domain.NodeStatusIdle || node.Output != nil || node.Error != "" {
		t.Errorf("node not reset: %+v", node)
	}
}

func TestFreezeStructure_BlocksStructuralEdits(t *testing.T) {
	s := NewStore()
	release := s.FreezeStructure()

	added := make(chan string)
	go func() {
		added <- s.AddNode("end", domain.Position{})
	}()

	select {
	case <-added:
		t.Fatal("AddNode should wait while structure is frozen")
	case <-time.After(50 * time.Millisecond):
	}

	// Неструктурные правки проходят
	s.ResetRunState()

	release()
	release() // повторный вызов безопасен

	select {
	case id := <-added:
		if _, ok := s.GetNode(id); !ok {
			t.Error("node should be added after release")
		}
	case <-time.After(time.Second):
		t.Fatal("AddNode did not proceed after release")
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	s := NewStore()
	a := s.AddNode("start", domain.Position{X: 1, Y: 2})
	b := s.AddNode("createFile", domain.Position{X: 3, Y: 4})
	c := s.AddNode("end", domain.Position{})

	s.UpdateNode(b, NodeUpdate{Config: map[string]any{"fileName": "report.txt", "overwrite": true}})
	s.UpdateNode(b, StatusUpdate(domain.NodeStatusSuccess, map[string]any{"fullName": "report.txt", "length": float64(3)}, ""))
	s.UpdateNode(c, StatusUpdate(domain.NodeStatusError, nil, "failed"))
	disabled := false
	s.UpdateNode(c, NodeUpdate{Enabled: &disabled})
	s.SetFieldMapping(c, domain.FieldMapping{TargetField: "path", SourceNodeID: b, SourceNodeName: "Create", SourceField: "fileName"}, "report.txt")

	s.AddConnection(a, b, WithHandles("out", "in"))
	s.AddConnection(b, c)

	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loaded := NewStore()
	if err := loaded.LoadJSON(data); err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff(s.Document(), loaded.Document(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSON_Defaults(t *testing.T) {
	data := []byte(`{
		"nodes": [
			{"id": "n1", "activityType": "start", "config": {"active": false}},
			{"id": "n2", "activityType": "end", "config": {}}
		],
		"connections": [{"id": "c1", "sourceId": "n1", "targetId": "n2"}]
	}`)

	s := NewStore()
	if err := s.LoadJSON(data); err != nil {
		t.Fatalf("load: %v", err)
	}

	n1, _ := s.GetNode("n1")
	if n1.Enabled {
		t.Error("legacy config.active=false should disable the node")
	}
	if _, ok := n1.Config["active"]; ok {
		t.Error("legacy key should be removed from config")
	}
	if n1.Status != domain.NodeStatusIdle {
		t.Errorf("expected idle, got %s", n1.Status)
	}

	n2, _ := s.GetNode("n2")
	if !n2.Enabled {
		t.Error("node without enabled flag should default to enabled")
	}
}

func TestLoad_InvalidDocuments(t *testing.T) {
	node := func(id string) domain.Node {
		return domain.Node{ID: id, ActivityType: "end", Enabled: true}
	}
	conn := func(id, src, dst string) domain.Connection {
		return domain.Connection{ID: id, SourceID: src, TargetID: dst}
	}

	tests := []struct {
		name    string
		doc     domain.Document
		wantErr error
	}{
		{
			name:    "duplicate node",
			doc:     domain.Document{Nodes: []domain.Node{node("a"), node("a")}},
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "unknown target",
			doc:     domain.Document{Nodes: []domain.Node{node("a")}, Connections: []domain.Connection{conn("c", "a", "x")}},
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "self loop",
			doc:     domain.Document{Nodes: []domain.Node{node("a")}, Connections: []domain.Connection{conn("c", "a", "a")}},
			wantErr: ErrInvalidDocument,
		},
		{
			name: "cycle",
			doc: domain.Document{
				Nodes:       []domain.Node{node("a"), node("b"), node("c")},
				Connections: []domain.Connection{conn("1", "a", "b"), conn("2", "b", "c"), conn("3", "c", "a")},
			},
			wantErr: ErrCycleDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			keep := s.AddNode("start", domain.Position{})

			err := s.Load(tt.doc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if _, ok := s.GetNode(keep); !ok {
				t.Error("failed load must not replace the graph")
			}
		})
	}
}
