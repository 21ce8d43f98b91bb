package domain

import (
	"encoding/json"
	"testing"
)

func TestNode_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantEnabled bool
		wantStatus  NodeStatus
	}{
		{
			name:        "defaults",
			data:        `{"id":"n1","activityType":"start"}`,
			wantEnabled: true,
			wantStatus:  NodeStatusIdle,
		},
		{
			name:        "explicit disabled",
			data:        `{"id":"n1","activityType":"start","enabled":false,"status":"success"}`,
			wantEnabled: false,
			wantStatus:  NodeStatusSuccess,
		},
		{
			name:        "legacy active flag",
			data:        `{"id":"n1","activityType":"start","config":{"active":false}}`,
			wantEnabled: false,
			wantStatus:  NodeStatusIdle,
		},
		{
			name:        "enabled wins over legacy flag",
			data:        `{"id":"n1","activityType":"start","enabled":true,"config":{"active":false}}`,
			wantEnabled: true,
			wantStatus:  NodeStatusIdle,
		},
		{
			name:        "unknown status",
			data:        `{"id":"n1","activityType":"start","status":"pending"}`,
			wantEnabled: true,
			wantStatus:  NodeStatusIdle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Node
			if err := json.Unmarshal([]byte(tt.data), &n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Enabled != tt.wantEnabled {
				t.Errorf("Enabled = %v, want %v", n.Enabled, tt.wantEnabled)
			}
			if n.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", n.Status, tt.wantStatus)
			}
			if n.Config == nil {
				t.Error("Config should never be nil")
			}
			if _, ok := n.Config[LegacyActiveKey]; ok {
				t.Error("legacy key should be removed")
			}
		})
	}
}

func TestNode_Name(t *testing.T) {
	n := Node{Config: map[string]any{NameKey: "Create report"}}
	if n.Name() != "Create report" {
		t.Errorf("unexpected name %q", n.Name())
	}

	n = Node{Config: map[string]any{NameKey: 42}}
	if n.Name() != "" {
		t.Errorf("non-string name should be ignored, got %q", n.Name())
	}
}

func TestNode_Clone(t *testing.T) {
	n := Node{
		ID:       "n1",
		Config:   map[string]any{"a": 1},
		Mappings: map[string]FieldMapping{"a": {TargetField: "a"}},
	}

	c := n.Clone()
	c.Config["a"] = 2
	delete(c.Mappings, "a")

	if n.Config["a"] != 1 {
		t.Error("clone should not share config")
	}
	if _, ok := n.Mappings["a"]; !ok {
		t.Error("clone should not share mappings")
	}
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		ref       string
		wantName  string
		wantField string
		wantErr   bool
	}{
		{ref: "Create.path", wantName: "Create", wantField: "path"},
		{ref: "v1.2.length", wantName: "v1.2", wantField: "length"},
		{ref: "nodot", wantErr: true},
		{ref: ".field", wantErr: true},
		{ref: "name.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			name, field, err := ParseReference(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.wantName || field != tt.wantField {
				t.Errorf("got (%q, %q), want (%q, %q)", name, field, tt.wantName, tt.wantField)
			}
		})
	}

	m := FieldMapping{SourceNodeName: "Create", SourceField: "path"}
	if m.Reference() != "Create.path" {
		t.Errorf("unexpected reference %q", m.Reference())
	}
}

func TestRunRecord_Lifecycle(t *testing.T) {
	r := NewRunRecord()
	if r.Status != RunStatusRunning || r.IsFinished() {
		t.Fatalf("new run should be running, got %s", r.Status)
	}
	if r.Duration() != 0 {
		t.Error("unfinished run should have zero duration")
	}

	r.MarkFailed("boom")
	if !r.IsFinished() || r.Status != RunStatusFailed || r.Error != "boom" {
		t.Errorf("unexpected run state: %+v", r)
	}
	if r.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}
}
