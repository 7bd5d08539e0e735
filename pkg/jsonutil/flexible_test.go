package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"emp-42"`, "emp-42"},
		{"integer", `42`, "42"},
		{"float", `42.5`, "42.5"},
		{"boolean", `true`, "true"},
		{"null", `null`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleStringValue(json.RawMessage(tt.raw))
			if got != tt.want {
				t.Errorf("FlexibleStringValue(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFlexibleList_Array(t *testing.T) {
	items := FlexibleList(json.RawMessage(`[{"id": "a"}, {"id": "b"}]`))
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if string(items[0]) != `{"id": "a"}` {
		t.Errorf("unexpected first item: %s", items[0])
	}
}

func TestFlexibleList_ObjectOfValues(t *testing.T) {
	items := FlexibleList(json.RawMessage(`{"x": {"id": "a"}, "y": {"id": "b"}}`))
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestFlexibleList_NullAndScalar(t *testing.T) {
	if items := FlexibleList(json.RawMessage(`null`)); len(items) != 0 {
		t.Errorf("expected empty slice for null, got %d items", len(items))
	}
	if items := FlexibleList(nil); len(items) != 0 {
		t.Errorf("expected empty slice for nil, got %d items", len(items))
	}
	if items := FlexibleList(json.RawMessage(`"scalar"`)); len(items) != 0 {
		t.Errorf("expected empty slice for scalar, got %d items", len(items))
	}
}
