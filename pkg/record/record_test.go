package record

import (
	"encoding/json"
	"testing"
)

func TestIDOf(t *testing.T) {
	tests := []struct {
		name   string
		rec    Record
		want   string
		wantOK bool
	}{
		{"string", Record{"id": "a1"}, "a1", true},
		{"json float", Record{"id": float64(7)}, "7", true},
		{"int", Record{"id": 42}, "42", true},
		{"json number", Record{"id": json.Number("19")}, "19", true},
		{"empty string", Record{"id": ""}, "", false},
		{"missing", Record{"name": "x"}, "", false},
		{"nil", Record{"id": nil}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IDOf(tt.rec, DefaultIDAttribute)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("IDOf() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Record{
		"id":   "1",
		"tags": []any{"a", "b"},
		"meta": map[string]any{"owner": "ann"},
	}
	cp := orig.Clone()

	cp["tags"].([]any)[0] = "z"
	cp["meta"].(map[string]any)["owner"] = "bob"
	cp["id"] = "2"

	if orig["tags"].([]any)[0] != "a" {
		t.Error("clone shares slice with original")
	}
	if orig["meta"].(map[string]any)["owner"] != "ann" {
		t.Error("clone shares nested map with original")
	}
	if orig.ID() != "1" {
		t.Errorf("original id changed to %q", orig.ID())
	}
}

func TestMergeOverwrites(t *testing.T) {
	r := Record{"id": "1", "name": "old", "age": 3}
	r.Merge(Record{"name": "new", "email": "x@example.com"})

	if r["name"] != "new" || r["age"] != 3 || r["email"] != "x@example.com" {
		t.Errorf("unexpected merge result: %v", r)
	}
}
