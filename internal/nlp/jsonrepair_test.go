package nlp

import (
	"encoding/json"
	"testing"
)

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"prose around object", `Sure, here you go: {"a": 1}. Anything else?`, `{"a": 1}`},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "}"}`, `{"a": "}"}`},
		{"unterminated", `{"a": 1`, `{"a": 1`},
		{"no object", `nothing here`, ``},
	}
	for _, tt := range tests {
		if got := firstJSONObject(tt.in); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestCompleteBraces(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing one brace", `{"a": 1`},
		{"missing nested braces", `{"a": {"b": 2`},
		{"unterminated string", `{"a": "oops`},
	}
	for _, tt := range tests {
		repaired := completeBraces(tt.in)
		var out map[string]any
		if err := json.Unmarshal([]byte(repaired), &out); err != nil {
			t.Errorf("%s: repaired form still unparseable: %v (%q)", tt.name, err, repaired)
		}
	}
}

func TestNormalizeQuotes(t *testing.T) {
	in := `{title: 'hello', tags: ['a', 'b'], n: 1,}`
	repaired := normalizeQuotes(in)

	var out map[string]any
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		t.Fatalf("normalized form unparseable: %v (%q)", err, repaired)
	}
	if out["title"] != "hello" {
		t.Errorf("expected title hello, got %v", out["title"])
	}
}
