package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func calcSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"operation": {Type: "string", Enum: []any{"add", "subtract"}},
			"a":         {Type: "number"},
			"b":         {Type: "number"},
		},
		Required: []string{"operation", "a", "b"},
	}
}

func TestSchema_Coerce(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		wantA   float64
		wantB   float64
		wantErr string
	}{
		{
			name:  "json numbers pass through",
			input: map[string]any{"operation": "add", "a": 5.0, "b": 3.0},
			wantA: 5,
			wantB: 3,
		},
		{
			name:  "numeric strings are converted",
			input: map[string]any{"operation": "add", "a": "5", "b": " 2.5 "},
			wantA: 5,
			wantB: 2.5,
		},
		{
			name:  "go integers are converted",
			input: map[string]any{"operation": "add", "a": 7, "b": int64(-2)},
			wantA: 7,
			wantB: -2,
		},
		{
			name:  "enum is not enforced",
			input: map[string]any{"operation": "mod", "a": 1.0, "b": 2.0},
			wantA: 1,
			wantB: 2,
		},
		{
			name:    "missing required field",
			input:   map[string]any{"operation": "add", "a": 1.0},
			wantErr: "b: required field is missing",
		},
		{
			name:    "null required field counts as missing",
			input:   map[string]any{"operation": "add", "a": nil, "b": 1.0},
			wantErr: "a: required field is missing",
		},
		{
			name:    "non-numeric string",
			input:   map[string]any{"operation": "add", "a": "five", "b": 1.0},
			wantErr: `a: expected number, got non-numeric string "five"`,
		},
		{
			name:    "boolean is not a number",
			input:   map[string]any{"operation": "add", "a": true, "b": 1.0},
			wantErr: "a: expected number, got boolean",
		},
		{
			name:  "prefixed integer strings are converted",
			input: map[string]any{"operation": "add", "a": "0x10", "b": "0b101"},
			wantA: 16,
			wantB: 5,
		},
		{
			name:    "signed hex string is rejected",
			input:   map[string]any{"operation": "add", "a": "-0x10", "b": 1.0},
			wantErr: `a: expected number, got non-numeric string "-0x10"`,
		},
		{
			name:    "digit separators are rejected",
			input:   map[string]any{"operation": "add", "a": "0x1_0", "b": 1.0},
			wantErr: "a: expected number",
		},
		{
			name:    "infinity string is rejected",
			input:   map[string]any{"operation": "add", "a": 1.0, "b": "Infinity"},
			wantErr: "b: expected number",
		},
		{
			name:    "non-finite string is rejected",
			input:   map[string]any{"operation": "add", "a": "NaN", "b": "Inf"},
			wantErr: "a: expected number",
		},
		{
			name:    "string field with number",
			input:   map[string]any{"operation": 1.0, "a": 1.0, "b": 1.0},
			wantErr: "operation: expected string, got number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := calcSchema().Coerce(tt.input)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
				}
				var verrs ValidationErrors
				if !errors.As(err, &verrs) {
					t.Errorf("error type = %T, want ValidationErrors", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			obj := out.(map[string]any)
			if obj["a"] != tt.wantA {
				t.Errorf("a = %v, want %v", obj["a"], tt.wantA)
			}
			if obj["b"] != tt.wantB {
				t.Errorf("b = %v, want %v", obj["b"], tt.wantB)
			}
		})
	}
}

func TestSchema_Coerce_NonObject(t *testing.T) {
	_, err := calcSchema().Coerce([]any{1.0})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "expected object, got array" {
		t.Errorf("error = %q", err)
	}
}

func TestSchema_Coerce_ReportsAllErrors(t *testing.T) {
	_, err := calcSchema().Coerce(map[string]any{"a": "x"})

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}

	// operation and b missing, a not numeric
	if len(verrs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(verrs), err)
	}
	if verrs[0].Path != "operation" || verrs[1].Path != "b" || verrs[2].Path != "a" {
		t.Errorf("unexpected error order: %v", err)
	}
}

func TestSchema_Coerce_Integer(t *testing.T) {
	s := &Schema{Type: "object", Properties: map[string]*Schema{"n": {Type: "integer"}}}

	out, err := s.Coerce(map[string]any{"n": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.(map[string]any)["n"]; got != int64(42) {
		t.Errorf("n = %v (%T), want int64 42", got, got)
	}

	if _, err := s.Coerce(map[string]any{"n": 1.5}); err == nil {
		t.Error("expected error for decimal integer")
	}
}

func TestSchema_Coerce_NestedPaths(t *testing.T) {
	s := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"tags": {Type: "array", Items: &Schema{Type: "string"}},
			"owner": {
				Type:       "object",
				Properties: map[string]*Schema{"name": {Type: "string"}},
				Required:   []string{"name"},
			},
		},
	}

	_, err := s.Coerce(map[string]any{
		"tags":  []any{"ok", 3.0},
		"owner": map[string]any{},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"owner.name: required field is missing", "tags[1]: expected string"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to contain %q", err, want)
		}
	}
}

func TestSchema_Coerce_DropsOptionalNull(t *testing.T) {
	s := &Schema{Type: "object", Properties: map[string]*Schema{"limit": {Type: "number"}}}

	out, err := s.Coerce(map[string]any{"limit": nil, "extra": "kept"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := out.(map[string]any)
	if _, ok := obj["limit"]; ok {
		t.Error("expected null optional field to be dropped")
	}
	if obj["extra"] != "kept" {
		t.Errorf("extra = %v, want %q", obj["extra"], "kept")
	}
}

func TestSchema_Validate(t *testing.T) {
	if err := calcSchema().Validate(json.RawMessage(`{"operation":"add","a":1,"b":"2"}`)); err != nil {
		t.Errorf("expected valid, got %v", err)
	}

	err := calcSchema().Validate(json.RawMessage(`{invalid`))
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("error = %v, want invalid JSON", err)
	}
}
