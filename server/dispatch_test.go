package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type greetInput struct {
	Name string `json:"name" jsonschema:"required"`
}

type sumInput struct {
	A float64 `json:"a" jsonschema:"required"`
	B float64 `json:"b" jsonschema:"required"`
}

func newDispatchServer(t *testing.T) *Server {
	t.Helper()

	srv := New(Info{Name: "test", Version: "1.0.0"})
	srv.Tool("greet").Handler(func(in greetInput) (string, error) {
		return "hello " + in.Name, nil
	})
	srv.Tool("sum").Handler(func(in sumInput) (float64, error) {
		return in.A + in.B, nil
	})
	srv.Tool("fail").Handler(func(in struct{}) (string, error) {
		return "", errors.New("something broke")
	})
	srv.Tool("panic").Handler(func(in struct{}) (string, error) {
		panic("boom")
	})

	if err := srv.Err(); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	return srv
}

func TestServer_Call(t *testing.T) {
	srv := newDispatchServer(t)

	tests := []struct {
		name    string
		tool    string
		args    string
		want    string
		isError bool
	}{
		{"success", "greet", `{"name":"gopher"}`, "hello gopher", false},
		{"extra fields are ignored", "greet", `{"name":"gopher","extra":1}`, "hello gopher", false},
		{"json result", "sum", `{"a":1,"b":"2"}`, "3", false},
		{"absent arguments", "greet", ``, "Error: invalid arguments: expected an object, got none", true},
		{"null arguments", "greet", `null`, "Error: invalid arguments: expected an object, got none", true},
		{"array arguments", "greet", `[1,2]`, "Error: invalid arguments: expected an object, got array", true},
		{"string arguments", "greet", `"hi"`, "Error: invalid arguments: expected an object, got string", true},
		{"number arguments", "greet", `42`, "Error: invalid arguments: expected an object, got number", true},
		{"missing required field", "greet", `{}`, "Error: invalid arguments: name: required field is missing", true},
		{"null required field", "greet", `{"name":null}`, "Error: invalid arguments: name: required field is missing", true},
		{"wrong type", "greet", `{"name":7}`, "Error: invalid arguments: name: expected string, got number", true},
		{"non-numeric string", "sum", `{"a":"x","b":1}`, `Error: invalid arguments: a: expected number, got non-numeric string "x"`, true},
		{"unknown tool", "nope", `{}`, "Error: unknown tool: nope", true},
		{"handler error", "fail", `{}`, "Error: something broke", true},
		{"handler panic", "panic", `{}`, "Error: tool panicked: boom", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := srv.Call(context.Background(), tt.tool, json.RawMessage(tt.args))

			if result == nil {
				t.Fatal("expected result, got nil")
			}
			if len(result.Content) != 1 {
				t.Fatalf("expected exactly 1 content entry, got %d", len(result.Content))
			}
			if result.Content[0].Type != ContentTypeText {
				t.Errorf("content type = %q, want %q", result.Content[0].Type, ContentTypeText)
			}
			if result.IsError != tt.isError {
				t.Errorf("IsError = %v, want %v", result.IsError, tt.isError)
			}
			if got := result.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_Call_ArgumentsCheckedBeforeLookup(t *testing.T) {
	srv := New(Info{Name: "test", Version: "1.0.0"})

	result := srv.Call(context.Background(), "missing", nil)

	if !result.IsError {
		t.Fatal("expected error result")
	}
	if got := result.Text(); got != "Error: invalid arguments: expected an object, got none" {
		t.Errorf("text = %q", got)
	}
}

func TestServer_Call_Stateless(t *testing.T) {
	srv := newDispatchServer(t)
	args := json.RawMessage(`{"name":"a"}`)

	first := srv.Call(context.Background(), "greet", args)
	srv.Call(context.Background(), "fail", json.RawMessage(`{}`))
	second := srv.Call(context.Background(), "greet", args)

	if first.Text() != second.Text() || first.IsError != second.IsError {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestCallResult_JSON(t *testing.T) {
	t.Run("success omits isError", func(t *testing.T) {
		data, err := json.Marshal(TextResult("ok"))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		want := `{"content":[{"type":"text","text":"ok"}]}`
		if string(data) != want {
			t.Errorf("JSON = %s, want %s", data, want)
		}
	})

	t.Run("error sets isError", func(t *testing.T) {
		data, err := json.Marshal(ErrorResult(errors.New("bad")))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		want := `{"content":[{"type":"text","text":"Error: bad"}],"isError":true}`
		if string(data) != want {
			t.Errorf("JSON = %s, want %s", data, want)
		}
	})

	t.Run("Failed follows isError", func(t *testing.T) {
		var r *CallResult
		if r.Failed() || TextResult("ok").Failed() {
			t.Error("expected nil and text results not to fail")
		}
		if !ErrorResult(errors.New("bad")).Failed() {
			t.Error("expected error result to fail")
		}
	})

	t.Run("Text on empty result", func(t *testing.T) {
		var r *CallResult
		if r.Text() != "" {
			t.Error("expected empty text for nil result")
		}
	})
}
