package tools_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-server/schema"
	"github.com/felixgeelhaar/mcp-server/server"
	"github.com/felixgeelhaar/mcp-server/tools"
)

func newServer(t *testing.T) *server.Server {
	t.Helper()

	srv := server.New(server.Info{Name: "mcp-server", Version: "1.0.0"})
	if err := tools.Register(srv); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return srv
}

func call(t *testing.T, srv *server.Server, name, args string) *server.CallResult {
	t.Helper()

	var raw json.RawMessage
	if args != "" {
		raw = json.RawMessage(args)
	}
	return srv.Call(context.Background(), name, raw)
}

func TestRegister(t *testing.T) {
	srv := newServer(t)

	list := srv.Tools()
	want := []string{tools.NameEcho, tools.NameUppercase, tools.NameCalculate}
	if len(list) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(list))
	}

	for i, name := range want {
		tool := list[i]
		if tool.Name != name {
			t.Errorf("tools[%d] = %q, want %q", i, tool.Name, name)
		}
		if tool.Description == "" {
			t.Errorf("%s: expected description", name)
		}
		ann := tool.Annotations
		if ann == nil || ann.ReadOnlyHint == nil || !*ann.ReadOnlyHint {
			t.Errorf("%s: expected read-only annotation", name)
		}
	}

	t.Run("registering twice fails", func(t *testing.T) {
		if err := tools.Register(srv); err == nil {
			t.Error("expected duplicate registration error")
		}
	})
}

func TestSchemas(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		tool     string
		required []string
		types    map[string]string
	}{
		{tools.NameEcho, []string{"message"}, map[string]string{"message": "string"}},
		{tools.NameUppercase, []string{"text"}, map[string]string{"text": "string"}},
		{tools.NameCalculate, []string{"operation", "a", "b"}, map[string]string{
			"operation": "string", "a": "number", "b": "number",
		}},
	}

	for i, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			s := srv.Tools()[i].InputSchema.(*schema.Schema)

			if s.Type != "object" {
				t.Errorf("type = %q, want object", s.Type)
			}
			if fmt.Sprint(s.Required) != fmt.Sprint(tt.required) {
				t.Errorf("required = %v, want %v", s.Required, tt.required)
			}
			for field, typ := range tt.types {
				prop, ok := s.Properties[field]
				if !ok {
					t.Errorf("missing property %q", field)
					continue
				}
				if prop.Type != typ {
					t.Errorf("%s type = %q, want %q", field, prop.Type, typ)
				}
				if prop.Description == "" {
					t.Errorf("%s: expected description", field)
				}
			}
		})
	}

	t.Run("calculate advertises operations", func(t *testing.T) {
		s := srv.Tools()[2].InputSchema.(*schema.Schema)
		got := fmt.Sprint(s.Properties["operation"].Enum)
		if got != "[add subtract multiply divide]" {
			t.Errorf("enum = %s", got)
		}
	})
}

func TestDispatch(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name    string
		tool    string
		args    string
		want    string
		isError bool
	}{
		// echo
		{"echo", "echo", `{"message":"Hello, World!"}`, "Hello, World!", false},
		{"echo empty string", "echo", `{"message":""}`, "", false},
		{"echo preserves whitespace", "echo", `{"message":"  a\tb\n"}`, "  a\tb\n", false},
		{"echo missing message", "echo", `{}`, "Error: invalid arguments: message: required field is missing", true},
		{"echo wrong type", "echo", `{"message":42}`, "Error: invalid arguments: message: expected string, got number", true},
		{"echo null arguments", "echo", `null`, "Error: invalid arguments: expected an object, got none", true},
		{"echo absent arguments", "echo", ``, "Error: invalid arguments: expected an object, got none", true},

		// uppercase
		{"uppercase", "uppercase", `{"text":"hello world"}`, "HELLO WORLD", false},
		{"uppercase sharp s", "uppercase", `{"text":"straße"}`, "STRASSE", false},
		{"uppercase dotless i is not tailored", "uppercase", `{"text":"istanbul"}`, "ISTANBUL", false},
		{"uppercase greek", "uppercase", `{"text":"αβγ"}`, "ΑΒΓ", false},
		{"uppercase missing text", "uppercase", `{}`, "Error: invalid arguments: text: required field is missing", true},
		{"uppercase wrong type", "uppercase", `{"text":["a"]}`, "Error: invalid arguments: text: expected string, got array", true},

		// calculate
		{"add", "calculate", `{"operation":"add","a":5,"b":3}`, "Result: 8", false},
		{"subtract", "calculate", `{"operation":"subtract","a":5,"b":8}`, "Result: -3", false},
		{"multiply", "calculate", `{"operation":"multiply","a":2.5,"b":4}`, "Result: 10", false},
		{"divide", "calculate", `{"operation":"divide","a":10,"b":2}`, "Result: 5", false},
		{"divide fraction", "calculate", `{"operation":"divide","a":1,"b":3}`, "Result: 0.3333333333333333", false},
		{"float sum", "calculate", `{"operation":"add","a":0.1,"b":0.2}`, "Result: 0.30000000000000004", false},
		{"numeric strings", "calculate", `{"operation":"add","a":"5","b":" 2.5 "}`, "Result: 7.5", false},
		{"negative zero", "calculate", `{"operation":"multiply","a":-1,"b":0}`, "Result: 0", false},
		{"divide by zero", "calculate", `{"operation":"divide","a":1,"b":0}`, "Error: division by zero is not allowed", true},
		{"divide by zero string", "calculate", `{"operation":"divide","a":1,"b":"0"}`, "Error: division by zero is not allowed", true},
		{"unknown operation", "calculate", `{"operation":"mod","a":1,"b":2}`, "Error: unknown operation: mod", true},
		{"non-numeric a", "calculate", `{"operation":"add","a":"abc","b":1}`, `Error: invalid arguments: a: expected number, got non-numeric string "abc"`, true},
		{"boolean b", "calculate", `{"operation":"add","a":1,"b":true}`, "Error: invalid arguments: b: expected number, got boolean", true},
		{"missing b", "calculate", `{"operation":"add","a":1}`, "Error: invalid arguments: b: required field is missing", true},
		{"missing everything", "calculate", `{}`, "Error: invalid arguments: operation: required field is missing; a: required field is missing; b: required field is missing", true},

		// unknown tool
		{"unknown tool", "nope", `{}`, "Error: unknown tool: nope", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, srv, tt.tool, tt.args)

			if len(result.Content) != 1 || result.Content[0].Type != "text" {
				t.Fatalf("content = %+v, want one text entry", result.Content)
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

func TestCalculate_Total(t *testing.T) {
	srv := newServer(t)

	values := []string{"0", "-0", "1", "-1", "0.5", "1e308", "-1e308", "5e-324", `"7"`}
	ops := []string{"add", "subtract", "multiply", "divide", "pow"}

	for _, op := range ops {
		for _, a := range values {
			for _, b := range values {
				args := fmt.Sprintf(`{"operation":%q,"a":%s,"b":%s}`, op, a, b)

				first := call(t, srv, "calculate", args)
				second := call(t, srv, "calculate", args)

				if first.Text() != second.Text() || first.IsError != second.IsError {
					t.Fatalf("%s: not deterministic: %q vs %q", args, first.Text(), second.Text())
				}
				if !first.IsError && !strings.HasPrefix(first.Text(), "Result: ") {
					t.Errorf("%s: text = %q", args, first.Text())
				}
				if strings.Contains(first.Text(), "NaN") {
					t.Errorf("%s: produced NaN", args)
				}
			}
		}
	}
}
