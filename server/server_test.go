package server

import (
	"errors"
	"testing"
)

func TestNewServer(t *testing.T) {
	t.Run("creates server with info", func(t *testing.T) {
		srv := New(Info{
			Name:         "test-server",
			Version:      "1.0.0",
			Capabilities: Capabilities{Tools: true},
		})

		info := srv.Info()
		if info.Name != "test-server" {
			t.Errorf("Name = %q, want %q", info.Name, "test-server")
		}
		if info.Version != "1.0.0" {
			t.Errorf("Version = %q, want %q", info.Version, "1.0.0")
		}
		if !info.Capabilities.Tools {
			t.Error("expected Tools capability to be true")
		}
	})

	t.Run("applies functional options", func(t *testing.T) {
		called := false
		opt := func(s *Server) {
			called = true
		}

		New(Info{Name: "test", Version: "1.0.0"}, opt)

		if !called {
			t.Error("expected option to be called")
		}
	})
}

func TestServer_Tools(t *testing.T) {
	type Input struct {
		Value string `json:"value"`
	}

	t.Run("lists tools in registration order", func(t *testing.T) {
		srv := New(Info{Name: "test", Version: "1.0.0"})

		for _, name := range []string{"zeta", "alpha", "mid"} {
			srv.Tool(name).Handler(func(input Input) (string, error) {
				return input.Value, nil
			})
		}

		tools := srv.Tools()
		if len(tools) != 3 {
			t.Fatalf("expected 3 tools, got %d", len(tools))
		}
		for i, want := range []string{"zeta", "alpha", "mid"} {
			if tools[i].Name != want {
				t.Errorf("tools[%d] = %q, want %q", i, tools[i].Name, want)
			}
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		srv := New(Info{Name: "test", Version: "1.0.0"})

		srv.Tool("echo").Handler(func(input Input) (string, error) { return "first", nil })
		b := srv.Tool("echo").Handler(func(input Input) (string, error) { return "second", nil })

		if !errors.Is(b.Err(), ErrDuplicateTool) {
			t.Errorf("builder error = %v, want ErrDuplicateTool", b.Err())
		}
		if !errors.Is(srv.Err(), ErrDuplicateTool) {
			t.Errorf("server error = %v, want ErrDuplicateTool", srv.Err())
		}
		if len(srv.Tools()) != 1 {
			t.Errorf("expected 1 tool, got %d", len(srv.Tools()))
		}
	})

	t.Run("no registration errors by default", func(t *testing.T) {
		srv := New(Info{Name: "test", Version: "1.0.0"})
		if err := srv.Err(); err != nil {
			t.Errorf("Err() = %v, want nil", err)
		}
	})
}

func TestServer_Manifest(t *testing.T) {
	srv := New(Info{
		Name:    "manifest-test",
		Version: "2.0.0",
		Capabilities: Capabilities{
			Tools: true,
		},
	})

	manifest := srv.Manifest()

	if manifest.Name != "manifest-test" {
		t.Errorf("Name = %q, want %q", manifest.Name, "manifest-test")
	}
	if manifest.Version != "2.0.0" {
		t.Errorf("Version = %q, want %q", manifest.Version, "2.0.0")
	}
	if manifest.ProtocolVersion != "2024-11-05" {
		t.Errorf("ProtocolVersion = %q, want %q", manifest.ProtocolVersion, "2024-11-05")
	}
	if !manifest.Capabilities.Tools {
		t.Error("expected Tools capability to be true")
	}
}
