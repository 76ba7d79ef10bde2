package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

func TestRecover(t *testing.T) {
	t.Run("passes through normal responses", func(t *testing.T) {
		wrapped := Recover()(okHandler)
		resp, err := wrapped(context.Background(), &protocol.Request{Method: "test"})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp == nil {
			t.Fatal("expected response")
		}
	})

	t.Run("passes through errors", func(t *testing.T) {
		expectedErr := errors.New("handler error")
		handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return nil, expectedErr
		})

		_, err := Recover()(handler)(context.Background(), &protocol.Request{Method: "test"})

		if !errors.Is(err, expectedErr) {
			t.Errorf("error = %v, want %v", err, expectedErr)
		}
	})

	panics := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "something went wrong", "panic: something went wrong"},
		{"error", errors.New("panic error"), "panic: panic error"},
		{"arbitrary value", 42, "panic: 42"},
	}

	for _, tt := range panics {
		t.Run("catches panic with "+tt.name, func(t *testing.T) {
			handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
				panic(tt.value)
			})

			_, err := Recover()(handler)(context.Background(), &protocol.Request{Method: "test"})

			var mcpErr *protocol.Error
			if !errors.As(err, &mcpErr) {
				t.Fatalf("expected protocol.Error, got %T", err)
			}
			if mcpErr.Code != protocol.CodeInternalError {
				t.Errorf("error code = %d, want %d", mcpErr.Code, protocol.CodeInternalError)
			}
			if mcpErr.Message != tt.want {
				t.Errorf("message = %q, want %q", mcpErr.Message, tt.want)
			}
		})
	}
}

func TestRecoverWithLogger(t *testing.T) {
	logger := &mockLogger{}
	handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		panic("kaboom")
	})

	_, err := RecoverWithLogger(logger)(handler)(context.Background(), &protocol.Request{Method: "tools/call"})
	if err == nil {
		t.Fatal("expected error from panic")
	}

	if len(logger.entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.level != "error" {
		t.Errorf("level = %q, want error", entry.level)
	}
	if v, _ := entry.field("panic"); v != "kaboom" {
		t.Errorf("panic = %v, want kaboom", v)
	}
	if v, _ := entry.field("stack"); !strings.Contains(v.(string), "goroutine") {
		t.Error("expected stack trace field")
	}
}

func TestRecoverWithHandler(t *testing.T) {
	var capturedPanic any
	var capturedReq *protocol.Request

	customHandler := func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error) {
		capturedPanic = panicVal
		capturedReq = req
		return nil, protocol.NewInternalError("custom: handled panic")
	}

	handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		panic("test panic")
	})

	req := &protocol.Request{Method: "test/method"}
	_, err := RecoverWithHandler(customHandler)(handler)(context.Background(), req)

	if err == nil {
		t.Fatal("expected error")
	}
	if capturedPanic != "test panic" {
		t.Errorf("capturedPanic = %v, want %q", capturedPanic, "test panic")
	}
	if capturedReq != req {
		t.Error("request was not passed to handler")
	}
}
