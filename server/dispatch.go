package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-server/middleware"
)

// Dispatch errors. Tool handlers may return their own errors; these cover
// the faults the dispatcher itself detects.
var (
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrToolPanic        = errors.New("tool panicked")
	ErrDuplicateTool    = errors.New("duplicate tool name")
)

// Call executes the named tool with the given raw JSON arguments.
//
// Call never returns an error and never panics: every fault, including a
// panic inside the handler, is converted into a CallResult with IsError set.
// args must be a JSON object; absent or null arguments are rejected.
func (s *Server) Call(ctx context.Context, name string, args json.RawMessage) (result *CallResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrToolPanic, r)
			s.logger.Error("tool panicked",
				middleware.F("tool", name),
				middleware.F("panic", fmt.Sprint(r)),
			)
			result = ErrorResult(err)
		}
	}()

	bag, err := decodeArguments(args)
	if err != nil {
		return s.fail(name, err)
	}

	tool, ok := s.GetTool(name)
	if !ok {
		return s.fail(name, fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}

	text, err := tool.Execute(ctx, bag)
	if err != nil {
		return s.fail(name, err)
	}

	return TextResult(text)
}

func (s *Server) fail(name string, err error) *CallResult {
	s.logger.Debug("tool call failed",
		middleware.F("tool", name),
		middleware.F("error", err.Error()),
	)
	return ErrorResult(err)
}

// decodeArguments turns the raw argument bag into a mapping.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: expected an object, got none", ErrInvalidArguments)
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	bag, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrInvalidArguments, jsonKind(value))
	}
	return bag, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
