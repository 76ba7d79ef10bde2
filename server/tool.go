package server

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/mcp-server/schema"
)

// Tool represents a callable function exposed via MCP.
type Tool struct {
	name        string
	description string
	inputType   reflect.Type
	inputSchema *schema.Schema
	annotations *ToolAnnotations
	handler     reflect.Value
	hasContext  bool
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// ToolBuilder provides a fluent API for building tools.
type ToolBuilder struct {
	tool   *Tool
	server *Server
	err    error
}

// Description sets the tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	if b.err != nil {
		return b
	}
	b.tool.description = desc
	return b
}

// Handler sets the tool handler function and registers the tool.
// Handler signature must be one of:
//   - func(input T) (R, error)
//   - func(ctx context.Context, input T) (R, error)
//
// T must be a struct; its fields and `jsonschema` tags define the input
// schema advertised by tools/list and enforced before the handler runs.
func (b *ToolBuilder) Handler(fn any) *ToolBuilder {
	if b.err != nil {
		return b
	}

	if err := b.validateHandler(fn); err != nil {
		b.err = fmt.Errorf("tool %q: %w", b.tool.name, err)
		b.server.recordError(b.err)
		return b
	}

	b.tool.handler = reflect.ValueOf(fn)
	b.err = b.server.registerTool(b.tool)
	return b
}

// Err returns the error recorded while building, if any.
func (b *ToolBuilder) Err() error {
	return b.err
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// validateHandler validates the handler function signature.
func (b *ToolBuilder) validateHandler(fn any) error {
	if fn == nil {
		return fmt.Errorf("handler must be a function, got nil")
	}
	fnType := reflect.TypeOf(fn)

	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("handler must be a function, got %s", fnType.Kind())
	}

	numIn := fnType.NumIn()
	if numIn < 1 || numIn > 2 {
		return fmt.Errorf("handler must have 1 or 2 parameters, got %d", numIn)
	}

	inputParamIdx := 0
	if numIn == 2 {
		if !fnType.In(0).Implements(contextType) {
			return fmt.Errorf("first parameter must be context.Context when using 2 parameters")
		}
		b.tool.hasContext = true
		inputParamIdx = 1
	}

	inputType := fnType.In(inputParamIdx)
	if inputType.Kind() != reflect.Struct {
		return fmt.Errorf("input parameter must be a struct, got %s", inputType.Kind())
	}
	b.tool.inputType = inputType

	inputSchema, err := schema.GenerateFromType(inputType)
	if err != nil {
		return fmt.Errorf("failed to generate input schema: %w", err)
	}
	b.tool.inputSchema = inputSchema

	if fnType.NumOut() != 2 {
		return fmt.Errorf("handler must return (result, error), got %d return values", fnType.NumOut())
	}
	if fnType.Out(1) != errorType {
		return fmt.Errorf("second return value must be error")
	}

	return nil
}

// Execute converts args into the tool's input struct and runs the handler.
//
// Conversion failures wrap ErrInvalidArguments. Handler errors are returned
// unchanged. The result is rendered to text by formatResult.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	coerced, err := t.inputSchema.Coerce(args)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	data, err := json.Marshal(coerced)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	inputPtr := reflect.New(t.inputType)
	if err := json.Unmarshal(data, inputPtr.Interface()); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	var in []reflect.Value
	if t.hasContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	in = append(in, inputPtr.Elem())

	out := t.handler.Call(in)
	if errVal := out[1].Interface(); errVal != nil {
		return "", errVal.(error)
	}

	return formatResult(out[0].Interface())
}

// formatResult renders a handler result as the text of a content entry.
// Strings and fmt.Stringers are used as-is; anything else is JSON-encoded.
func formatResult(v any) (string, error) {
	switch r := v.(type) {
	case string:
		return r, nil
	case fmt.Stringer:
		return r.String(), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
