package transport

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

// Handler processes incoming MCP requests.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve starts the transport, blocking until ctx is canceled or an error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr returns the transport's address description.
	Addr() string
}

// nullID answers messages whose id could not be determined.
var nullID = json.RawMessage("null")

// process decodes one JSON-RPC message, runs it through handler and
// returns the response to write back, or nil when nothing must be sent.
func process(ctx context.Context, handler Handler, data []byte) *protocol.Response {
	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return protocol.NewErrorResponse(nullID, protocol.NewParseError(err.Error()))
	}
	if req.Method == "" {
		if req.IsNotification() {
			return protocol.NewErrorResponse(nullID, protocol.NewInvalidRequest("missing method"))
		}
		return protocol.NewErrorResponse(req.ID, protocol.NewInvalidRequest("missing method"))
	}

	resp, err := handler.HandleRequest(ctx, &req)

	if req.IsNotification() {
		return nil
	}

	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err))
	}

	return resp
}
