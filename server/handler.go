package server

import (
	"context"

	"github.com/felixgeelhaar/mcp-server/middleware"
	"github.com/felixgeelhaar/mcp-server/protocol"
)

// Handler adapts a Server to the transport.Handler interface by mapping
// JSON-RPC methods onto the registry and the dispatcher.
type Handler struct {
	srv        *Server
	handleFunc middleware.HandlerFunc
}

// NewHandler returns a request handler for srv wrapped in the given
// middleware, first middleware outermost.
func NewHandler(srv *Server, mws ...middleware.Middleware) *Handler {
	h := &Handler{srv: srv}

	base := middleware.HandlerFunc(h.handle)
	if len(mws) > 0 {
		h.handleFunc = middleware.Chain(mws...)(base)
	} else {
		h.handleFunc = base
	}

	return h
}

// HandleRequest implements transport.Handler.
func (h *Handler) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return h.handleFunc(ctx, req)
}

func (h *Handler) handle(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	switch req.Method {
	case protocol.MethodInitialize:
		return h.handleInitialize(req)
	case protocol.MethodInitialized:
		return nil, nil
	case protocol.MethodToolsList:
		return h.handleToolsList(req)
	case protocol.MethodToolsCall:
		return h.handleToolsCall(ctx, req)
	case protocol.MethodPing:
		return protocol.NewResponse(req.ID, map[string]any{}), nil
	default:
		return nil, protocol.NewMethodNotFound(req.Method)
	}
}

func (h *Handler) handleInitialize(req *protocol.Request) (*protocol.Response, error) {
	manifest := h.srv.Manifest()

	capabilities := make(map[string]any)
	if manifest.Capabilities.Tools {
		capabilities["tools"] = map[string]any{}
	}

	result := map[string]any{
		"protocolVersion": manifest.ProtocolVersion,
		"serverInfo": map[string]any{
			"name":    manifest.Name,
			"version": manifest.Version,
		},
		"capabilities": capabilities,
	}

	return protocol.NewResponse(req.ID, result), nil
}

func (h *Handler) handleToolsList(req *protocol.Request) (*protocol.Response, error) {
	tools := h.srv.Tools()

	toolList := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		item := map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.InputSchema,
		}
		if t.Annotations != nil {
			item["annotations"] = t.Annotations
		}
		toolList = append(toolList, item)
	}

	return protocol.NewResponse(req.ID, map[string]any{"tools": toolList}), nil
}

// handleToolsCall only fails at the protocol level when the params
// themselves are malformed; tool faults come back inside the CallResult.
func (h *Handler) handleToolsCall(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	params, err := protocol.ParseCallToolParams(req.Params)
	if err != nil {
		return nil, err
	}

	result := h.srv.Call(ctx, params.Name, params.Arguments)
	return protocol.NewResponse(req.ID, result), nil
}
