// Package testutil provides an in-memory client for testing MCP servers.
//
// Example usage:
//
//	func TestEcho(t *testing.T) {
//	    srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
//	    tools.Register(srv)
//
//	    tc := testutil.NewTestClient(t, srv)
//	    text, isError, err := tc.CallTool("echo", map[string]any{"message": "hi"})
//	    if err != nil || isError || text != "hi" {
//	        t.Fatalf("echo = %q, %v, %v", text, isError, err)
//	    }
//	}
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/felixgeelhaar/mcp-server/middleware"
	"github.com/felixgeelhaar/mcp-server/protocol"
	"github.com/felixgeelhaar/mcp-server/server"
	"github.com/felixgeelhaar/mcp-server/transport"
)

// TestClient drives a request handler in memory. Every result is passed
// through JSON encoding so tests observe exactly what a client would.
type TestClient struct {
	t       testing.TB
	handler transport.Handler
	reqID   int64
	mu      sync.Mutex
}

// NewTestClient creates a client for srv, wrapped in mws, and runs the
// initialize handshake.
func NewTestClient(t testing.TB, srv *server.Server, mws ...middleware.Middleware) *TestClient {
	t.Helper()

	tc := NewTestClientWithHandler(t, server.NewHandler(srv, mws...))
	if _, err := tc.Initialize(); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}
	return tc
}

// NewTestClientWithHandler creates a test client with a custom handler.
func NewTestClientWithHandler(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()
	return &TestClient{
		t:       t,
		handler: handler,
	}
}

func (tc *TestClient) nextID() json.RawMessage {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return json.RawMessage(fmt.Sprintf("%d", tc.reqID))
}

// SendRequest sends a request and returns the response as a client would
// decode it. Protocol errors returned by the handler are returned as err.
func (tc *TestClient) SendRequest(method string, params any) (*protocol.Response, error) {
	tc.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		paramsData = data
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      tc.nextID(),
		Method:  method,
		Params:  paramsData,
	}

	resp, err := tc.handler.HandleRequest(context.Background(), req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no response for %s", method)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	var decoded protocol.Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, decoded.Error
	}
	return &decoded, nil
}

func (tc *TestClient) object(method string, params any) (map[string]any, error) {
	resp, err := tc.SendRequest(method, params)
	if err != nil {
		return nil, err
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", resp.Result)
	}
	return result, nil
}

// Initialize sends an initialize request to the server.
func (tc *TestClient) Initialize() (map[string]any, error) {
	tc.t.Helper()

	return tc.object(protocol.MethodInitialize, map[string]any{
		"protocolVersion": protocol.MCPVersion,
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
	})
}

// ListTools returns the tool descriptors in server order.
func (tc *TestClient) ListTools() ([]map[string]any, error) {
	tc.t.Helper()

	result, err := tc.object(protocol.MethodToolsList, nil)
	if err != nil {
		return nil, err
	}

	list, ok := result["tools"].([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected tools type: %T", result["tools"])
	}
	tools := make([]map[string]any, len(list))
	for i, item := range list {
		tools[i], _ = item.(map[string]any)
	}
	return tools, nil
}

// CallTool calls a tool and returns the text of its single content entry
// and the isError flag. err is only set for protocol-level failures.
func (tc *TestClient) CallTool(name string, args any) (string, bool, error) {
	tc.t.Helper()

	result, err := tc.CallToolRaw(name, args)
	if err != nil {
		return "", false, err
	}
	if len(result.Content) != 1 {
		return "", result.IsError, fmt.Errorf("expected 1 content entry, got %d", len(result.Content))
	}
	return result.Content[0].Text, result.IsError, nil
}

// CallToolRaw calls a tool and returns the decoded envelope.
// A nil args omits the arguments member entirely.
func (tc *TestClient) CallToolRaw(name string, args any) (*server.CallResult, error) {
	tc.t.Helper()

	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}

	resp, err := tc.SendRequest(protocol.MethodToolsCall, params)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, err
	}
	var result server.CallResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unexpected call result: %w", err)
	}
	return &result, nil
}

// Ping sends a ping request.
func (tc *TestClient) Ping() error {
	tc.t.Helper()

	_, err := tc.SendRequest(protocol.MethodPing, nil)
	return err
}

// AssertToolExists fails the test unless tools/list includes name.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools()
	if err != nil {
		tc.t.Fatalf("ListTools failed: %v", err)
	}

	for _, tool := range tools {
		if tool["name"] == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}
