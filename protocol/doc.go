// Package protocol defines the MCP JSON-RPC 2.0 message types and error codes.
//
// It is the wire vocabulary shared by the transports, the middleware chain
// and the request handler in package server. Messages are decoded lazily:
// Request.ID and Request.Params stay raw so that a notification (no id) can
// be told apart from a request with id 0, and so that tools/call arguments
// reach the dispatcher exactly as sent.
//
// Protocol failures are *Error values and are answered with a JSON-RPC error
// member. Tool failures are not protocol errors: they travel inside a
// successful tools/call response with isError set.
//
//	err := protocol.Errorf(protocol.CodeInvalidRequest, "request size %d exceeds limit", n)
//	resp := protocol.NewErrorResponse(req.ID, err)
package protocol
