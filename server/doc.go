// Package server holds the tool registry, the tools/call dispatcher and the
// JSON-RPC request handler. Most programs use the root mcp package instead.
//
// # Registry
//
// Tools are registered once at startup with the fluent builder. The input
// struct of the handler defines the advertised JSON Schema:
//
//	type EchoInput struct {
//	    Message string `json:"message" jsonschema:"required,description=The message to echo back"`
//	}
//
//	srv := server.New(server.Info{Name: "mcp-server", Version: "1.0.0"})
//	srv.Tool("echo").
//	    Description("Echo back the input text").
//	    ReadOnly().
//	    Handler(func(input EchoInput) (string, error) {
//	        return input.Message, nil
//	    })
//
//	if err := srv.Err(); err != nil {
//	    // duplicate name or bad handler signature
//	}
//
// Tools lists the descriptors in registration order.
//
// # Dispatch
//
// Call resolves a tool, converts the argument object into the handler's
// input struct and runs it. It never returns an error: every fault,
// including a panic in the handler, becomes a CallResult with IsError set
// and a single text entry of the form "Error: <message>".
//
//	res := srv.Call(ctx, "echo", json.RawMessage(`{"message":"hi"}`))
//	res.Text() // "hi"
package server
