// Package tools holds the tools served by mcp-server.
package tools

import (
	"github.com/felixgeelhaar/mcp-server/server"
)

// Tool names.
const (
	NameEcho      = "echo"
	NameUppercase = "uppercase"
	NameCalculate = "calculate"
)

// Register adds echo, uppercase and calculate to srv in that order.
// The returned error joins every registration failure.
func Register(srv *server.Server) error {
	srv.Tool(NameEcho).
		Description("Echo back the input text").
		Title("Echo").
		ReadOnly().
		Idempotent().
		ClosedWorld().
		Handler(Echo)

	srv.Tool(NameUppercase).
		Description("Convert text to uppercase").
		Title("Uppercase").
		ReadOnly().
		Idempotent().
		ClosedWorld().
		Handler(Uppercase)

	srv.Tool(NameCalculate).
		Description("Perform basic mathematical calculations").
		Title("Calculate").
		ReadOnly().
		Idempotent().
		ClosedWorld().
		Handler(Calculate)

	return srv.Err()
}
