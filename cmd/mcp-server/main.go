// Command mcp-server serves the echo, uppercase and calculate tools over
// MCP on stdio or websocket.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
