package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/mcp-server/middleware"
	"github.com/felixgeelhaar/mcp-server/protocol"
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name         string
	Version      string
	Capabilities Capabilities
}

// Capabilities declares what features the server supports.
type Capabilities struct {
	Tools bool
}

// Manifest represents the server manifest returned to clients.
type Manifest struct {
	Name            string       `json:"name"`
	Version         string       `json:"version"`
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
}

// ToolInfo is the descriptor of a registered tool.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema any
	Annotations *ToolAnnotations
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used to report recovered tool faults.
func WithLogger(l middleware.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server is the MCP server instance. It owns the tool registry and the
// dispatcher that executes tools/call requests.
type Server struct {
	mu sync.RWMutex

	info   Info
	tools  map[string]*Tool
	order  []string
	errs   []error
	logger middleware.Logger
}

// New creates a new MCP server with the given info and options.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:   info,
		tools:  make(map[string]*Tool),
		logger: middleware.NopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Tool starts building a new tool with the given name.
func (s *Server) Tool(name string) *ToolBuilder {
	return &ToolBuilder{
		tool: &Tool{
			name: name,
		},
		server: s,
	}
}

// Tools returns the descriptors of all registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ToolInfo, 0, len(s.order))
	for _, name := range s.order {
		t := s.tools[name]
		result = append(result, ToolInfo{
			Name:        t.name,
			Description: t.description,
			InputSchema: t.inputSchema,
			Annotations: t.annotations,
		})
	}
	return result
}

// Manifest returns the server manifest for MCP initialization.
func (s *Server) Manifest() Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Manifest{
		Name:            s.info.Name,
		Version:         s.info.Version,
		ProtocolVersion: protocol.MCPVersion,
		Capabilities:    s.info.Capabilities,
	}
}

// Err reports every registration failure seen so far, such as a duplicate
// tool name or a handler with an unsupported signature.
func (s *Server) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return errors.Join(s.errs...)
}

// GetTool retrieves a tool by name.
func (s *Server) GetTool(name string) (*Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tools[name]
	return t, ok
}

// registerTool adds a tool to the registry. Names are unique.
func (s *Server) registerTool(t *Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tools[t.name]; exists {
		err := fmt.Errorf("tool %q: %w", t.name, ErrDuplicateTool)
		s.errs = append(s.errs, err)
		return err
	}
	s.tools[t.name] = t
	s.order = append(s.order, t.name)
	return nil
}

// recordError keeps a builder failure so Err can surface it at startup.
func (s *Server) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}
