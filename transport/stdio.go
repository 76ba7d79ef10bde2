package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/felixgeelhaar/mcp-server/middleware"
	"github.com/felixgeelhaar/mcp-server/protocol"
)

// MaxLineSize is the longest newline-delimited message Stdio accepts. It
// sits well above the default request size limit so oversized params reach
// the SizeLimit middleware. Longer lines are answered with an invalid
// request error and skipped.
const MaxLineSize = 4 << 20

// Stdio implements MCP transport over stdin/stdout. Each line on stdin is
// one JSON-RPC message; each response is written as one line on stdout.
type Stdio struct {
	in     io.Reader
	out    io.Writer
	logger middleware.Logger

	mu sync.Mutex
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithStdioLogger sets the logger for transport events.
func WithStdioLogger(l middleware.Logger) StdioOption {
	return func(s *Stdio) {
		s.logger = l
	}
}

// NewStdio creates a new stdio transport.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:     os.Stdin,
		out:    os.Stdout,
		logger: middleware.NopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// Serve processes requests from stdin until EOF or ctx is canceled.
// Requests are handled one at a time in arrival order.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	reader := bufio.NewReaderSize(s.in, 64*1024)

	lines := make(chan stdioLine)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for {
			data, oversized, err := readLine(reader, MaxLineSize)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case lines <- stdioLine{data: data, oversized: oversized}:
			case <-ctx.Done():
				return
			}
		}
	}()

	ctx = protocol.SetRequestMeta(ctx, protocol.MetaTransport, s.Addr())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					s.logger.Error("stdin read failed", middleware.F("error", err.Error()))
					return err
				default:
					return nil
				}
			}
			if line.oversized {
				s.logger.Warn("message too large", middleware.F("max", MaxLineSize))
				s.writeResponse(protocol.NewErrorResponse(nullID,
					protocol.Errorf(protocol.CodeInvalidRequest, "message exceeds %d bytes", MaxLineSize)))
				continue
			}
			if len(bytes.TrimSpace(line.data)) == 0 {
				continue
			}
			if resp := process(ctx, handler, line.data); resp != nil {
				s.writeResponse(resp)
			}
		}
	}
}

type stdioLine struct {
	data      []byte
	oversized bool
}

// readLine returns the next line without its newline. A line longer than
// limit is consumed through its newline and reported as oversized with no
// data, so reading resumes at the next message. A final line without a
// newline is returned before io.EOF.
func readLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	oversized := false

	for {
		chunk, err := r.ReadSlice('\n')
		content := bytes.TrimSuffix(chunk, []byte("\n"))
		if !oversized {
			if len(line)+len(content) > limit {
				oversized = true
				line = nil
			} else {
				line = append(line, content...)
			}
		}

		switch {
		case err == nil:
			return line, oversized, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && (len(chunk) > 0 || len(line) > 0 || oversized):
			return line, oversized, nil
		default:
			return nil, false, err
		}
	}
}

func (s *Stdio) writeResponse(resp *protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode response", middleware.F("error", err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.logger.Error("failed to write response", middleware.F("error", err.Error()))
	}
}
