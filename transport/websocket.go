package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/mcp-server/middleware"
	"github.com/felixgeelhaar/mcp-server/protocol"
)

// WebSocket implements MCP transport over WebSocket connections.
// Each text frame carries one JSON-RPC message. Connections are served
// concurrently; requests on one connection are handled in order.
type WebSocket struct {
	addr     string
	upgrader websocket.Upgrader
	logger   middleware.Logger

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	maxMessageSize  int64

	mu       sync.RWMutex
	listener net.Listener
	clients  map[*wsClient]struct{}
}

type wsClient struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

// WebSocketOption configures a WebSocket transport.
type WebSocketOption func(*WebSocket)

// WithWebSocketReadTimeout sets how long a connection may stay idle.
func WithWebSocketReadTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.readTimeout = d
	}
}

// WithWebSocketWriteTimeout sets the write timeout for WebSocket messages.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.writeTimeout = d
	}
}

// WithWebSocketCheckOrigin sets the origin check function for WebSocket upgrades.
func WithWebSocketCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(ws *WebSocket) {
		ws.upgrader.CheckOrigin = fn
	}
}

// WithWebSocketMaxMessageSize bounds the size of a single inbound frame.
func WithWebSocketMaxMessageSize(n int64) WebSocketOption {
	return func(ws *WebSocket) {
		ws.maxMessageSize = n
	}
}

// WithWebSocketLogger sets the logger for connection events.
func WithWebSocketLogger(l middleware.Logger) WebSocketOption {
	return func(ws *WebSocket) {
		ws.logger = l
	}
}

// NewWebSocket creates a new WebSocket transport listening on addr.
func NewWebSocket(addr string, opts ...WebSocketOption) *WebSocket {
	ws := &WebSocket{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:          middleware.NopLogger{},
		readTimeout:     60 * time.Second,
		writeTimeout:    10 * time.Second,
		shutdownTimeout: 5 * time.Second,
		maxMessageSize:  MaxLineSize,
		clients:         make(map[*wsClient]struct{}),
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// Addr returns the bound address once Serve is listening, otherwise the
// configured one.
func (ws *WebSocket) Addr() string {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	if ws.listener != nil {
		return ws.listener.Addr().String()
	}
	return ws.addr
}

// Serve listens on the configured address and serves upgrades until ctx
// is canceled. On shutdown every open connection receives a close frame.
func (ws *WebSocket) Serve(ctx context.Context, handler Handler) error {
	ln, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	ws.listener = ln
	ws.mu.Unlock()

	srv := &http.Server{
		Handler:           ws.HTTPHandler(ctx, handler),
		ReadHeaderTimeout: ws.writeTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	ws.logger.Info("websocket transport listening", middleware.F("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ws.shutdownTimeout)
		defer cancel()
		ws.closeAllClients()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// HTTPHandler returns the upgrade handler used by Serve, for mounting the
// transport on an existing HTTP server.
func (ws *WebSocket) HTTPHandler(ctx context.Context, handler Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.handleConnection(ctx, w, r, handler)
	})
}

func (ws *WebSocket) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request, handler Handler) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade failed",
			middleware.F("remote_addr", r.RemoteAddr),
			middleware.F("error", err.Error()),
		)
		return
	}
	if ws.maxMessageSize > 0 {
		conn.SetReadLimit(ws.maxMessageSize)
	}

	client := &wsClient{conn: conn, writeTimeout: ws.writeTimeout}

	ws.mu.Lock()
	ws.clients[client] = struct{}{}
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		delete(ws.clients, client)
		ws.mu.Unlock()
		_ = conn.Close()
	}()

	connCtx := protocol.ContextWithRequestMeta(ctx, protocol.RequestMeta{
		protocol.MetaTransport:  "websocket",
		protocol.MetaRemoteAddr: r.RemoteAddr,
	})

	ws.logger.Debug("websocket client connected", middleware.F("remote_addr", r.RemoteAddr))

	for {
		if ctx.Err() != nil {
			return
		}

		if ws.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(ws.readTimeout))
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.logger.Warn("websocket read failed",
					middleware.F("remote_addr", r.RemoteAddr),
					middleware.F("error", err.Error()),
				)
			}
			return
		}

		resp := process(connCtx, handler, message)
		if resp == nil {
			continue
		}
		if err := client.writeJSON(resp); err != nil {
			ws.logger.Warn("websocket write failed",
				middleware.F("remote_addr", r.RemoteAddr),
				middleware.F("error", err.Error()),
			)
			return
		}
	}
}

func (ws *WebSocket) closeAllClients() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for client := range ws.clients {
		client.close()
	}
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteJSON(v)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}
