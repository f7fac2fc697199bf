// Package server exposes the adder over a websocket endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skim-satellite/adder/internal/adder"
	"github.com/skim-satellite/adder/internal/config"
	"github.com/skim-satellite/adder/internal/wire"
)

const (
	// AddPath is the websocket endpoint.
	AddPath = "/add"
	// HealthPath answers plain "ok" for liveness checks.
	HealthPath = "/healthz"

	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = 4096
)

// Server answers add requests over websocket connections.
type Server struct {
	addr        string
	readTimeout time.Duration
	log         io.Writer

	upgrader websocket.Upgrader

	// Tracks live connections so shutdown can close them.
	conns   map[*websocket.Conn]struct{}
	closing bool
	connsMu sync.Mutex
	wg      sync.WaitGroup
}

// New creates a server from the server section of cfg.
func New(cfg *config.ServerConfig, log io.Writer) *Server {
	if log == nil {
		log = os.Stderr
	}
	return &Server{
		addr:        cfg.GetAddr(),
		readTimeout: cfg.GetReadTimeout(),
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local tool: accept any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler serving the add and health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(AddPath, s.handleAdd)
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	fmt.Fprintf(s.log, "serve: listening on %s\n", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by http.Server.
	s.closeConns()
	err := srv.Shutdown(shutdownCtx)
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// trackConn registers a connection. It returns false once shutdown has
// begun, in which case the caller must drop the connection.
func (s *Server) trackConn(conn *websocket.Conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
	s.wg.Done()
}

func (s *Server) closeConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.closing = true
	deadline := time.Now().Add(time.Second)
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = conn.Close()
	}
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		fmt.Fprintf(s.log, "serve: upgrade failed from %s: %v\n", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	if !s.trackConn(conn) {
		return
	}
	defer s.untrackConn(conn)

	conn.SetReadLimit(maxMessageSize)
	s.serveConn(conn)
}

// serveConn handles one connection. Requests are answered in order on the
// reading goroutine, so no write lock is needed.
func (s *Server) serveConn(conn *websocket.Conn) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				fmt.Fprintf(s.log, "serve: connection from %s closed: %v\n", conn.RemoteAddr(), err)
			}
			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		switch msgType {
		case websocket.TextMessage:
			err = s.handleText(conn, data)
		case websocket.BinaryMessage:
			err = s.handleBinary(conn, data)
		}
		if err != nil {
			fmt.Fprintf(s.log, "serve: write to %s failed: %v\n", conn.RemoteAddr(), err)
			return
		}
	}
}

func (s *Server) handleText(conn *websocket.Conn, data []byte) error {
	req, id, err := wire.DecodeAddRequest(data)
	if err != nil {
		return writeJSON(conn, wire.ErrorMessage{Type: wire.TypeError, ID: id, Error: err.Error()})
	}

	sum, overflowed := adder.AddChecked(req.A, req.B)
	return writeJSON(conn, wire.ResultMessage{
		Type:     wire.TypeResult,
		ID:       req.ID,
		Sum:      sum,
		Overflow: overflowed,
	})
}

func (s *Server) handleBinary(conn *websocket.Conn, data []byte) error {
	a, b, err := wire.UnpackRequest(data)
	if err != nil {
		return writeJSON(conn, wire.ErrorMessage{Type: wire.TypeError, Error: err.Error()})
	}

	bp := wire.PackResult(adder.AddChecked(a, b))
	defer wire.Release(bp)
	return conn.WriteMessage(websocket.BinaryMessage, *bp)
}

func writeJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
