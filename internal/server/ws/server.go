// Package ws serves the JSON-RPC sync protocol over websocket connections.
// Each connection runs its own read loop; responses and change pushes share
// a per-connection write lock.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"habitsync/internal/logging"
	"habitsync/internal/protocol"
	"habitsync/internal/server/accounts"
	syncsvc "habitsync/internal/server/sync"
)

type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	accounts   *accounts.Service
	sync       *syncsvc.Service
	hub        *Hub
	logger     logging.Logger
}

// conn is one agent connection. accountID is set after the first
// successfully authenticated call.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	mu        sync.Mutex
	accountID string
}

func (c *conn) write(resp *protocol.Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(resp)
}

func (c *conn) setAccountID(id string) {
	c.mu.Lock()
	c.accountID = id
	c.mu.Unlock()
}

func (c *conn) getAccountID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountID
}

func NewServer(addr string, accountService *accounts.Service, syncService *syncsvc.Service, logger logging.Logger) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{},
		accounts: accountService,
		sync:     syncService,
		hub:      NewHub(logger),
		logger:   logger.With("module", "ws_server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sync", s.handleUpgrade)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	return s
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.httpServer.Shutdown(context.Background())
	}
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "upgrade failed", "error", err)
		return
	}

	c := &conn{ws: wsConn}
	defer func() {
		s.hub.unregister(c)
		_ = wsConn.Close()
	}()

	ctx := context.Background()
	for {
		var req protocol.Request
		if err := wsConn.ReadJSON(&req); err != nil {
			return
		}

		resp := s.dispatch(ctx, c, &req)
		resp.ID = req.ID
		if err := c.write(resp); err != nil {
			return
		}
	}
}
