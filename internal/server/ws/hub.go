package ws

import (
	"context"
	"sync"

	"habitsync/internal/logging"
	"habitsync/internal/protocol"
)

// Hub tracks which connections belong to which account and fans change
// notifications out to an account's other devices.
type Hub struct {
	mu     sync.Mutex
	conns  map[string]map[*conn]struct{}
	logger logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[*conn]struct{}),
		logger: logger.With("module", "hub"),
	}
}

func (h *Hub) register(accountID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[accountID]
	if !ok {
		set = make(map[*conn]struct{})
		h.conns[accountID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *conn) {
	accountID := c.getAccountID()
	if accountID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[accountID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, accountID)
		}
	}
}

// Broadcast pushes a change event to every connection of the account except
// the originator. Write failures are logged and otherwise ignored; a dead
// connection is cleaned up by its own read loop.
func (h *Hub) Broadcast(ctx context.Context, accountID string, except *conn, ev protocol.ChangeEvent) {
	result, err := protocol.Marshal(ev)
	if err != nil {
		h.logger.Error(ctx, "change event marshal failed", "error", err)
		return
	}
	notification := &protocol.Response{Method: protocol.MethodChange, Result: result}

	h.mu.Lock()
	targets := make([]*conn, 0, len(h.conns[accountID]))
	for c := range h.conns[accountID] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(notification); err != nil {
			h.logger.Debug(ctx, "change push failed", "error", err)
		}
	}
}
