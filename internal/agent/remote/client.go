// Package remote implements the agent side of the sync protocol: a websocket
// RPC client, the account-wide flag store built on top of it, and the account
// availability probe.
package remote

import (
	"context"

	"habitsync/internal/protocol"
)

// Client is the RPC surface of the sync server.
type Client interface {
	Close() error
	SignIn(ctx context.Context, account, passphrase string) error
	Ping(ctx context.Context) error
	GetFlag(ctx context.Context, key string) (bool, error)
	SetFlag(ctx context.Context, key string, value bool) error
	Pull(ctx context.Context, sinceVersion int64) (*protocol.Snapshot, error)
	Push(ctx context.Context, params protocol.PushParams) (int64, error)

	// Notifications delivers server-push change events. The channel is
	// closed when the connection goes away.
	Notifications() <-chan protocol.ChangeEvent

	// SignedIn reports whether the client currently holds a session token.
	SignedIn() bool
}
