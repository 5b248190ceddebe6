package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"habitsync/internal/common"
	"habitsync/internal/logging"
	"habitsync/internal/protocol"
)

// WSClient speaks the habitsync JSON-RPC protocol over a single websocket
// connection. Responses are matched to requests by id; unsolicited change
// notifications are fanned into Notifications().
type WSClient struct {
	url      string
	deviceID string
	logger   logging.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu           sync.Mutex
	pending      map[string]chan *protocol.Response
	accessToken  string
	refreshToken string

	// OnTokens, when set, is invoked with every fresh token pair so the
	// caller can persist the session.
	OnTokens func(accessToken, refreshToken string)

	notifications chan protocol.ChangeEvent
	closed        chan struct{}
	closeOnce     sync.Once
}

// Dial connects to the sync server and starts the read loop.
func Dial(ctx context.Context, url, deviceID string, logger logging.Logger) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, common.ErrUnavailable)
	}

	c := &WSClient{
		url:           url,
		deviceID:      deviceID,
		logger:        logger.With("module", "ws_client"),
		conn:          conn,
		pending:       make(map[string]chan *protocol.Response),
		notifications: make(chan protocol.ChangeEvent, 8),
		closed:        make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *WSClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// Notifications implements Client.
func (c *WSClient) Notifications() <-chan protocol.ChangeEvent {
	return c.notifications
}

func (c *WSClient) SignedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

// SetTokens restores a previously persisted session.
func (c *WSClient) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

func (c *WSClient) readLoop() {
	defer close(c.notifications)
	for {
		var resp protocol.Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			select {
			case <-c.closed:
			default:
				c.logger.Warn(context.Background(), "connection lost", "error", err)
			}
			c.failPending()
			return
		}

		if resp.ID == "" && resp.Method == protocol.MethodChange {
			var ev protocol.ChangeEvent
			if err := json.Unmarshal(resp.Result, &ev); err != nil {
				c.logger.Warn(context.Background(), "bad change notification", "error", err)
				continue
			}
			select {
			case c.notifications <- ev:
			default:
				// Coalescing downstream makes dropped bursts harmless.
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

func (c *WSClient) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
}

// call performs one RPC round trip. It does not retry.
func (c *WSClient) call(ctx context.Context, method string, params any, result any) error {
	var raw json.RawMessage
	if params != nil {
		var err error
		raw, err = protocol.Marshal(params)
		if err != nil {
			return err
		}
	}

	id := uuid.NewString()
	ch := make(chan *protocol.Response, 1)

	c.mu.Lock()
	token := c.accessToken
	c.pending[id] = ch
	c.mu.Unlock()

	req := &protocol.Request{ID: id, Method: method, Token: token, Params: raw}

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return common.ErrUnavailable
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return common.ErrUnavailable
		}
		if resp.Error != nil {
			return mapError(resp.Error)
		}
		if result != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("decode %s result: %w", method, err)
			}
		}
		return nil
	}
}

// do wraps call with a one-shot token refresh on expiry, mirroring what an
// auth interceptor would give us on a connection-oriented transport.
func (c *WSClient) do(ctx context.Context, method string, params any, result any) error {
	err := c.call(ctx, method, params, result)
	if !errors.Is(err, common.ErrTokenExpired) {
		return err
	}

	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return err
	}

	var pair protocol.TokenPair
	if err := c.call(ctx, protocol.MethodRefresh, &protocol.RefreshParams{RefreshToken: refresh}, &pair); err != nil {
		return err
	}
	c.storeTokens(pair)

	return c.call(ctx, method, params, result)
}

func (c *WSClient) storeTokens(pair protocol.TokenPair) {
	c.mu.Lock()
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	sink := c.OnTokens
	c.mu.Unlock()

	if sink != nil {
		sink(pair.AccessToken, pair.RefreshToken)
	}
}

func (c *WSClient) SignIn(ctx context.Context, account, passphrase string) error {
	params := &protocol.SignInParams{Account: account, Passphrase: passphrase, DeviceID: c.deviceID}
	var pair protocol.TokenPair
	if err := c.call(ctx, protocol.MethodSignIn, params, &pair); err != nil {
		return err
	}
	c.storeTokens(pair)
	return nil
}

func (c *WSClient) Ping(ctx context.Context) error {
	var res protocol.PingResult
	if err := c.do(ctx, protocol.MethodPing, nil, &res); err != nil {
		return err
	}
	if res.Status != "OK" {
		return common.ErrUnavailable
	}
	return nil
}

func (c *WSClient) GetFlag(ctx context.Context, key string) (bool, error) {
	var res protocol.FlagValue
	if err := c.do(ctx, protocol.MethodFlagGet, &protocol.FlagGetParams{Key: key}, &res); err != nil {
		return false, err
	}
	return res.Value, nil
}

func (c *WSClient) SetFlag(ctx context.Context, key string, value bool) error {
	return c.do(ctx, protocol.MethodFlagSet, &protocol.FlagSetParams{Key: key, Value: value}, nil)
}

func (c *WSClient) Pull(ctx context.Context, sinceVersion int64) (*protocol.Snapshot, error) {
	var snap protocol.Snapshot
	if err := c.do(ctx, protocol.MethodPull, &protocol.PullParams{SinceVersion: sinceVersion}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *WSClient) Push(ctx context.Context, params protocol.PushParams) (int64, error) {
	var res protocol.PushResult
	if err := c.do(ctx, protocol.MethodPush, &params, &res); err != nil {
		return 0, err
	}
	return res.Version, nil
}

func mapError(e *protocol.Error) error {
	switch e.Code {
	case protocol.CodeUnauthorized:
		return common.ErrUnauthorized
	case protocol.CodeTokenExpired:
		return common.ErrTokenExpired
	case protocol.CodeNotFound:
		return common.ErrNotFound
	default:
		return fmt.Errorf("rpc error: %w", e)
	}
}
