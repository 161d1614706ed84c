// Package wsconn provides a WebSocket client with state tracking and
// automatic reconnection, shared by all streaming infra clients.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// A set of errors returned by the client.
var (
	ErrClosed       = errors.New("wsconn: client is closed")
	ErrNotConnected = errors.New("wsconn: not connected")
)

// MessageHandler receives every inbound message.
type MessageHandler func(ctx context.Context, msg []byte)

// StateChangeHandler is invoked on every state transition. err is non-nil
// when the transition was caused by a failure.
type StateChangeHandler func(state State, err error)

// Config holds WebSocket client configuration.
type Config struct {
	URL  string
	Name string

	// PingInterval is how often to ping the server. Zero disables pings.
	PingInterval time.Duration

	// MaxMessageSize caps inbound frames. Oversized frames fail the
	// connection. Zero keeps the library default.
	MaxMessageSize int64

	// ReadTimeout bounds a single read. Zero means reads block until the
	// server sends something, which suits quiet push feeds.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single write.
	WriteTimeout time.Duration
}

// DefaultConfig returns the defaults used by the streaming clients.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 1 << 20,
		WriteTimeout:   10 * time.Second,
	}
}

// Client is a WebSocket client. After ConnectWithRetry it keeps itself
// connected until Close: a dropped connection is redialed immediately and
// indefinitely, with no backoff and no retry cap. Close is the only thing
// that stops it.
type Client struct {
	cfg Config

	state atomic.Int32

	connMu     sync.RWMutex
	conn       *websocket.Conn
	connCancel context.CancelFunc

	writeMu sync.Mutex

	handlerMu sync.RWMutex
	onMessage MessageHandler
	onState   StateChangeHandler

	// lifetime is cancelled by Close and parents every per-connection
	// context, including the ones reconnection dials with.
	lifetime context.Context
	cancel   context.CancelFunc

	autoReconnect atomic.Bool
	reconnecting  atomic.Bool
	closed        atomic.Bool
}

// New creates a client from cfg. It does not connect.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("wsconn: empty URL")
	}

	lifetime, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:      cfg,
		lifetime: lifetime,
		cancel:   cancel,
	}
	c.state.Store(int32(StateDisconnected))

	return c, nil
}

// OnMessage sets the inbound message handler. Set it before connecting.
func (c *Client) OnMessage(h MessageHandler) {
	c.handlerMu.Lock()
	c.onMessage = h
	c.handlerMu.Unlock()
}

// OnStateChange sets the state transition handler. Set it before connecting.
func (c *Client) OnStateChange(h StateChangeHandler) {
	c.handlerMu.Lock()
	c.onState = h
	c.handlerMu.Unlock()
}

// Connect performs a single connection attempt. On failure the client is
// left in StateDisconnected and the error is returned.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.setState(StateConnecting, nil)

	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected, err)
		return err
	}

	c.setState(StateConnected, nil)
	return nil
}

// ConnectWithRetry dials until a connection is established or ctx is done,
// retrying failed attempts immediately. It also arms automatic reconnection:
// once established, any later drop is redialed the same way until Close.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	c.autoReconnect.Store(true)

	c.setState(StateConnecting, nil)

	for {
		if c.closed.Load() {
			return ErrClosed
		}

		err := c.dial(ctx)
		if err == nil {
			c.setState(StateConnected, nil)
			return nil
		}

		select {
		case <-ctx.Done():
			c.setState(StateDisconnected, err)
			return ctx.Err()
		default:
		}
	}
}

// Send writes a text message to the server.
func (c *Client) Send(ctx context.Context, data []byte) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil || c.State() != StateConnected {
		return ErrNotConnected
	}

	if c.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.WriteTimeout)
		defer cancel()
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return conn.Write(ctx, websocket.MessageText, data)
}

// SendJSON marshals v and sends it as a text message.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsconn: marshal message: %w", err)
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// IsConnected reports whether the connection is currently established.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close tears the connection down and stops reconnection. It is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.cancel()

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	if c.connCancel != nil {
		c.connCancel()
		c.connCancel = nil
	}
	c.connMu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "client closing")
	}

	c.setState(StateClosed, nil)
	return nil
}

// dial establishes a connection and starts its read and ping loops.
func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("wsconn: dial %s: %w", c.cfg.URL, err)
	}

	if c.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(c.cfg.MaxMessageSize)
	}

	connCtx, connCancel := context.WithCancel(c.lifetime)

	c.connMu.Lock()
	if c.closed.Load() {
		c.connMu.Unlock()
		connCancel()
		_ = conn.Close(websocket.StatusNormalClosure, "client closing")
		return ErrClosed
	}
	c.conn = conn
	c.connCancel = connCancel
	c.connMu.Unlock()

	go c.readLoop(connCtx, conn)
	if c.cfg.PingInterval > 0 {
		go c.pingLoop(connCtx, conn)
	}

	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		readCtx := ctx
		var cancel context.CancelFunc
		if c.cfg.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, c.cfg.ReadTimeout)
		}

		_, data, err := conn.Read(readCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}

		c.handlerMu.RLock()
		handler := c.onMessage
		c.handlerMu.RUnlock()

		if handler != nil {
			handler(ctx, data)
		}
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				// Failing the connection here hands control to the
				// read loop, which drives the disconnect path.
				_ = conn.Close(websocket.StatusGoingAway, "ping failed")
				return
			}
		}
	}
}

// handleDisconnect runs when a connection's read loop fails. Only the
// current connection may drive state; stale loops from an already
// replaced connection return without effect.
func (c *Client) handleDisconnect(conn *websocket.Conn, err error) {
	c.connMu.Lock()
	if c.conn != conn {
		c.connMu.Unlock()
		return
	}
	c.conn = nil
	if c.connCancel != nil {
		c.connCancel()
		c.connCancel = nil
	}
	c.connMu.Unlock()

	if c.closed.Load() {
		return
	}

	if !c.autoReconnect.Load() {
		c.setState(StateDisconnected, err)
		return
	}

	c.setState(StateReconnecting, err)

	if c.reconnecting.CompareAndSwap(false, true) {
		go c.reconnectLoop()
	}
}

// reconnectLoop redials immediately and forever until it succeeds or the
// client is closed.
func (c *Client) reconnectLoop() {
	defer c.reconnecting.Store(false)

	for {
		if c.closed.Load() {
			return
		}

		select {
		case <-c.lifetime.Done():
			return
		default:
		}

		if err := c.dial(c.lifetime); err != nil {
			continue
		}

		c.setState(StateConnected, nil)
		return
	}
}

func (c *Client) setState(s State, err error) {
	old := State(c.state.Swap(int32(s)))
	if old == s {
		return
	}

	c.handlerMu.RLock()
	handler := c.onState
	c.handlerMu.RUnlock()

	if handler != nil {
		handler(s, err)
	}
}
