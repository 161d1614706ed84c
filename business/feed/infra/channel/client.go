package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/comit-network/hermes/business/feed/app"
	"github.com/comit-network/hermes/business/feed/domain"
	"github.com/comit-network/hermes/internal/apperror"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/wsconn"
)

// Ensure interface compliance
var _ app.EventChannel = (*Client)(nil)

const (
	tracerName = "channel"
	meterName  = "channel"
)

// ClientConfig holds configuration for the daemon event channel client.
type ClientConfig struct {
	URL          string        // WebSocket feed endpoint
	ReadTimeout  time.Duration // Zero: block until the daemon pushes
	WriteTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults for a local daemon.
func DefaultClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:          url,
		WriteTimeout: 10 * time.Second,
	}
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	eventsReceived metric.Int64Counter
	parseErrors    metric.Int64Counter
	unknownTopics  metric.Int64Counter
	reconnects     metric.Int64Counter
}

// Client multiplexes the daemon's topics over one WebSocket connection.
// It keeps itself connected until Close and routes each event to the
// handlers subscribed to its topic.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	// Topic routing
	handlers   map[domain.Topic][]func(ctx context.Context, payload []byte)
	handlersMu sync.RWMutex

	// Connectivity observers
	obsMu         sync.Mutex
	connObs       []func(bool)
	lastConnected bool
	notifiedOnce  bool

	// Observability
	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a new event channel client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	c := &Client{
		config:   cfg,
		logger:   log,
		handlers: make(map[domain.Topic][]func(ctx context.Context, payload []byte)),
		tracer:   otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.eventsReceived, err = meter.Int64Counter(
		"channel_events_total",
		metric.WithDescription("Total events received on the daemon channel"),
	)
	if err != nil {
		return err
	}

	c.metrics.parseErrors, err = meter.Int64Counter(
		"channel_parse_errors_total",
		metric.WithDescription("Envelope parse errors"),
	)
	if err != nil {
		return err
	}

	c.metrics.unknownTopics, err = meter.Int64Counter(
		"channel_unknown_topics_total",
		metric.WithDescription("Events dropped because their topic is unknown"),
	)
	if err != nil {
		return err
	}

	c.metrics.reconnects, err = meter.Int64Counter(
		"channel_reconnects_total",
		metric.WithDescription("Connection drops that triggered a redial"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Subscribe registers a handler for one topic. Registration is local;
// every topic arrives on the same connection regardless.
func (c *Client) Subscribe(topic domain.Topic, handler func(ctx context.Context, payload []byte)) {
	c.handlersMu.Lock()
	c.handlers[topic] = append(c.handlers[topic], handler)
	c.handlersMu.Unlock()
}

// OnConnectionChange registers an observer for connectivity flips. The
// observer fires with false the moment the transport reports a drop and
// with true once a connection is established again.
func (c *Client) OnConnectionChange(fn func(connected bool)) {
	c.obsMu.Lock()
	c.connObs = append(c.connObs, fn)
	c.obsMu.Unlock()
}

// Connected reports whether the channel currently has a live connection.
func (c *Client) Connected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Connect establishes the WebSocket connection and keeps it established:
// once up, drops are redialed immediately and indefinitely until Close.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "channel.connect",
		trace.WithAttributes(
			attribute.String("url", c.config.URL),
		),
	)
	defer span.End()

	wsCfg := wsconn.DefaultConfig(c.config.URL, "channel")
	wsCfg.ReadTimeout = c.config.ReadTimeout
	wsCfg.WriteTimeout = c.config.WriteTimeout

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeChannelConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to create wsconn"))
	}

	conn.OnMessage(c.handleMessage)
	conn.OnStateChange(c.handleStateChange)

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeChannelConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to daemon feed"))
	}

	c.logger.Info(ctx, "daemon event channel connected", "url", c.config.URL)

	return nil
}

// handleStateChange maps transport states onto the connected flag and
// counts redials.
func (c *Client) handleStateChange(state wsconn.State, err error) {
	ctx := context.Background()

	if state == wsconn.StateReconnecting {
		c.metrics.reconnects.Add(ctx, 1)
		c.logger.Warn(ctx, "daemon event channel dropped, redialing", "error", err)
	}

	connected := state == wsconn.StateConnected

	c.obsMu.Lock()
	if c.notifiedOnce && c.lastConnected == connected {
		c.obsMu.Unlock()
		return
	}
	c.lastConnected = connected
	c.notifiedOnce = true
	observers := append([]func(bool){}, c.connObs...)
	c.obsMu.Unlock()

	for _, fn := range observers {
		fn(connected)
	}
}

// handleMessage parses the envelope and routes the payload to the
// topic's handlers. Malformed envelopes and unknown topics are dropped;
// the stream keeps flowing.
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	c.metrics.eventsReceived.Add(ctx, 1)

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.metrics.parseErrors.Add(ctx, 1)
		c.logger.Debug(ctx, "failed to parse envelope", "error", err, "data", string(data[:min(len(data), 500)]))
		return
	}

	topic := domain.Topic(env.Topic)
	if !domain.Known(topic) {
		c.metrics.unknownTopics.Add(ctx, 1)
		c.logger.Debug(ctx, "dropping event for unknown topic", "topic", env.Topic)
		return
	}

	c.handlersMu.RLock()
	handlers := append([]func(ctx context.Context, payload []byte){}, c.handlers[topic]...)
	c.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, env.Payload)
	}
}

// Close tears the connection down and stops reconnection.
func (c *Client) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
