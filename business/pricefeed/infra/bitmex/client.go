package bitmex

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

	"github.com/comit-network/hermes/business/pricefeed/app"
	"github.com/comit-network/hermes/business/pricefeed/domain"
	"github.com/comit-network/hermes/internal/apperror"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/wsconn"
)

// Ensure interface compliance
var _ app.PriceSource = (*Client)(nil)

const (
	tracerName = "bitmex"
	meterName  = "bitmex"

	// BitMEX realtime endpoints
	BaseWSURL    = "wss://ws.bitmex.com/realtime"
	TestnetWSURL = "wss://ws.testnet.bitmex.com/realtime"
)

// ClientConfig holds configuration for the BitMEX client.
type ClientConfig struct {
	URL          string // WebSocket endpoint
	Symbol       string // Instrument to follow (e.g. "XBTUSD")
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(url, symbol string) ClientConfig {
	return ClientConfig{
		URL:          url,
		Symbol:       symbol,
		WriteTimeout: 10 * time.Second,
	}
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	framesReceived metric.Int64Counter
	pricesReceived metric.Int64Counter
	parseErrors    metric.Int64Counter
	ignoredFrames  metric.Int64Counter
}

// Client follows one instrument's mark price on the BitMEX realtime
// stream. It keeps itself connected until Close and re-subscribes after
// every redial; subscriptions do not survive a new connection.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	onMarkPrice func(domain.MarkPrice)
	handlersMu  sync.RWMutex

	// Observability
	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a new BitMEX client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	c := &Client{
		config: cfg,
		logger: log,
		tracer: otel.Tracer(tracerName),
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

	c.metrics.framesReceived, err = meter.Int64Counter(
		"bitmex_frames_total",
		metric.WithDescription("Total frames received"),
	)
	if err != nil {
		return err
	}

	c.metrics.pricesReceived, err = meter.Int64Counter(
		"bitmex_prices_total",
		metric.WithDescription("Mark price observations received"),
	)
	if err != nil {
		return err
	}

	c.metrics.parseErrors, err = meter.Int64Counter(
		"bitmex_parse_errors_total",
		metric.WithDescription("Frame parse errors"),
	)
	if err != nil {
		return err
	}

	c.metrics.ignoredFrames, err = meter.Int64Counter(
		"bitmex_ignored_frames_total",
		metric.WithDescription("Frames without a usable mark price"),
	)
	if err != nil {
		return err
	}

	return nil
}

// OnMarkPrice registers the handler for every mark price observation.
func (c *Client) OnMarkPrice(handler func(domain.MarkPrice)) {
	c.handlersMu.Lock()
	c.onMarkPrice = handler
	c.handlersMu.Unlock()
}

// Connected reports whether the stream currently has a live connection.
func (c *Client) Connected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Connect establishes the WebSocket connection and subscribes to the
// instrument stream. Once up, drops are redialed until Close.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "bitmex.connect",
		trace.WithAttributes(
			attribute.String("symbol", c.config.Symbol),
		),
	)
	defer span.End()

	wsCfg := wsconn.DefaultConfig(c.config.URL, "bitmex")
	wsCfg.ReadTimeout = c.config.ReadTimeout
	wsCfg.WriteTimeout = c.config.WriteTimeout

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodePriceFeedConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to create wsconn"))
	}

	conn.OnMessage(c.handleMessage)
	conn.OnStateChange(c.handleStateChange)

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodePriceFeedConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to BitMEX"))
	}

	c.logger.Info(ctx, "bitmex client connected",
		"url", c.config.URL,
		"symbol", c.config.Symbol)

	return nil
}

// handleStateChange re-subscribes after every (re)connect.
func (c *Client) handleStateChange(state wsconn.State, err error) {
	ctx := context.Background()

	switch state {
	case wsconn.StateReconnecting:
		c.logger.Warn(ctx, "bitmex stream dropped, redialing", "error", err)
	case wsconn.StateConnected:
		go c.subscribe(ctx)
	}
}

func (c *Client) subscribe(ctx context.Context) {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return
	}

	cmd := wsCommand{
		Op:   "subscribe",
		Args: []string{instrumentTopic(c.config.Symbol)},
	}
	if err := conn.SendJSON(ctx, cmd); err != nil {
		c.logger.Warn(ctx, "bitmex subscribe failed", "error", err)
	}
}

// handleMessage processes one frame. Anything that is not a usable
// instrument row - banners, acks, updates without a mark price,
// malformed frames - is ignored and the stream keeps flowing.
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	c.metrics.framesReceived.Add(ctx, 1)

	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.metrics.parseErrors.Add(ctx, 1)
		c.logger.Debug(ctx, "failed to parse frame", "error", err, "data", string(data[:min(len(data), 500)]))
		return
	}

	if msg.Table != "instrument" {
		if msg.Error != "" {
			c.logger.Warn(ctx, "bitmex error frame", "error", msg.Error)
		}
		c.metrics.ignoredFrames.Add(ctx, 1)
		return
	}

	for _, row := range msg.Data {
		if row.Symbol != c.config.Symbol || row.MarkPrice == nil {
			continue
		}

		price := domain.MarkPrice{
			Symbol:     row.Symbol,
			Value:      *row.MarkPrice,
			Timestamp:  row.Timestamp,
			ReceivedAt: time.Now(),
		}

		c.metrics.pricesReceived.Add(ctx, 1)

		c.handlersMu.RLock()
		handler := c.onMarkPrice
		c.handlersMu.RUnlock()

		if handler != nil {
			handler(price)
		}
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
