// Package daemon fetches the running daemon's self-reported version
// over its HTTP API.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/comit-network/hermes/business/compat/app"
	"github.com/comit-network/hermes/business/compat/domain"
	"github.com/comit-network/hermes/internal/apperror"
	"github.com/comit-network/hermes/internal/httpclient"
	"github.com/comit-network/hermes/internal/logger"
)

// Ensure interface compliance
var _ app.SelfVersionSource = (*Client)(nil)

const (
	tracerName = "daemon"

	versionEndpoint = "/api/version"

	httpTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the daemon HTTP client.
type ClientConfig struct {
	BaseURL     string        // daemon HTTP base URL
	VersionPath string        // version endpoint path (empty = default)
	Timeout     time.Duration // request timeout
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:     baseURL,
		VersionPath: versionEndpoint,
		Timeout:     httpTimeout,
	}
}

// Client queries the local daemon's HTTP API.
type Client struct {
	client httpclient.Client
	config ClientConfig
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewClient creates a new daemon HTTP client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.VersionPath == "" {
		cfg.VersionPath = versionEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("daemon"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client: client,
		config: cfg,
		logger: log,
		tracer: tracer,
	}, nil
}

// versionResponse is the daemon's version endpoint payload.
type versionResponse struct {
	DaemonVersion string `json:"daemon_version"`
}

// DaemonVersion fetches the daemon's self-reported semantic version.
func (c *Client) DaemonVersion(ctx context.Context) (*semver.Version, error) {
	ctx, span := c.tracer.Start(ctx, "daemon.version")
	defer span.End()

	var result versionResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "version")),
	).
		SetResult(&result).
		Get(ctx, c.config.VersionPath)

	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeVersionLookupFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch daemon version"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeVersionLookupFailed,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	v, err := domain.ParseVersion(result.DaemonVersion)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidVersionString,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("daemon reported %q", result.DaemonVersion)))
	}

	span.SetAttributes(attribute.String("version", v.String()))
	c.logger.Debug(ctx, "fetched daemon version", "version", v.String())

	return v, nil
}
