// Package github fetches the latest published release of the daemon
// from the GitHub releases API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/comit-network/hermes/business/compat/app"
	"github.com/comit-network/hermes/business/compat/domain"
	"github.com/comit-network/hermes/internal/apperror"
	"github.com/comit-network/hermes/internal/cache"
	"github.com/comit-network/hermes/internal/circuitbreaker"
	"github.com/comit-network/hermes/internal/httpclient"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/ratelimit"
)

// Ensure interface compliance
var _ app.ReleaseSource = (*Client)(nil)

const (
	tracerName = "github"

	// DefaultReleaseURL is the GitHub "latest release" endpoint for the
	// daemon's repository.
	DefaultReleaseURL = "https://api.github.com/repos/comit-network/hermes/releases/latest"

	httpTimeout     = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
	defaultRPM      = 10

	cacheKey = "latest"
)

// ClientConfig holds configuration for the GitHub releases client.
type ClientConfig struct {
	ReleaseURL        string        // full URL of the latest-release endpoint
	Timeout           time.Duration // request timeout
	CacheTTL          time.Duration // how long a fetched release stays cached
	RequestsPerMinute int           // unauthenticated GitHub budget is 60/h
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(releaseURL string) ClientConfig {
	if releaseURL == "" {
		releaseURL = DefaultReleaseURL
	}
	return ClientConfig{
		ReleaseURL:        releaseURL,
		Timeout:           httpTimeout,
		CacheTTL:          defaultCacheTTL,
		RequestsPerMinute: defaultRPM,
	}
}

// Client queries the GitHub releases API with caching, rate limiting
// and a circuit breaker in front of the shared unauthenticated quota.
type Client struct {
	client  httpclient.Client
	config  ClientConfig
	logger  logger.LoggerInterface
	limiter *ratelimit.Limiter
	cache   *cache.Cache[string, *semver.Version]
	cb      *circuitbreaker.CircuitBreaker[*semver.Version]
	tracer  trace.Tracer
}

// NewClient creates a new GitHub releases client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.ReleaseURL == "" {
		cfg.ReleaseURL = DefaultReleaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = defaultRPM
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("github"),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/vnd.github+json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client:  client,
		config:  cfg,
		logger:  log,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		cache:   cache.New[string, *semver.Version](cfg.CacheTTL),
		cb:      circuitbreaker.New[*semver.Version](circuitbreaker.DefaultConfig("github-releases")),
		tracer:  tracer,
	}, nil
}

// releaseResponse is the subset of the GitHub release payload we read.
type releaseResponse struct {
	TagName string `json:"tag_name"`
}

// APIError is an error response from the GitHub API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github API error %d: %s", e.StatusCode, e.Message)
}

// githubErrorHandler parses GitHub API error responses.
func githubErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	return apiErr
}

// LatestRelease fetches the most recent published version, serving a
// cached value when one is fresh enough.
func (c *Client) LatestRelease(ctx context.Context) (*semver.Version, error) {
	ctx, span := c.tracer.Start(ctx, "github.latest_release")
	defer span.End()

	if v, found := c.cache.Get(ctx, cacheKey); found {
		span.AddEvent("cache_hit")
		return v, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeGithubRateLimited,
			apperror.WithCause(err),
			apperror.WithContext("local rate limit wait aborted"))
	}

	v, err := c.cb.Execute(func() (*semver.Version, error) {
		return c.fetchLatest(ctx)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.cache.Set(ctx, cacheKey, v, c.config.CacheTTL)

	span.SetAttributes(attribute.String("version", v.String()))
	c.logger.Debug(ctx, "fetched latest release", "version", v.String())

	return v, nil
}

func (c *Client) fetchLatest(ctx context.Context) (*semver.Version, error) {
	var result releaseResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "latest_release")),
		httpclient.WithResponseErrorHandler(githubErrorHandler),
	).
		SetResult(&result).
		Get(ctx, c.config.ReleaseURL)

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusTooManyRequests {
				return nil, apperror.New(apperror.CodeGithubRateLimited,
					apperror.WithCause(apiErr),
					apperror.WithContext("github API quota exhausted"))
			}
			return nil, apperror.New(apperror.CodeGithubAPIError, apperror.WithCause(apiErr))
		}
		return nil, apperror.New(apperror.CodeReleaseLookupFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch latest release"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeGithubAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	v, err := domain.ParseVersion(result.TagName)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidVersionString,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("release tagged %q", result.TagName)))
	}

	return v, nil
}

// Close releases the cache janitor.
func (c *Client) Close() error {
	c.cache.Close()
	return nil
}
