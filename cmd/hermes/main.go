// Package main is the entry point for the Hermes trading client.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/comit-network/hermes/business/compat"
	compatDI "github.com/comit-network/hermes/business/compat/di"
	compatDomain "github.com/comit-network/hermes/business/compat/domain"
	"github.com/comit-network/hermes/business/feed"
	feedDI "github.com/comit-network/hermes/business/feed/di"
	feedDomain "github.com/comit-network/hermes/business/feed/domain"
	"github.com/comit-network/hermes/business/monitor"
	monitorDI "github.com/comit-network/hermes/business/monitor/di"
	monitorDomain "github.com/comit-network/hermes/business/monitor/domain"
	"github.com/comit-network/hermes/business/pricefeed"
	pricefeedDI "github.com/comit-network/hermes/business/pricefeed/di"
	pricefeedDomain "github.com/comit-network/hermes/business/pricefeed/domain"
	"github.com/comit-network/hermes/internal/apm"
	"github.com/comit-network/hermes/internal/config"
	"github.com/comit-network/hermes/internal/health"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/metrics"
	"github.com/comit-network/hermes/internal/monolith"
	"github.com/comit-network/hermes/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hermes %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.App.TUIMode = tuiMode

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting Hermes trading client",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		// Initialize tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&feed.Module{},      // Must be first - provides the daemon event feed
		&pricefeed.Module{}, // Independent BitMEX stream
		&compat.Module{},    // One-shot version check
		&monitor.Module{},   // Depends on feed and compat
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	// Readiness tracks both streams independently
	feedSvc := feedDI.GetFeedService(mono.Services())
	priceSvc := pricefeedDI.GetPriceService(mono.Services())
	healthServer.RegisterCheck("channel", func(ctx context.Context) (bool, string) {
		if feedSvc.Connected() {
			return true, ""
		}
		return false, "daemon event channel disconnected"
	})
	healthServer.RegisterCheck("price_feed", func(ctx context.Context) (bool, string) {
		if priceSvc.Connected() {
			return true, ""
		}
		return false, "price feed disconnected"
	})

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func() error {
			// Attach the TUI observers before anything connects so no
			// early event is missed.
			wireTUI(ctx, mono)
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			return nil
		}
		stopFunc := func() {
			closeServices(ctx, mono, log)
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	return runCLI(ctx, mono, log)
}

// wireTUI routes every service observer into the Bubble Tea program.
func wireTUI(ctx context.Context, mono monolith.Monolith) {
	feedSvc := feedDI.GetFeedService(mono.Services())
	priceSvc := pricefeedDI.GetPriceService(mono.Services())
	compatSvc := compatDI.GetCompatService(mono.Services())
	monitorSvc := monitorDI.GetMonitorService(mono.Services())

	// Route alert dismissals (the d key) to the monitor
	ui.OnDismissAlert = func(id string) {
		monitorSvc.Dismiss(ctx, monitorDomain.AlertID(id))
	}

	feedSvc.OnConnectionChange(func(connected bool) {
		ui.Send(ui.ChannelStatusMsg{Connected: connected})
	})
	feedSvc.OnWallet(func(w feedDomain.WalletInfo) {
		ui.Send(ui.WalletMsg{Wallet: w})
	})
	feedSvc.OnQuote(func(q feedDomain.Quote) {
		ui.Send(ui.QuoteMsg{Quote: q})
	})
	feedSvc.OnCfds(func(cfds []feedDomain.Cfd) {
		ui.Send(ui.CfdsMsg{Cfds: cfds})
	})
	feedSvc.OnIdentity(func(id feedDomain.IdentityInfo) {
		ui.Send(ui.IdentityMsg{Identity: id})
	})
	feedSvc.OnLongOffer(func(offer feedDomain.DisplayOffer) {
		ui.Send(ui.OfferMsg{Position: feedDomain.PositionLong, Offer: offer})
	})
	feedSvc.OnShortOffer(func(offer feedDomain.DisplayOffer) {
		ui.Send(ui.OfferMsg{Position: feedDomain.PositionShort, Offer: offer})
	})
	priceSvc.OnPrice(func(price pricefeedDomain.MarkPrice) {
		ui.Send(ui.MarkPriceMsg{Price: price})
	})
	compatSvc.OnResult(func(pair compatDomain.VersionPair) {
		// The check completing with unknown sides is still completion
		ui.Send(ui.StartupMsg{Step: "version", Status: "done"})
		if pair.Known() {
			ui.Send(ui.VersionMsg{Daemon: pair.Self.String(), Latest: pair.Latest.String()})
		}
	})

	// The price stream exposes no connectivity observer, so poll it. The
	// first pass also seeds both status lines on the startup screen.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		last := priceSvc.Connected()
		ui.Send(ui.PriceFeedStatusMsg{Connected: last})
		ui.Send(ui.ChannelStatusMsg{Connected: feedSvc.Connected()})

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if now := priceSvc.Connected(); now != last {
					last = now
					ui.Send(ui.PriceFeedStatusMsg{Connected: now})
				}
			}
		}
	}()
}

// closeServices tears down the long-lived streams.
func closeServices(ctx context.Context, mono monolith.Monolith, log logger.LoggerInterface) {
	if err := feedDI.GetFeedService(mono.Services()).Close(); err != nil {
		log.Error(ctx, "error closing daemon feed", "error", err)
	}
	if err := pricefeedDI.GetPriceService(mono.Services()).Close(); err != nil {
		log.Error(ctx, "error closing price feed", "error", err)
	}
	if closer, ok := compatDI.GetReleaseSource(mono.Services()).(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error(ctx, "error closing release client", "error", err)
		}
	}
}

func runCLI(ctx context.Context, mono monolith.Monolith, log *logger.Logger) error {
	log.Info(ctx, "all modules started, streaming daemon state")

	feedSvc := feedDI.GetFeedService(mono.Services())
	priceSvc := pricefeedDI.GetPriceService(mono.Services())

	// Alerts arrive through the log notifier as they fire; this ticker
	// adds a heartbeat so quiet periods still show the stream state.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			closeServices(context.Background(), mono, log)
			return nil
		case <-ticker.C:
			args := []any{
				"channel_connected", feedSvc.Connected(),
				"price_feed_connected", priceSvc.Connected(),
			}
			if price, ok := priceSvc.LatestPrice(); ok {
				args = append(args, "mark_price", price.StringFixed(2))
			}
			if quote, ok := feedSvc.Quote(); ok {
				args = append(args, "bid", quote.Bid.StringFixed(2), "ask", quote.Ask.StringFixed(2))
			}
			log.Info(ctx, "status", args...)
		}
	}
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run client logic in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
			// Welcome complete, start modules
		case <-ctx.Done():
			errCh <- nil
			return
		}

		// Start modules (connections happen here, TUI shows progress)
		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		// Wait for context cancellation
		<-ctx.Done()

		// Tear down streams
		stopFunc()
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for client errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
