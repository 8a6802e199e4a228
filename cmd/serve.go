package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/giantswarm/triage-eval/internal/baseline"
	mcptools "github.com/giantswarm/triage-eval/internal/mcp"
	"github.com/giantswarm/triage-eval/internal/metrics"
	"github.com/giantswarm/triage-eval/internal/server"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"

	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	var (
		transport    string
		httpAddr     string
		httpEndpoint string
		outputDir    string
		baselineDir  string
		fixturesDir  string
		noMetrics    bool

		enableOAuth     bool
		oauthBaseURL    string
		oauthProvider   string
		dexIssuerURL    string
		dexClientID     string
		dexClientSecret string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose the evaluation harness via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default, for IDE integration)
  - streamable-http: HTTP with streaming support (for remote access)

When using streamable-http transport, OAuth 2.1 authentication can be enabled
and Prometheus metrics for the latest run are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if baselineDir != "" {
				cfg.BaselineDir = baselineDir
			}
			if fixturesDir != "" {
				cfg.FixturesDir = fixturesDir
			}

			sc := &server.ServerContext{
				LLMClient: clientFactory(cfg),
				Config:    cfg,
				Baseline:  baseline.NewFileStore(cfg.BaselineDir),
			}

			var metricsHandler http.Handler
			if !noMetrics {
				reg := prometheus.NewRegistry()
				sc.Recorder, err = metrics.NewRecorder(reg)
				if err != nil {
					return err
				}
				metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
			}

			mcpSrv := mcpserver.NewMCPServer("triage-eval", cmd.Root().Version,
				mcpserver.WithToolCapabilities(true),
			)

			if err := mcptools.RegisterTools(mcpSrv, sc); err != nil {
				return fmt.Errorf("failed to register MCP tools: %w", err)
			}

			shutdownCtx, cancel := signal.NotifyContext(cmd.Context(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// stdout carries the stdio protocol; status lines go to stderr.
			out := cmd.ErrOrStderr()

			switch transport {
			case transportStdio:
				return runStdioServer(mcpSrv)
			case transportStreamableHTTP:
				_, _ = fmt.Fprintf(out, "Starting triage-eval MCP server with %s transport...\n", transport)
				if enableOAuth {
					return runOAuthHTTPServer(shutdownCtx, out, mcpSrv, httpAddr, httpEndpoint, oauthConfig{
						baseURL:         oauthBaseURL,
						provider:        oauthProvider,
						dexIssuerURL:    dexIssuerURL,
						dexClientID:     dexClientID,
						dexClientSecret: dexClientSecret,
						metrics:         metricsHandler,
					})
				}
				return runHTTPServer(shutdownCtx, out, mcpSrv, httpAddr, httpEndpoint, metricsHandler)
			default:
				return fmt.Errorf("unsupported transport: %s (supported: stdio, streamable-http)", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for run results (default: from config)")
	cmd.Flags().StringVar(&baselineDir, "baseline-dir", "", "Directory holding baseline.json (default: from config)")
	cmd.Flags().StringVar(&fixturesDir, "fixtures-dir", "", "External fixture sets directory (default: from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable the /metrics endpoint")

	cmd.Flags().BoolVar(&enableOAuth, "enable-oauth", false, "Enable OAuth 2.1 authentication (for HTTP transport)")
	cmd.Flags().StringVar(&oauthBaseURL, "oauth-base-url", "", "OAuth base URL (e.g. https://triage-eval.example.com)")
	cmd.Flags().StringVar(&oauthProvider, "oauth-provider", server.OAuthProviderDex, "OAuth provider: dex")
	cmd.Flags().StringVar(&dexIssuerURL, "dex-issuer-url", "", "Dex OIDC issuer URL")
	cmd.Flags().StringVar(&dexClientID, "dex-client-id", "", "Dex OAuth client ID")
	cmd.Flags().StringVar(&dexClientSecret, "dex-client-secret", "", "Dex OAuth client secret")

	return cmd
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, out io.Writer, mcpSrv *mcpserver.MCPServer, addr, endpoint string, metricsHandler http.Handler) error {
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	)
	httpServer := server.NewHTTPServer(addr, server.NewMux(endpoint, mcpHandler, metricsHandler))

	_, _ = fmt.Fprintf(out, "  HTTP endpoint: %s\n", endpoint)
	_, _ = fmt.Fprintf(out, "  Health: %s\n", server.HealthPath)
	if metricsHandler != nil {
		_, _ = fmt.Fprintf(out, "  Metrics: %s\n", server.MetricsPath)
	}

	return serveUntilDone(ctx, out, httpServer.ListenAndServe, httpServer.Shutdown)
}

type oauthConfig struct {
	baseURL         string
	provider        string
	dexIssuerURL    string
	dexClientID     string
	dexClientSecret string
	metrics         http.Handler
}

// resolve fills missing Dex credentials from DEX_ISSUER_URL, DEX_CLIENT_ID
// and DEX_CLIENT_SECRET.
func (c *oauthConfig) resolve() error {
	setFromEnv(&c.dexIssuerURL, "DEX_ISSUER_URL")
	setFromEnv(&c.dexClientID, "DEX_CLIENT_ID")
	setFromEnv(&c.dexClientSecret, "DEX_CLIENT_SECRET")

	if c.baseURL == "" {
		return fmt.Errorf("--oauth-base-url is required when --enable-oauth is set")
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func runOAuthHTTPServer(ctx context.Context, out io.Writer, mcpSrv *mcpserver.MCPServer, addr, endpoint string, cfg oauthConfig) error {
	if err := cfg.resolve(); err != nil {
		return err
	}

	oauthSrv, err := server.NewOAuthHTTPServer(mcpSrv, endpoint, server.OAuthConfig{
		BaseURL:         cfg.baseURL,
		Provider:        cfg.provider,
		DexIssuerURL:    cfg.dexIssuerURL,
		DexClientID:     cfg.dexClientID,
		DexClientSecret: cfg.dexClientSecret,
		Metrics:         cfg.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create OAuth HTTP server: %w", err)
	}

	_, _ = fmt.Fprintf(out, "OAuth-enabled HTTP server starting on %s\n", addr)
	_, _ = fmt.Fprintf(out, "  Base URL: %s\n", cfg.baseURL)
	_, _ = fmt.Fprintf(out, "  Provider: %s\n", cfg.provider)
	_, _ = fmt.Fprintf(out, "  MCP endpoint: %s (requires OAuth Bearer token)\n", endpoint)
	_, _ = fmt.Fprintf(out, "  Health: %s\n", server.HealthPath)
	if cfg.metrics != nil {
		_, _ = fmt.Fprintf(out, "  Metrics: %s\n", server.MetricsPath)
	}

	return serveUntilDone(ctx, out, func() error { return oauthSrv.Start(addr) }, oauthSrv.Shutdown)
}

// serveUntilDone runs serve until it fails or ctx is cancelled, then shuts down.
func serveUntilDone(ctx context.Context, out io.Writer, serve func() error, shutdown func(context.Context) error) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := serve(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(out, "Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	slog.Info("HTTP server stopped")
	return nil
}
