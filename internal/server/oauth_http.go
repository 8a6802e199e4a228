package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers/dex"
	oauthserver "github.com/giantswarm/mcp-oauth/server"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// OAuthProviderDex is the Dex OIDC provider.
	OAuthProviderDex = "dex"

	// CallbackPath receives the authorization code from the provider.
	CallbackPath = "/oauth/callback"

	defaultReadHeaderTimeout = 10 * time.Second
	// run_eval responds only after the whole run has finished.
	defaultWriteTimeout = 10 * time.Minute
	defaultIdleTimeout  = 120 * time.Second

	maxClientsPerIP = 10
)

// OAuthConfig holds configuration for the OAuth-enabled HTTP server.
type OAuthConfig struct {
	// BaseURL is the server's public base URL (e.g. https://triage-eval.example.com).
	BaseURL string

	// Provider is the OAuth provider name. Only "dex" is supported; empty means dex.
	Provider string

	DexIssuerURL    string
	DexClientID     string
	DexClientSecret string

	// Metrics, when set, is served unauthenticated on /metrics.
	Metrics http.Handler
}

// Validate checks the provider, the Dex credentials and the base URL.
func (c OAuthConfig) Validate() error {
	if c.Provider != "" && c.Provider != OAuthProviderDex {
		return fmt.Errorf("unsupported OAuth provider %q (supported: %s)", c.Provider, OAuthProviderDex)
	}
	if err := validateHTTPSRequirement(c.BaseURL); err != nil {
		return fmt.Errorf("OAuth base URL validation failed: %w", err)
	}

	var missing []error
	if c.DexIssuerURL == "" {
		missing = append(missing, errors.New("dex issuer URL is required"))
	}
	if c.DexClientID == "" {
		missing = append(missing, errors.New("dex client ID is required"))
	}
	if c.DexClientSecret == "" {
		missing = append(missing, errors.New("dex client secret is required"))
	}
	return errors.Join(missing...)
}

// OAuthHTTPServer serves the MCP endpoint behind OAuth 2.1 bearer tokens.
type OAuthHTTPServer struct {
	mcpServer    *mcpserver.MCPServer
	mcpEndpoint  string
	metrics      http.Handler
	oauthServer  *oauth.Server
	oauthHandler *oauth.Handler
	httpServer   *http.Server
}

// NewOAuthHTTPServer validates cfg and sets up the Dex-backed authorization server.
func NewOAuthHTTPServer(mcpSrv *mcpserver.MCPServer, mcpEndpoint string, cfg OAuthConfig) (*OAuthHTTPServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := dex.NewProvider(&dex.Config{
		IssuerURL:    cfg.DexIssuerURL,
		ClientID:     cfg.DexClientID,
		ClientSecret: cfg.DexClientSecret,
		RedirectURL:  cfg.BaseURL + CallbackPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Dex provider: %w", err)
	}

	// Clients and tokens live only as long as the process.
	store := memory.New()
	logger := slog.Default()

	oauthSrv, err := oauth.NewServer(provider, store, store, store,
		&oauthserver.Config{
			Issuer:                    cfg.BaseURL,
			AllowRefreshTokenRotation: true,
			MaxClientsPerIP:           maxClientsPerIP,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}

	return &OAuthHTTPServer{
		mcpServer:    mcpSrv,
		mcpEndpoint:  mcpEndpoint,
		metrics:      cfg.Metrics,
		oauthServer:  oauthSrv,
		oauthHandler: oauth.NewHandler(oauthSrv, logger),
	}, nil
}

// Handler returns the routes: OAuth endpoints, the MCP endpoint behind
// token validation, the health check and optional metrics.
func (s *OAuthHTTPServer) Handler() http.Handler {
	h := s.oauthHandler
	mcpHandler := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(s.mcpEndpoint),
	)
	mux := NewMux(s.mcpEndpoint, h.ValidateToken(mcpHandler), s.metrics)

	h.RegisterAuthorizationServerMetadataRoutes(mux)
	h.RegisterProtectedResourceMetadataRoutes(mux, s.mcpEndpoint)

	routes := map[string]http.HandlerFunc{
		"/oauth/authorize":  h.ServeAuthorization,
		"/oauth/token":      h.ServeToken,
		CallbackPath:        h.ServeCallback,
		"/oauth/register":   h.ServeClientRegistration,
		"/oauth/revoke":     h.ServeTokenRevocation,
		"/oauth/introspect": h.ServeTokenIntrospection,
	}
	for path, fn := range routes {
		mux.HandleFunc(path, fn)
	}
	return mux
}

// Start serves on addr until Shutdown is called.
func (s *OAuthHTTPServer) Start(addr string) error {
	s.httpServer = NewHTTPServer(addr, s.Handler())
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the token store and the HTTP listener.
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	if err := s.oauthServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown OAuth server", "error", err)
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// validateHTTPSRequirement rejects plain HTTP except on loopback hosts.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return errors.New("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if isLoopback(u.Hostname()) {
			return nil
		}
		return fmt.Errorf("OAuth 2.1 requires HTTPS outside localhost (got: %s)", baseURL)
	default:
		return fmt.Errorf("invalid URL scheme: %s (must be http for localhost or https)", u.Scheme)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
