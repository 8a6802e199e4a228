package server

import (
	"net/http"
)

const (
	// HealthPath answers liveness probes.
	HealthPath = "/healthz"

	// MetricsPath exposes Prometheus metrics when a handler is configured.
	MetricsPath = "/metrics"
)

// NewMux routes the MCP endpoint, the health check and, when metrics is
// non-nil, the metrics endpoint. Health and metrics are unauthenticated.
func NewMux(endpoint string, mcpHandler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(endpoint, mcpHandler)
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metrics != nil {
		mux.Handle(MetricsPath, metrics)
	}
	return mux
}

// NewHTTPServer wraps handler with the default timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
}
