package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server for the donation API with graceful startup
// and shutdown helpers.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer builds the server for the funds API. Donation requests are
// small JSON bodies; header budget is capped accordingly, and the webhook
// endpoint enforces its own body limit.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		MaxHeaderBytes:    64 << 10,
	}

	return &HTTPServer{server: srv}
}

// Start runs the HTTP server in the current goroutine.
func (s *HTTPServer) Start() error {
	if s.server == nil {
		return nil
	}
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests before stopping. A donation submission
// interrupted mid-record is what the reconciler exists to repair, but a
// clean drain keeps that path exceptional.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
