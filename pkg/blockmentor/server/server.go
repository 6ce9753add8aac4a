// Package server exposes the mentor service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/flowchart"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/observability"
)

// Backend is the part of *blockmentor.Service the API needs.
type Backend interface {
	Flowchart(ctx context.Context, code string) (flowchart.Result, error)
	Describe(ctx context.Context, code string) (*blockmentor.Description, error)
	DescribeUpdate(ctx context.Context, oldCode, newCode string) (*blockmentor.Description, error)
	Chat(ctx context.Context, req blockmentor.ChatRequest) (*blockmentor.ChatResponse, error)
	Analyze(ctx context.Context, req blockmentor.AnalysisRequest) (*blockmentor.Analysis, error)
}

var _ Backend = (*blockmentor.Service)(nil)

// Config holds listener settings.
type Config struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	// MaxBodyBytes caps request bodies; project files carry base64 media.
	MaxBodyBytes int64
}

// Server serves the HTTP API.
type Server struct {
	backend Backend
	cfg     Config
	logger  *slog.Logger
	handler http.Handler
}

// New builds a Server. A nil logger discards output.
func New(backend Backend, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 32 << 20
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	s := &Server{backend: backend, cfg: cfg, logger: logger}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped API handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /projectcode/", s.handleProjectCode)
	mux.HandleFunc("POST /updatecode/", s.handleUpdateCode)
	mux.HandleFunc("POST /chat/", s.handleChat)
	mux.HandleFunc("POST /analysis/", s.handleAnalysis)
	mux.HandleFunc("POST /flowchart/", s.handleFlowchart)

	var h http.Handler = mux
	h = s.logRequests(h)
	h = s.requestID(h)
	h = cors(s.cfg.CORSOrigins)(h)
	return otelhttp.NewHandler(h, "blockmentor",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown failed", "error", err)
		return err
	}
	s.logger.Debug("server shut down gracefully")
	return <-errCh
}
