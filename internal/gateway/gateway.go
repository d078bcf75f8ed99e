// ABOUTME: Gateway orchestrator wiring store, remote client, and session service
// ABOUTME: Manages the HTTP server lifecycle with graceful shutdown

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nextgenius/recall-gateway/internal/config"
	"github.com/nextgenius/recall-gateway/internal/remote"
	"github.com/nextgenius/recall-gateway/internal/session"
	"github.com/nextgenius/recall-gateway/internal/store"
)

// Gateway owns the server-side components: the SQLite store, the remote
// conversation client, the session orchestrator, and the HTTP server that
// exposes them.
type Gateway struct {
	config     *config.Config
	store      store.Store
	remote     remote.Gateway
	session    *session.Service
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Gateway from configuration. All dependencies are constructed
// here and injected down; nothing holds process-global state.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gateway")

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	var opts []remote.Option
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, remote.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if cfg.OpenAI.Model != "" {
		opts = append(opts, remote.WithModel(cfg.OpenAI.Model))
	}
	rc := remote.NewOpenAIClient(cfg.OpenAI.APIKey, opts...)

	g := &Gateway{
		config:  cfg,
		store:   st,
		remote:  rc,
		session: session.New(st, rc, logger),
		logger:  logger,
	}

	mux := http.NewServeMux()
	g.registerRoutes(mux)

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g, nil
}

// registerRoutes attaches all HTTP handlers to the mux. Route paths mirror
// the public contract exactly.
func (g *Gateway) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /create_user", g.handleCreateUser)
	mux.HandleFunc("POST /create_assistant", g.handleCreateAssistant)
	mux.HandleFunc("POST /create_thread", g.handleCreateThread)
	mux.HandleFunc("POST /chat_with_memory", g.handleChatWithMemory)
	mux.HandleFunc("GET /messages_with_memory", g.handleMessagesWithMemory)
	mux.HandleFunc("POST /api/chat", g.handleChat)
	mux.HandleFunc("POST /api/code", g.handleCode)
	mux.HandleFunc("GET /api/connection", g.handleConnection)
	mux.HandleFunc("GET /healthz", g.handleHealthz)
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes the store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := g.httpServer.Shutdown(ctx); err != nil {
		g.logger.Error("HTTP server shutdown failed", "error", err)
		firstErr = err
	}

	if err := g.store.Close(); err != nil {
		g.logger.Error("store close failed", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	g.logger.Info("gateway stopped")
	return firstErr
}
