// HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/peterholko-pingidentity/action-agent/internal/infra/mcp"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration.
// WriteTimeout is disabled: agent invocations block on model and tool
// backends and regularly run for minutes; the per-request timeout lives in
// the handlers instead.
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        9000,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

// Server wraps the HTTP server together with the resources it owns: the run
// database and the remote tool sessions.
type Server struct {
	config Config
	db     *sql.DB
	mcp    *mcp.Manager
	http   *http.Server
}

// NewServer creates the HTTP server around an already-wired handler. db and
// manager may be nil in tests; when set, Shutdown closes them.
func NewServer(handler http.Handler, db *sql.DB, manager *mcp.Manager, config Config) *Server {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config: config,
		db:     db,
		mcp:    manager,
		http:   httpServer,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	fmt.Printf("Starting HTTP server on %s\n", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server, then releases the tool sessions and
// the database, in reverse order of acquisition.
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("Shutting down server...")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if s.mcp != nil {
		if err := s.mcp.Close(); err != nil {
			return fmt.Errorf("tool session close error: %w", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("database close error: %w", err)
		}
	}

	fmt.Println("Server shutdown complete")
	return nil
}
