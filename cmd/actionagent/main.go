// Action Agent - identity action execution service entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterholko-pingidentity/action-agent/internal/a2a"
	"github.com/peterholko-pingidentity/action-agent/internal/api"
	"github.com/peterholko-pingidentity/action-agent/internal/domain/agent"
	domainrun "github.com/peterholko-pingidentity/action-agent/internal/domain/run"
	"github.com/peterholko-pingidentity/action-agent/internal/domain/tool"
	"github.com/peterholko-pingidentity/action-agent/internal/infra/config"
	"github.com/peterholko-pingidentity/action-agent/internal/infra/llm"
	"github.com/peterholko-pingidentity/action-agent/internal/infra/mcp"
	"github.com/peterholko-pingidentity/action-agent/internal/infra/sqlite"
	"github.com/peterholko-pingidentity/action-agent/internal/server"
	"github.com/peterholko-pingidentity/action-agent/internal/version"
)

const clientName = "action-agent"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("actionagent", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config", "", "Path to YAML config file (env vars override)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}
	if *showHelp {
		printHelp(out)
		return 0
	}

	if err := serve(out, *configPath); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err) //nolint:errcheck
		return 1
	}
	return 0
}

// serve wires the whole application and blocks until shutdown.
func serve(out io.Writer, configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close()
		return err
	}

	// Fail closed: every configured tool endpoint must answer at startup.
	endpoints := make([]mcp.Endpoint, 0, 2)
	for _, e := range cfg.Endpoints() {
		endpoints = append(endpoints, mcp.Endpoint{
			Name:      e.Name,
			URL:       e.URL,
			Transport: e.Transport,
		})
	}
	manager, err := mcp.Connect(ctx, clientName, version.Version, endpoints)
	if err != nil {
		db.Close()
		return err
	}
	fmt.Fprintf(out, "Connected to %d tool server(s), %d remote tool(s)\n", //nolint:errcheck
		len(manager.Servers()), manager.ToolCount())

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry, tool.NewActionLogger(out)); err != nil {
		manager.Close()
		db.Close()
		return err
	}
	if err := tool.RegisterMCPTools(registry, manager); err != nil {
		manager.Close()
		db.Close()
		return err
	}

	provider, err := llm.NewProvider(cfg.ModelProvider, cfg.ModelID, cfg.OllamaBaseURL)
	if err != nil {
		manager.Close()
		db.Close()
		return err
	}

	actionAgent, err := agent.New(provider, registry, agent.Options{
		Model:       cfg.ModelID,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		manager.Close()
		db.Close()
		return err
	}

	recorder := domainrun.NewRecorder(db)

	var a2aHandler http.Handler
	if cfg.A2ABasePath != "" {
		a2aHandler = a2a.NewHandler(actionAgent, recorder, cfg.RuntimeURL)
	}

	router := api.NewRouter(api.Deps{
		Agent:       actionAgent,
		Recorder:    recorder,
		JWTSecret:   []byte(cfg.JWTSecret),
		Timeout:     cfg.RequestTimeout,
		A2AHandler:  a2aHandler,
		A2ABasePath: cfg.A2ABasePath,
	})

	serverCfg := server.DefaultConfig()
	serverCfg.Host = cfg.Host
	serverCfg.Port = cfg.Port
	srv := server.NewServer(router, db, manager, serverCfg)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultConfig().IdleTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printHelp(out io.Writer) {
	helpText := `Action Agent - executes identity and access management actions

Usage:
  actionagent [options]

Options:
  --version         Show version information
  --help            Show this help message
  --config <path>   Load settings from a YAML file (env vars override)

Environment:
  ACTION_AGENT_HOST / ACTION_AGENT_PORT   Bind address (default 0.0.0.0:9000)
  MODEL_PROVIDER / MODEL_ID               Model backend (ollama or openai)
  MSGRAPH_MCP_URL                         Microsoft Graph tool server (required)
  PINGONE_MCP_URL                         PingOne tool server (optional)
  ACTION_AGENT_DB                         Run-history SQLite path
  ACTION_AGENT_JWT_SECRET                 Enables signed-instruction auth

Examples:
  actionagent --version
  MSGRAPH_MCP_URL=http://localhost:8080/mcp actionagent`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
