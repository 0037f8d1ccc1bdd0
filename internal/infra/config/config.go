// Package config provides application-wide configuration for the Action Agent.
// Values come from an optional YAML file overlaid by environment variables;
// env always wins. Everything has a safe default except the Microsoft Graph
// MCP endpoint URL, which is required: without at least one tool server the
// agent has nothing to act with, so startup fails instead of serving a
// tool-less agent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport names for MCP endpoints.
const (
	TransportStreamable = "streamable"
	TransportSSE        = "sse"
)

// Config holds runtime configuration for the Action Agent.
type Config struct {
	// HTTP
	Host string `yaml:"host"` // ACTION_AGENT_HOST - default: "0.0.0.0"
	Port int    `yaml:"port"` // ACTION_AGENT_PORT - default: 9000

	// Model
	ModelProvider string  `yaml:"model_provider"`  // MODEL_PROVIDER - default: "ollama"
	ModelID       string  `yaml:"model_id"`        // MODEL_ID - default: "llama3.2:3b"
	Temperature   float32 `yaml:"temperature"`     // MODEL_TEMPERATURE - default: 0.3
	OllamaBaseURL string  `yaml:"ollama_base_url"` // OLLAMA_BASE_URL - default: "http://localhost:11434"

	// MCP tool servers
	MSGraphMCPURL       string `yaml:"msgraph_mcp_url"`       // MSGRAPH_MCP_URL - required
	MSGraphMCPTransport string `yaml:"msgraph_mcp_transport"` // MSGRAPH_MCP_TRANSPORT - default: "streamable"
	PingOneMCPURL       string `yaml:"pingone_mcp_url"`       // PINGONE_MCP_URL - optional
	PingOneMCPTransport string `yaml:"pingone_mcp_transport"` // PINGONE_MCP_TRANSPORT - default: "sse"

	// Storage
	DBPath string `yaml:"db_path"` // ACTION_AGENT_DB - default: "actionagent.db"

	// Instruction signing (optional; empty disables bearer auth)
	JWTSecret string `yaml:"jwt_secret"` // ACTION_AGENT_JWT_SECRET

	// A2A façade
	A2ABasePath string `yaml:"a2a_base_path"` // A2A_BASE_PATH - default: "/a2a"
	RuntimeURL  string `yaml:"runtime_url"`   // AGENTCORE_RUNTIME_URL - default: "http://127.0.0.1:9000/"

	// Per-request budget for one agent invocation, tool calls included.
	RequestTimeout time.Duration `yaml:"-"` // REQUEST_TIMEOUT_SECONDS - default: 300s

	// RequestTimeoutSeconds is the YAML spelling of RequestTimeout.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

const (
	envKeyHost                = "ACTION_AGENT_HOST"
	envKeyPort                = "ACTION_AGENT_PORT"
	envKeyModelProvider       = "MODEL_PROVIDER"
	envKeyModelID             = "MODEL_ID"
	envKeyTemperature         = "MODEL_TEMPERATURE"
	envKeyOllamaBaseURL       = "OLLAMA_BASE_URL"
	envKeyMSGraphMCPURL       = "MSGRAPH_MCP_URL"
	envKeyMSGraphMCPTransport = "MSGRAPH_MCP_TRANSPORT"
	envKeyPingOneMCPURL       = "PINGONE_MCP_URL"
	envKeyPingOneMCPTransport = "PINGONE_MCP_TRANSPORT"
	envKeyDBPath              = "ACTION_AGENT_DB"
	envKeyJWTSecret           = "ACTION_AGENT_JWT_SECRET"
	envKeyA2ABasePath         = "A2A_BASE_PATH"
	envKeyRuntimeURL          = "AGENTCORE_RUNTIME_URL"
	envKeyRequestTimeout      = "REQUEST_TIMEOUT_SECONDS"
)

// MCPEndpoint describes one remote tool server to connect to at startup.
type MCPEndpoint struct {
	Name      string
	URL       string
	Transport string
}

// Load reads configuration from environment variables alone.
// Returns an error when MSGRAPH_MCP_URL is absent.
func Load() (Config, error) {
	cfg := defaults()
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads the YAML file at path, then overlays environment variables.
func LoadFile(path string) (Config, error) {
	cfg := defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if cfg.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Endpoints lists the MCP tool servers to connect to, in a fixed order.
// The Microsoft Graph endpoint is always present (validate guarantees it);
// PingOne is included only when configured.
func (c Config) Endpoints() []MCPEndpoint {
	endpoints := []MCPEndpoint{
		{Name: "msgraph", URL: c.MSGraphMCPURL, Transport: c.MSGraphMCPTransport},
	}
	if c.PingOneMCPURL != "" {
		endpoints = append(endpoints, MCPEndpoint{
			Name:      "pingone",
			URL:       c.PingOneMCPURL,
			Transport: c.PingOneMCPTransport,
		})
	}
	return endpoints
}

// Addr returns the host:port bind address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaults() Config {
	return Config{
		Host:                "0.0.0.0",
		Port:                9000,
		ModelProvider:       "ollama",
		ModelID:             "llama3.2:3b",
		Temperature:         0.3,
		OllamaBaseURL:       "http://localhost:11434",
		MSGraphMCPTransport: TransportStreamable,
		PingOneMCPTransport: TransportSSE,
		DBPath:              "actionagent.db",
		A2ABasePath:         "/a2a",
		RuntimeURL:          "http://127.0.0.1:9000/",
		RequestTimeout:      300 * time.Second,
	}
}

func applyEnv(cfg *Config) {
	cfg.Host = envOr(envKeyHost, cfg.Host)
	cfg.Port = envIntOr(envKeyPort, cfg.Port)
	cfg.ModelProvider = envOr(envKeyModelProvider, cfg.ModelProvider)
	cfg.ModelID = envOr(envKeyModelID, cfg.ModelID)
	cfg.Temperature = envFloatOr(envKeyTemperature, cfg.Temperature)
	cfg.OllamaBaseURL = envOr(envKeyOllamaBaseURL, cfg.OllamaBaseURL)
	cfg.MSGraphMCPURL = envOr(envKeyMSGraphMCPURL, cfg.MSGraphMCPURL)
	cfg.MSGraphMCPTransport = envOr(envKeyMSGraphMCPTransport, cfg.MSGraphMCPTransport)
	cfg.PingOneMCPURL = envOr(envKeyPingOneMCPURL, cfg.PingOneMCPURL)
	cfg.PingOneMCPTransport = envOr(envKeyPingOneMCPTransport, cfg.PingOneMCPTransport)
	cfg.DBPath = envOr(envKeyDBPath, cfg.DBPath)
	cfg.JWTSecret = envOr(envKeyJWTSecret, cfg.JWTSecret)
	cfg.A2ABasePath = envOr(envKeyA2ABasePath, cfg.A2ABasePath)
	cfg.RuntimeURL = envOr(envKeyRuntimeURL, cfg.RuntimeURL)
	if secs := envIntOr(envKeyRequestTimeout, 0); secs > 0 {
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}
}

func (c Config) validate() error {
	if c.MSGraphMCPURL == "" {
		return fmt.Errorf("config: %s must be set", envKeyMSGraphMCPURL)
	}
	for _, ep := range c.Endpoints() {
		if ep.Transport != TransportStreamable && ep.Transport != TransportSSE {
			return fmt.Errorf("config: endpoint %q has unknown transport %q (want %q or %q)",
				ep.Name, ep.Transport, TransportStreamable, TransportSSE)
		}
	}
	return nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses the environment variable key as an int, or returns fallback.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envFloatOr parses the environment variable key as a float32, or returns fallback.
func envFloatOr(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}
