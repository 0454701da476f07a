package domain

import (
	"net"
	"os"
	"strings"
	"time"
)

// Config is the full runtime configuration resolved at startup.
type Config struct {
	ScanDirectory string
	Watch         bool
	CachePath     string

	Recommender   RecommenderConfig
	Registry      RegistryConfig
	Transport     TransportConfig
	Observability ObservabilityConfig
}

// RecommenderConfig configures the LLM used for tool selection.
type RecommenderConfig struct {
	Provider       string
	Model          string
	APIKey         string
	APIKeyEnvVar   string
	BaseURL        string
	TimeoutSeconds int
	AssessUpdates  bool
}

// Timeout returns the per-call deadline for the model.
func (c RecommenderConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultRecommenderTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// ResolveAPIKey returns the inline key or reads the configured env var.
func (c RecommenderConfig) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key, nil
	}
	envVar := strings.TrimSpace(c.APIKeyEnvVar)
	if envVar == "" {
		envVar = DefaultGeminiAPIKeyEnvVar
	}
	key := strings.TrimSpace(os.Getenv(envVar))
	if key == "" {
		return "", E(CodeFailedPrecond, "config.recommender",
			"API key not found: set recommender.apiKey or env var "+envVar, nil)
	}
	return key, nil
}

// RegistryConfig configures the optional remote tool registry.
type RegistryConfig struct {
	Enabled        bool
	BaseURL        string
	APIKeyEnvVar   string
	TimeoutSeconds int
	PageLimit      int
}

// Timeout returns the per-request deadline for registry fetches.
func (c RegistryConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultRegistryTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// TransportConfig selects and configures the MCP transport.
type TransportConfig struct {
	Mode         string // "stdio" or "streamable-http"
	HTTPAddr     string
	HTTPPath     string
	HTTPToken    string
	JSONResponse bool
}

// ObservabilityConfig configures the metrics/health listener.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddress string
}

// Validate checks invariants that must hold before the server starts.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "streamable-http":
	default:
		return E(CodeInvalidArgument, "config.validate",
			"transport mode must be stdio or streamable-http, got "+c.Transport.Mode, nil)
	}
	if c.Transport.Mode == "streamable-http" {
		addr := strings.TrimSpace(c.Transport.HTTPAddr)
		if addr == "" {
			return E(CodeInvalidArgument, "config.validate", "http listen address is required", nil)
		}
		if !isLoopbackAddr(addr) && strings.TrimSpace(c.Transport.HTTPToken) == "" {
			return E(CodeInvalidArgument, "config.validate",
				"http token is required when binding to a non-loopback address", nil)
		}
		if !strings.HasPrefix(c.Transport.HTTPPath, "/") {
			return E(CodeInvalidArgument, "config.validate", "http path must start with /", nil)
		}
	}
	if c.Registry.Enabled && strings.TrimSpace(c.Registry.BaseURL) == "" {
		return E(CodeInvalidArgument, "config.validate", "registry base URL is required when registry is enabled", nil)
	}
	if _, err := c.Recommender.ResolveAPIKey(); err != nil {
		return err
	}
	return nil
}

func isLoopbackAddr(addr string) bool {
	host := addr
	if strings.Contains(addr, ":") {
		if h, _, err := net.SplitHostPort(addr); err == nil {
			host = h
		}
	}
	host = strings.TrimSpace(host)
	if host == "" || host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}
