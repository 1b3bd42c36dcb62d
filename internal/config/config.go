package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime setting for the service.
type Config struct {
	Server ServerConfig
	Relay  RelayConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	relay, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Relay: relay}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RelayConfig describes the Langflow run endpoint the relay posts to.
type RelayConfig struct {
	RunURL         string
	Token          string
	AgentComponent string
	Timeout        time.Duration
	HistoryLimit   int
	InlineHistory  bool
}

// Enabled reports whether the relay has the settings it needs.
func (c RelayConfig) Enabled() bool {
	return c.RunURL != "" && c.Token != ""
}

func loadRelayConfig() (RelayConfig, error) {
	timeoutSeconds := 120
	if override, err := parseOptionalIntEnv("RELAY_TIMEOUT_SECONDS"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return RelayConfig{}, fmt.Errorf("RELAY_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	historyLimit := 20
	if override, err := parseOptionalIntEnv("RELAY_HISTORY_LIMIT"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		if *override < 1 {
			historyLimit = 1
		} else {
			historyLimit = *override
		}
	}

	inlineHistory, err := parseBoolEnv("RELAY_INLINE_HISTORY", false)
	if err != nil {
		return RelayConfig{}, err
	}

	return RelayConfig{
		RunURL:         strings.TrimSpace(os.Getenv("LANGFLOW_RUN_URL")),
		Token:          strings.TrimSpace(os.Getenv("LANGFLOW_TOKEN")),
		AgentComponent: getEnvOrDefault("LANGFLOW_AGENT_COMPONENT", "Agent-Ex18F"),
		Timeout:        time.Duration(timeoutSeconds) * time.Second,
		HistoryLimit:   historyLimit,
		InlineHistory:  inlineHistory,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
