// Package config loads newsdesk configuration from an optional YAML
// file with environment variable overrides layered on top. The
// environment names match the original deployment's .env conventions.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newsdesk-ai/newsdesk/mcp"
)

// Server describes how to launch one tool-provider process
type Server struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
}

// Parameters converts the server entry to launch parameters
func (s Server) Parameters() mcp.ServerParameters {
	return mcp.ServerParameters{
		Command: s.Command,
		Args:    s.Args,
		Env:     s.Env,
	}
}

// Config is the full newsdesk configuration
type Config struct {
	// APIKey authorizes LLM calls. May be a 1Password secret
	// reference (op://vault/item/field).
	APIKey string `yaml:"api_key"`

	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`

	// UseToolServers launches the thinking and memory tool-provider
	// processes. When false, thinking falls back to the in-process
	// implementation and no knowledge graph is kept.
	UseToolServers bool `yaml:"use_tool_servers"`
	// EnableThinking turns off the thinking server only, keeping memory
	EnableThinking bool `yaml:"enable_thinking"`

	MaxSearchResults int `yaml:"max_search_results"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	CallTimeout    time.Duration `yaml:"call_timeout"`

	Thinking Server `yaml:"thinking_server"`
	Memory   Server `yaml:"memory_server"`
}

// Default returns the configuration used when no file is present. Tool
// servers run via npx, matching the upstream server distributions.
func Default() *Config {
	return &Config{
		Model:            "gpt-4o-mini",
		Temperature:      0.7,
		UseToolServers:   true,
		EnableThinking:   true,
		MaxSearchResults: 3,
		ConnectTimeout:   30 * time.Second,
		CallTimeout:      60 * time.Second,
		Thinking: Server{
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-sequential-thinking"},
		},
		Memory: Server{
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-memory"},
		},
	}
}

// LoadFile loads configuration from a YAML file, falling back to
// defaults when path is empty or the file does not exist. Environment
// overrides apply in both cases.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses YAML configuration over the defaults and applies
// environment overrides
func Load(r io.Reader) (*Config, error) {
	cfg := Default()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers environment variables over the loaded values
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = t
		}
	}
	if v := os.Getenv("USE_REAL_MCP"); v != "" {
		c.UseToolServers = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ENABLE_MCP_THINKING"); v != "" {
		c.EnableThinking = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("MAX_SEARCH_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxSearchResults = n
		}
	}
}

// Validate reports configuration the pipeline cannot run with
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY not set; export it or set api_key in the config file")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.UseToolServers {
		if c.EnableThinking && c.Thinking.Command == "" {
			return errors.New("thinking_server.command is empty")
		}
		if c.Memory.Command == "" {
			return errors.New("memory_server.command is empty")
		}
	}
	return nil
}
