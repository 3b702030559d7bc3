package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gcibot/gcibot/internal/adapters/irc"
	"github.com/gcibot/gcibot/internal/announce"
	"github.com/gcibot/gcibot/internal/comms"
	"github.com/gcibot/gcibot/internal/logging"
	"github.com/gcibot/gcibot/internal/supervisor"
	"github.com/gcibot/gcibot/internal/tasks"
)

// Config represents the main configuration
type Config struct {
	IRC           *irc.Config        `yaml:"irc"`
	Reconnect     *supervisor.Policy `yaml:"reconnect"`
	Tasks         *tasks.Config      `yaml:"tasks"`
	Commands      *comms.Replies     `yaml:"commands"`
	Handler       *HandlerConfig     `yaml:"handler"`
	Announcements []*announce.Config `yaml:"announcements"`
	Logging       *logging.Config    `yaml:"logging"`
}

// HandlerConfig holds message handler settings
type HandlerConfig struct {
	MaxConcurrentMessages int `yaml:"max_concurrent_messages"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		IRC:       irc.DefaultConfig(),
		Reconnect: supervisor.DefaultPolicy(),
		Tasks:     tasks.DefaultConfig(),
		Commands:  comms.DefaultReplies(),
		Handler: &HandlerConfig{
			MaxConcurrentMessages: comms.DefaultMaxConcurrent,
		},
		Announcements: []*announce.Config{},
		Logging:       logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Return defaults if no config file
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Logging != nil && config.Logging.Output != "" {
		switch config.Logging.Output {
		case "stdout", "stderr":
		default:
			config.Logging.Output = expandPath(config.Logging.Output)
		}
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, path string) error {
	path = expandPath(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may carry the server password.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default configuration path
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".gcibot", "config.yaml")
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.IRC == nil {
		return fmt.Errorf("irc configuration is required")
	}
	if c.IRC.Server == "" && c.IRC.WebSocketURL == "" {
		return fmt.Errorf("irc.server or irc.websocket_url is required")
	}
	if c.IRC.WebSocketURL != "" &&
		!strings.HasPrefix(c.IRC.WebSocketURL, "ws://") &&
		!strings.HasPrefix(c.IRC.WebSocketURL, "wss://") {
		return fmt.Errorf("invalid irc.websocket_url %q: want ws:// or wss://", c.IRC.WebSocketURL)
	}
	if strings.ContainsAny(c.IRC.Nick, " ,*?!@") {
		return fmt.Errorf("invalid irc.nick %q", c.IRC.Nick)
	}
	for _, room := range c.IRC.Rooms {
		if strings.ContainsAny(room, " ,\a") || strings.TrimSpace(room) == "" {
			return fmt.Errorf("invalid room name %q", room)
		}
	}
	if c.Reconnect != nil {
		if err := c.Reconnect.Validate(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}
	if c.Tasks != nil && c.Tasks.FetchTimeout < 0 {
		return fmt.Errorf("invalid tasks.fetch_timeout: %v", c.Tasks.FetchTimeout)
	}
	if c.Handler != nil && c.Handler.MaxConcurrentMessages < 0 {
		return fmt.Errorf("invalid handler.max_concurrent_messages: %d", c.Handler.MaxConcurrentMessages)
	}
	for _, a := range c.Announcements {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MaxConcurrentMessages returns the handler concurrency limit, or zero for
// the default.
func (c *Config) MaxConcurrentMessages() int {
	if c.Handler == nil {
		return 0
	}
	return c.Handler.MaxConcurrentMessages
}
