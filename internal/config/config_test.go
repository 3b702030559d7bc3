package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gcibot/gcibot/internal/adapters/irc"
	"github.com/gcibot/gcibot/internal/announce"
	"github.com/gcibot/gcibot/internal/supervisor"
	"github.com/gcibot/gcibot/internal/tasks"
	"github.com/gcibot/gcibot/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	t.Run("IRC", func(t *testing.T) {
		if config.IRC == nil {
			t.Fatal("IRC config is nil")
		}
		if config.IRC.Nick != "gcibot" {
			t.Errorf("IRC.Nick = %q, want %q", config.IRC.Nick, "gcibot")
		}
		if !config.IRC.TLS {
			t.Error("IRC.TLS should default to true")
		}
	})

	t.Run("Reconnect", func(t *testing.T) {
		if config.Reconnect == nil {
			t.Fatal("Reconnect config is nil")
		}
		if config.Reconnect.Backoff != supervisor.BackoffNone {
			t.Errorf("Reconnect.Backoff = %q, want %q", config.Reconnect.Backoff, supervisor.BackoffNone)
		}
	})

	t.Run("Tasks", func(t *testing.T) {
		if config.Tasks == nil {
			t.Fatal("Tasks config is nil")
		}
		if config.Tasks.MetadataURL != tasks.DefaultMetadataURL {
			t.Errorf("Tasks.MetadataURL = %q", config.Tasks.MetadataURL)
		}
		if config.Tasks.FetchTimeout != 10*time.Second {
			t.Errorf("Tasks.FetchTimeout = %v, want 10s", config.Tasks.FetchTimeout)
		}
	})

	t.Run("Handler", func(t *testing.T) {
		if config.MaxConcurrentMessages() != 16 {
			t.Errorf("MaxConcurrentMessages() = %d, want 16", config.MaxConcurrentMessages())
		}
	})

	if err := config.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		config, err := Load("/nonexistent/path/config.yaml")
		if err != nil {
			t.Errorf("Load should return defaults for missing file, got error: %v", err)
		}
		if config == nil {
			t.Fatal("Load returned nil config for missing file")
		}
		if config.IRC.Server != "irc.libera.chat:6697" {
			t.Errorf("IRC.Server = %q, want default", config.IRC.Server)
		}
	})

	t.Run("ValidConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		t.Setenv("GCIBOT_TEST_PASSWORD", testutil.FakeIRCPassword)

		configContent := `
irc:
  server: "irc.example.org:6667"
  tls: false
  nick: "gcihelper"
  password: "${GCIBOT_TEST_PASSWORD}"
  rooms: ["#gci", "#kde-gci"]
reconnect:
  policy: exponential
  initial: 2s
  max: 1m
tasks:
  fetch_timeout: 5s
  organizations:
    99: "Example Org"
commands:
  faq: "see the wiki"
handler:
  max_concurrent_messages: 4
announcements:
  - name: weekly
    schedule: "0 9 * * 1"
    text: "New week, new tasks!"
logging:
  level: debug
  format: json
`
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		config, err := Load(configPath)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if config.IRC.Server != "irc.example.org:6667" || config.IRC.TLS {
			t.Errorf("IRC server = %q tls = %v", config.IRC.Server, config.IRC.TLS)
		}
		if config.IRC.Nick != "gcihelper" {
			t.Errorf("IRC.Nick = %q, want %q", config.IRC.Nick, "gcihelper")
		}
		if config.IRC.Password != testutil.FakeIRCPassword {
			t.Errorf("IRC.Password = %q, want expanded env value", config.IRC.Password)
		}
		if config.IRC.RealName != "Google Code-in task bot" {
			t.Errorf("IRC.RealName = %q, want default kept", config.IRC.RealName)
		}
		if strings.Join(config.IRC.Rooms, ",") != "#gci,#kde-gci" {
			t.Errorf("IRC.Rooms = %v", config.IRC.Rooms)
		}
		if config.Reconnect.Backoff != supervisor.BackoffExponential ||
			config.Reconnect.Initial != 2*time.Second ||
			config.Reconnect.Max != time.Minute {
			t.Errorf("Reconnect = %+v", config.Reconnect)
		}
		if config.Tasks.FetchTimeout != 5*time.Second {
			t.Errorf("Tasks.FetchTimeout = %v", config.Tasks.FetchTimeout)
		}
		if config.Tasks.Organizations[99] != "Example Org" {
			t.Errorf("Tasks.Organizations = %v", config.Tasks.Organizations)
		}
		if config.Tasks.MetadataURL != tasks.DefaultMetadataURL {
			t.Errorf("Tasks.MetadataURL = %q, want default kept", config.Tasks.MetadataURL)
		}
		if config.Commands.FAQ != "see the wiki" {
			t.Errorf("Commands.FAQ = %q", config.Commands.FAQ)
		}
		if config.MaxConcurrentMessages() != 4 {
			t.Errorf("MaxConcurrentMessages() = %d", config.MaxConcurrentMessages())
		}
		if len(config.Announcements) != 1 || config.Announcements[0].Name != "weekly" {
			t.Errorf("Announcements = %+v", config.Announcements)
		}
		if config.Logging.Level != "debug" || config.Logging.Format != "json" {
			t.Errorf("Logging = %+v", config.Logging)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("irc: [unterminated"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(configPath); err == nil {
			t.Error("Load should fail on invalid YAML")
		}
	})

	t.Run("BadDuration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("tasks:\n  fetch_timeout: soon\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(configPath); err == nil {
			t.Error("Load should fail on an unparsable duration")
		}
	})
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	config := DefaultConfig()
	config.IRC.Rooms = []string{"#gci"}
	config.Reconnect.Backoff = supervisor.BackoffExponential

	if err := Save(config, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %v, want 0600", perm)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.IRC.Rooms) != 1 || loaded.IRC.Rooms[0] != "#gci" {
		t.Errorf("IRC.Rooms = %v", loaded.IRC.Rooms)
	}
	if loaded.Reconnect.Backoff != supervisor.BackoffExponential {
		t.Errorf("Reconnect.Backoff = %q", loaded.Reconnect.Backoff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing irc",
			mutate:      func(c *Config) { c.IRC = nil },
			wantErr:     true,
			errContains: "irc configuration",
		},
		{
			name:        "no endpoint",
			mutate:      func(c *Config) { c.IRC.Server = "" },
			wantErr:     true,
			errContains: "irc.server",
		},
		{
			name: "websocket only",
			mutate: func(c *Config) {
				c.IRC.Server = ""
				c.IRC.WebSocketURL = "wss://irc.example.org/webirc"
			},
		},
		{
			name:        "bad websocket scheme",
			mutate:      func(c *Config) { c.IRC.WebSocketURL = "https://irc.example.org" },
			wantErr:     true,
			errContains: "websocket_url",
		},
		{
			name:        "bad nick",
			mutate:      func(c *Config) { c.IRC.Nick = "gci bot" },
			wantErr:     true,
			errContains: "irc.nick",
		},
		{
			name:        "bad room",
			mutate:      func(c *Config) { c.IRC.Rooms = []string{"#a,#b"} },
			wantErr:     true,
			errContains: "room name",
		},
		{
			name:        "bad backoff",
			mutate:      func(c *Config) { c.Reconnect = &supervisor.Policy{Backoff: "linear"} },
			wantErr:     true,
			errContains: "reconnect",
		},
		{
			name:        "negative timeout",
			mutate:      func(c *Config) { c.Tasks.FetchTimeout = -time.Second },
			wantErr:     true,
			errContains: "fetch_timeout",
		},
		{
			name:        "negative concurrency",
			mutate:      func(c *Config) { c.Handler.MaxConcurrentMessages = -1 },
			wantErr:     true,
			errContains: "max_concurrent_messages",
		},
		{
			name: "bad announcement",
			mutate: func(c *Config) {
				c.Announcements = []*announce.Config{{Name: "x", Schedule: "often", Text: "hi"}}
			},
			wantErr:     true,
			errContains: "announcement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestMaxConcurrentMessages_NilHandler(t *testing.T) {
	c := &Config{IRC: irc.DefaultConfig()}
	if got := c.MaxConcurrentMessages(); got != 0 {
		t.Errorf("MaxConcurrentMessages() = %d, want 0", got)
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("Failed to get home directory: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"TildeOnly", "~", homeDir},
		{"TildeWithPath", "~/logs/gcibot.log", filepath.Join(homeDir, "logs/gcibot.log")},
		{"AbsolutePath", "/var/log/gcibot.log", "/var/log/gcibot.log"},
		{"RelativePath", "relative/path", "relative/path"},
		{"EmptyPath", "", ""},
		{"TildeInMiddle", "/path/~/with/tilde", "/path/~/with/tilde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := expandPath(tt.input); result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("Failed to get home directory: %v", err)
	}

	expected := filepath.Join(homeDir, ".gcibot", "config.yaml")
	if result := DefaultConfigPath(); result != expected {
		t.Errorf("DefaultConfigPath() = %q, want %q", result, expected)
	}
}
