package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	API     API     `yaml:"api"`
	Poll    Poll    `yaml:"poll"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// API configures the remote pipeline service connection.
type API struct {
	BaseURL        string `yaml:"base_url"`
	SkipApify      bool   `yaml:"skip_apify"`
	TunnelBypass   bool   `yaml:"tunnel_bypass"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Poll configures the status polling loop.
type Poll struct {
	BaseDelaySeconds int `yaml:"base_delay_seconds"`
	StepSeconds      int `yaml:"step_seconds"`
	MaxDelaySeconds  int `yaml:"max_delay_seconds"`
	BudgetMinutes    int `yaml:"budget_minutes"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for prodscope.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "prodscope")
}

// DataDir returns the XDG data directory for prodscope.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "prodscope")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/prodscope/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'prodscope init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		API: API{
			BaseURL:        "http://localhost:8001",
			TunnelBypass:   true,
			TimeoutSeconds: 30,
		},
		Poll: Poll{
			BaseDelaySeconds: 5,
			StepSeconds:      5,
			MaxDelaySeconds:  60,
			BudgetMinutes:    30,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// APITimeout returns the per-request timeout for service calls.
func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
