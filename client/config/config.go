package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file searched by Load.
const FileName = "chronicle.yml"

// Config represents the client configuration
type Config struct {
	Server  ServerConfig `yaml:"server"`
	SSL     SSLConfig    `yaml:"ssl"`
	Logging LogConfig    `yaml:"logging"`
}

// ServerConfig holds the location of the chronicle API
type ServerConfig struct {
	Address  string `yaml:"address"`
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	// Timeout bounds a whole request. Zero leaves cancellation to the
	// caller's context.
	Timeout time.Duration `yaml:"timeout"`
}

// SSLConfig holds SSL configuration
type SSLConfig struct {
	// Mode is "disable" or "require".
	Mode string `yaml:"mode"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:  "localhost",
			Port:     3000,
			BasePath: "/api",
		},
		SSL: SSLConfig{
			Mode: "disable",
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the first config file found, or the
// defaults when there is none.
func Load() (*Config, error) {
	configPath := findConfigFile()

	if configPath != "" {
		return LoadFromFile(configPath)
	}

	return DefaultConfig(), nil
}

// LoadFromFile loads configuration from a specific file. Keys missing from
// the file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ErrConfigFileReadFailed, err, "failed to read config file").AddContext("path", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(ErrConfigFileParseFailed, err, "failed to parse config file").AddContext("path", path)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(ErrConfigFileMarshalFailed, err, "failed to marshal config")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(ErrConfigFileWriteFailed, err, "failed to create config directory").AddContext("path", path)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(ErrConfigFileWriteFailed, err, "failed to write config file").AddContext("path", path)
	}

	return nil
}

// findConfigFile searches for configuration file
func findConfigFile() string {
	// Check current directory
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".chronicle", FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	// Check /etc/chronicle
	etcPath := filepath.Join("/etc/chronicle", FileName)
	if _, err := os.Stat(etcPath); err == nil {
		return etcPath
	}

	return ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New(ErrServerAddressEmpty, "server address cannot be empty")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf(ErrServerPortInvalid, "invalid server port: %d", c.Server.Port)
	}

	if c.Server.Timeout < 0 {
		return errors.Newf(ErrTimeoutInvalid, "invalid timeout: %s", c.Server.Timeout)
	}

	switch c.SSL.Mode {
	case "disable", "require":
	default:
		return errors.Newf(ErrSSLModeInvalid, "invalid ssl mode %q", c.SSL.Mode)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrapf(ErrLogLevelInvalid, err, "invalid log level %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.Newf(ErrLogFormatInvalid, "invalid log format %q", c.Logging.Format)
	}

	return nil
}

// GetServerURL returns the scheme, host and port of the server
func (c *Config) GetServerURL() string {
	protocol := "http"
	if c.SSL.Mode != "disable" {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s", protocol, net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port)))
}

// BaseURL returns the URL every API path is appended to, without a
// trailing slash.
func (c *Config) BaseURL() string {
	base := strings.Trim(c.Server.BasePath, "/")
	if base == "" {
		return c.GetServerURL()
	}
	return c.GetServerURL() + "/" + base
}

// ApplyServerURL points the configuration at the server named by raw, for
// example "https://chronicle.example.com/api". A missing port falls back to
// the scheme default and a missing path keeps the configured base path.
func (c *Config) ApplyServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(ErrServerURLInvalid, err, "invalid server url %q", raw)
	}

	var mode string
	var port int
	switch u.Scheme {
	case "http":
		mode, port = "disable", 80
	case "https":
		mode, port = "require", 443
	default:
		return errors.Newf(ErrServerURLInvalid, "server url %q must use http or https", raw)
	}

	if u.Hostname() == "" {
		return errors.Newf(ErrServerURLInvalid, "server url %q has no host", raw)
	}

	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return errors.Wrapf(ErrServerURLInvalid, err, "invalid port in server url %q", raw)
		}
	}

	c.Server.Address = u.Hostname()
	c.Server.Port = port
	c.SSL.Mode = mode
	if path := strings.TrimRight(u.Path, "/"); path != "" {
		c.Server.BasePath = path
	}

	return nil
}
