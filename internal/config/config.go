package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactive.json"

	// DefaultInspectPort is the default inspector port.
	DefaultInspectPort = 7070

	// DefaultInspectHost is the default inspector host.
	DefaultInspectHost = "localhost"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactive"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Config represents the complete reactive.json configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is text or json.
	LogFormat string `json:"log_format,omitempty"`

	// MaxNotifyRounds bounds notification rounds per dispatch. Zero means
	// unbounded.
	MaxNotifyRounds int `json:"max_notify_rounds,omitempty"`

	// Inspect contains inspector server configuration.
	Inspect InspectConfig `json:"inspect,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectConfig contains inspector server settings.
type InspectConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled installs the Prometheus observer and serves /metrics.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled installs the tracing observer.
	Enabled bool `json:"enabled,omitempty"`

	// MinDuration drops recompute spans shorter than this (e.g. "1ms").
	MinDuration string `json:"min_duration,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: "text",
		Inspect: InspectConfig{
			Host: DefaultInspectHost,
			Port: DefaultInspectPort,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reactive.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault loads reactive.json from dir, falling back to defaults when
// the file does not exist. Other errors are returned.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Inspect.Host == "" {
		c.Inspect.Host = DefaultInspectHost
	}
	if c.Inspect.Port == 0 {
		c.Inspect.Port = DefaultInspectPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspect.Port < 0 || c.Inspect.Port > 65535 {
		return errors.New("E122").
			WithDetail("inspect.port must be between 0 and 65535")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("E122").
			WithDetail("log_level must be one of debug, info, warn, error; got " + strconv.Quote(c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.New("E122").
			WithDetail("log_format must be text or json; got " + strconv.Quote(c.LogFormat))
	}
	if c.MaxNotifyRounds < 0 {
		return errors.New("E122").
			WithDetail("max_notify_rounds must not be negative").
			WithSuggestion("Use 0 for no bound")
	}
	if _, err := c.TracingMinDuration(); err != nil {
		return errors.New("E122").
			WithDetail("tracing.min_duration: " + err.Error())
	}
	return nil
}

// InspectAddress returns the listen address for the inspector.
func (c *Config) InspectAddress() string {
	return net.JoinHostPort(c.Inspect.Host, strconv.Itoa(c.Inspect.Port))
}

// TracingMinDuration parses Tracing.MinDuration. Empty means zero.
func (c *Config) TracingMinDuration() (time.Duration, error) {
	if c.Tracing.MinDuration == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Tracing.MinDuration)
}

// Runtime returns the settings to pass to reactive.SetConfig.
func (c *Config) Runtime() reactive.Config {
	return reactive.Config{MaxNotifyRounds: c.MaxNotifyRounds}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the nearest directory
// containing reactive.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
