package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FREEZEFRAME_SERVER_PORT
const EnvPrefix = "FREEZEFRAME"

// Config represents the application configuration
type Config struct {
	LogLevel    string            `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty   bool              `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	Server      ServerConfig      `json:"server" yaml:"server" mapstructure:"server"`
	Capture     CaptureConfig     `json:"capture" yaml:"capture" mapstructure:"capture"`
	OCR         OCRConfig         `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Activation  ActivationConfig  `json:"activation" yaml:"activation" mapstructure:"activation"`
	Diagnostics DiagnosticsConfig `json:"diagnostics" yaml:"diagnostics" mapstructure:"diagnostics"`
}

// ServerConfig configures the loopback HTTP bridge
type ServerConfig struct {
	Port int `json:"port" yaml:"port" mapstructure:"port"`
}

// CaptureConfig selects the window capture backend
type CaptureConfig struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// OCRConfig configures image preparation for text recognition
type OCRConfig struct {
	TargetHeight uint32 `json:"target_height" yaml:"target_height" mapstructure:"target_height"`
	JPEGQuality  int    `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`
}

// ActivationConfig is the caller-side retry policy for bringing windows forward
type ActivationConfig struct {
	RetryAttempts int           `json:"retry_attempts" yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
}

// DiagnosticsConfig toggles extra reporting
type DiagnosticsConfig struct {
	ObserveCleanupFailures bool `json:"observe_cleanup_failures" yaml:"observe_cleanup_failures" mapstructure:"observe_cleanup_failures"`
}

// Capture backends accepted by Validate
const (
	BackendPrintWindow = "printwindow"
	BackendScreen      = "screen"
)

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("server.port", 47600)
	v.SetDefault("capture.backend", BackendPrintWindow)
	v.SetDefault("ocr.target_height", 1024)
	v.SetDefault("ocr.jpeg_quality", 90)
	v.SetDefault("activation.retry_attempts", 1)
	v.SetDefault("activation.retry_delay", 50*time.Millisecond)
	v.SetDefault("diagnostics.observe_cleanup_failures", false)
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, _ := decode(v)
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/freezeframe/config.yaml, falling back to
// the user config directory of the platform
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve config directory: %w", err)
		}
	}
	return filepath.Join(dir, "freezeframe", "config.yaml"), nil
}

// NewViper creates a viper instance with defaults, env overrides and the
// config file search path. An empty path uses DefaultPath.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

// Load reads the config file when one exists, applies env overrides and
// validates the result. A missing default file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Capture.Backend = strings.ToLower(strings.TrimSpace(cfg.Capture.Backend))
	return &cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range 1..65535", c.Server.Port))
	}
	switch c.Capture.Backend {
	case BackendPrintWindow, BackendScreen:
	default:
		errs = append(errs, fmt.Errorf("capture.backend: unknown backend %q", c.Capture.Backend))
	}
	if c.OCR.TargetHeight == 0 {
		errs = append(errs, errors.New("ocr.target_height: must be greater than 0"))
	}
	if c.OCR.JPEGQuality < 1 || c.OCR.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("ocr.jpeg_quality: %d out of range 1..100", c.OCR.JPEGQuality))
	}
	if c.Activation.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("activation.retry_attempts: %d must be at least 1", c.Activation.RetryAttempts))
	}
	if c.Activation.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("activation.retry_delay: %s must not be negative", c.Activation.RetryDelay))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
