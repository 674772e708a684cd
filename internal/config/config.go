// Package config provides configuration loading with explicit naming
//
// Available functions:
//
//   LoadFromEnvVarsOnly()                     - Environment variables ONLY
//
//   LoadFromYamlFile(path)                    - YAML file ONLY (no env overrides)
//
//   LoadFromYamlWithEnvOverrides(path)        - YAML base + Environment overrides
//                                               Priority: Env Vars > YAML > Defaults
//
// Command line flags are applied on top by the caller.
//
// Environment variables supported:
//
//   NTP:
//     - SNTP_PORT, SNTP_TIMEOUT
//
//   OUTPUT:
//     - SNTP_FORMAT, SNTP_PURE, SNTP_UTC
//
//   LOGGING:
//     - LOG_LEVEL (trace|debug|info|warn|error|fatal|panic|off)
//     - LOG_FORMAT (json|console), LOG_OUTPUT (stderr|stdout|file)
//     - LOG_ENABLE_FILE, LOG_FILE_PATH
//
//   METRICS:
//     - METRICS_NAMESPACE, METRICS_TEXTFILE
//
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/maximewewer/sntp/pkg/logger"
)

// Config represents the complete application configuration
type Config struct {
	NTP     NTPConfig     `yaml:"ntp"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// NTPConfig contains the exchange parameters
type NTPConfig struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// OutputConfig controls how the server time is printed
type OutputConfig struct {
	Format string `yaml:"format"`
	Pure   bool   `yaml:"pure"`
	UTC    bool   `yaml:"utc"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	EnableFile bool   `yaml:"enable_file"`
	FilePath   string `yaml:"file_path"`
}

// MetricsConfig contains Prometheus textfile export configuration
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	Textfile  string `yaml:"textfile"`
}

// LoadFromYamlFile reads configuration from a YAML file only (no env var overrides)
func LoadFromYamlFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("config", "Failed to read config file", err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		logger.Error("config", "Failed to parse config file", err)
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration", err)
		return nil, fmt.Errorf("configuration validation failed for %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromYamlWithEnvOverrides loads base config from YAML, then overrides with environment variables.
// An explicitly named file that cannot be read is an error.
// Priority: Environment Variables > YAML File > Defaults
func LoadFromYamlWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("config", "Failed to read config file", err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		logger.Error("config", "Failed to parse config file", err)
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration after env overrides", err)
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFromEnvVarsOnly loads configuration from environment variables only (no YAML file)
// Priority: Environment Variables > Defaults
func LoadFromEnvVarsOnly() (*Config, error) {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration from environment", err)
		return nil, fmt.Errorf("environment configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to an existing config.
// Empty values are ignored; unparseable values are logged and ignored.
func applyEnvOverrides(cfg *Config) {
	// ---------------------------------------------------------------------------
	// NTP - exchange parameters
	// ---------------------------------------------------------------------------
	if port := os.Getenv("SNTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.NTP.Port = p
		} else {
			warnIgnoredEnv("SNTP_PORT", port, err)
		}
	}
	if timeout := os.Getenv("SNTP_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.NTP.Timeout = t
		} else {
			warnIgnoredEnv("SNTP_TIMEOUT", timeout, err)
		}
	}

	// ---------------------------------------------------------------------------
	// OUTPUT - time rendering
	// ---------------------------------------------------------------------------
	if format := os.Getenv("SNTP_FORMAT"); format != "" {
		cfg.Output.Format = format
	}
	if pure := os.Getenv("SNTP_PURE"); pure != "" {
		if b, err := strconv.ParseBool(pure); err == nil {
			cfg.Output.Pure = b
		} else {
			warnIgnoredEnv("SNTP_PURE", pure, err)
		}
	}
	if utc := os.Getenv("SNTP_UTC"); utc != "" {
		if b, err := strconv.ParseBool(utc); err == nil {
			cfg.Output.UTC = b
		} else {
			warnIgnoredEnv("SNTP_UTC", utc, err)
		}
	}

	// ---------------------------------------------------------------------------
	// LOGGING - Logging configuration
	// ---------------------------------------------------------------------------
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
	if output := os.Getenv("LOG_OUTPUT"); output != "" {
		cfg.Logging.Output = output
	}
	if enableFile := os.Getenv("LOG_ENABLE_FILE"); enableFile != "" {
		if b, err := strconv.ParseBool(enableFile); err == nil {
			cfg.Logging.EnableFile = b
		} else {
			warnIgnoredEnv("LOG_ENABLE_FILE", enableFile, err)
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		cfg.Logging.FilePath = filePath
	}

	// ---------------------------------------------------------------------------
	// METRICS - Prometheus textfile export
	// ---------------------------------------------------------------------------
	if namespace := os.Getenv("METRICS_NAMESPACE"); namespace != "" {
		cfg.Metrics.Namespace = namespace
	}
	if textfile := os.Getenv("METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.Textfile = textfile
	}
}

// warnIgnoredEnv reports an environment value that could not be parsed
func warnIgnoredEnv(name, value string, err error) {
	logger.SafeWarn("config", "Ignoring unparseable environment variable", map[string]interface{}{
		"variable": name,
		"value":    value,
		"error":    err.Error(),
	})
}
