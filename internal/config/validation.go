package config

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var namespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	if err := validateNTP(&cfg.NTP); err != nil {
		return err
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}

	if err := validateMetrics(&cfg.Metrics); err != nil {
		return err
	}

	return nil
}

func validateNTP(cfg *NTPConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return errors.New("port must be between 1 and 65535, got " + strconv.Itoa(cfg.Port))
	}

	if cfg.Timeout < 500*time.Millisecond || cfg.Timeout > 60*time.Second {
		return errors.New("timeout must be between 500ms and 60s")
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	validLevels := map[string]bool{
		"trace":    true,
		"debug":    true,
		"info":     true,
		"warn":     true,
		"warning":  true,
		"error":    true,
		"fatal":    true,
		"panic":    true,
		"off":      true,
		"disabled": true,
	}

	if !validLevels[strings.ToLower(cfg.Level)] {
		return errors.New("invalid log level (must be trace, debug, info, warn, warning, error, fatal, panic, off, or disabled)")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[cfg.Format] {
		return errors.New("invalid log format (must be json or console)")
	}

	validOutputs := map[string]bool{
		"stderr": true,
		"stdout": true,
		"file":   true,
	}

	if !validOutputs[cfg.Output] {
		return errors.New("invalid log output (must be stderr, stdout, or file)")
	}

	if cfg.EnableFile && cfg.FilePath == "" {
		return errors.New("file_path is required when enable_file is true")
	}

	return nil
}

func validateMetrics(cfg *MetricsConfig) error {
	if cfg.Namespace == "" {
		return errors.New("namespace is required")
	}

	if !namespacePattern.MatchString(cfg.Namespace) {
		return errors.New("namespace must match [a-zA-Z_][a-zA-Z0-9_]*")
	}

	return nil
}
