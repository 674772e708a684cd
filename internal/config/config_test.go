package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maximewewer/sntp/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable applyEnvOverrides reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SNTP_PORT", "SNTP_TIMEOUT", "SNTP_FORMAT", "SNTP_PURE", "SNTP_UTC",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_ENABLE_FILE", "LOG_FILE_PATH",
		"METRICS_NAMESPACE", "METRICS_TEXTFILE",
	} {
		t.Setenv(key, "")
	}
}

// captureWarnings points the global logger at a buffer for the test
func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := logger.Logger
	logger.Logger = zerolog.New(&buf).Level(zerolog.WarnLevel)
	t.Cleanup(func() { logger.Logger = previous })
	return &buf
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sntp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYamlFile_Success(t *testing.T) {
	path := writeConfig(t, `
ntp:
  port: 1123
  timeout: 2s

output:
  format: "%Y-%m-%d %H:%M:%S"
  pure: true
  utc: true

logging:
  level: "debug"
  format: "json"

metrics:
  namespace: "sntp"
  textfile: "/var/lib/node_exporter/sntp.prom"
`)

	cfg, err := LoadFromYamlFile(path)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 1123, cfg.NTP.Port)
	assert.Equal(t, 2*time.Second, cfg.NTP.Timeout)
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", cfg.Output.Format)
	assert.True(t, cfg.Output.Pure)
	assert.True(t, cfg.Output.UTC)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "/var/lib/node_exporter/sntp.prom", cfg.Metrics.Textfile)
}

func TestLoadFromYamlFile_Partial(t *testing.T) {
	path := writeConfig(t, `
output:
  pure: true
`)

	cfg, err := LoadFromYamlFile(path)

	require.NoError(t, err)
	assert.Equal(t, 123, cfg.NTP.Port)
	assert.Equal(t, 5*time.Second, cfg.NTP.Timeout)
	assert.True(t, cfg.Output.Pure)
	assert.Empty(t, cfg.Output.Format)
}

func TestLoadFromYamlFile_FileNotFound(t *testing.T) {
	cfg, err := LoadFromYamlFile("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromYamlFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "ntp:\n  port: [\n    invalid")

	cfg, err := LoadFromYamlFile(path)

	assert.Error(t, err)
	assert.Nil(t, cfg)
	if err != nil {
		assert.Contains(t, err.Error(), "failed to parse")
	}
}

func TestLoadFromYamlFile_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
ntp:
  port: 99999
`)

	cfg, err := LoadFromYamlFile(path)

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoadFromEnvVarsOnly_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 123, cfg.NTP.Port)
	assert.Equal(t, 5*time.Second, cfg.NTP.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "sntp", cfg.Metrics.Namespace)
	assert.Empty(t, cfg.Output.Format)
	assert.False(t, cfg.Output.Pure)
}

func TestLoadFromEnvVarsOnly_WithOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNTP_PORT", "1123")
	t.Setenv("SNTP_TIMEOUT", "750ms")
	t.Setenv("SNTP_FORMAT", "%s")
	t.Setenv("SNTP_PURE", "true")
	t.Setenv("SNTP_UTC", "1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_TEXTFILE", "/tmp/sntp.prom")

	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	assert.Equal(t, 1123, cfg.NTP.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.NTP.Timeout)
	assert.Equal(t, "%s", cfg.Output.Format)
	assert.True(t, cfg.Output.Pure)
	assert.True(t, cfg.Output.UTC)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/sntp.prom", cfg.Metrics.Textfile)
}

func TestLoadFromEnvVarsOnly_IgnoresUnparseable(t *testing.T) {
	clearEnv(t)
	logs := captureWarnings(t)
	t.Setenv("SNTP_PORT", "not-a-port")
	t.Setenv("SNTP_TIMEOUT", "soon")
	t.Setenv("SNTP_PURE", "maybe")

	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	assert.Equal(t, 123, cfg.NTP.Port)
	assert.Equal(t, 5*time.Second, cfg.NTP.Timeout)
	assert.False(t, cfg.Output.Pure)

	out := logs.String()
	assert.Contains(t, out, "Ignoring unparseable environment variable")
	assert.Contains(t, out, `"variable":"SNTP_PORT"`)
	assert.Contains(t, out, `"value":"not-a-port"`)
	assert.Contains(t, out, `"variable":"SNTP_TIMEOUT"`)
	assert.Contains(t, out, `"variable":"SNTP_PURE"`)
}

func TestLoadFromEnvVarsOnly_NoWarningForValidValues(t *testing.T) {
	clearEnv(t)
	logs := captureWarnings(t)
	t.Setenv("SNTP_PORT", "1123")
	t.Setenv("SNTP_TIMEOUT", "2s")

	_, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

func TestLoadFromEnvVarsOnly_LogLevelsAcceptedByLogger(t *testing.T) {
	for _, level := range []string{"off", "disabled", "warning", "INFO"} {
		t.Run(level, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LOG_LEVEL", level)

			cfg, err := LoadFromEnvVarsOnly()

			require.NoError(t, err)
			assert.Equal(t, level, cfg.Logging.Level)
		})
	}
}

func TestLoadFromEnvVarsOnly_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	cfg, err := LoadFromEnvVarsOnly()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "environment configuration validation failed")
}

func TestLoadFromYamlWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
ntp:
  port: 1123
  timeout: 2s
output:
  format: "%H:%M"
`)
	t.Setenv("SNTP_TIMEOUT", "3s")

	cfg, err := LoadFromYamlWithEnvOverrides(path)

	require.NoError(t, err)
	assert.Equal(t, 1123, cfg.NTP.Port)
	assert.Equal(t, 3*time.Second, cfg.NTP.Timeout)
	assert.Equal(t, "%H:%M", cfg.Output.Format)
}

func TestLoadFromYamlWithEnvOverrides_EmptyEnvKeepsFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
output:
  format: "%Y"
  pure: true
`)
	t.Setenv("SNTP_FORMAT", "")

	cfg, err := LoadFromYamlWithEnvOverrides(path)

	require.NoError(t, err)
	assert.Equal(t, "%Y", cfg.Output.Format)
	assert.True(t, cfg.Output.Pure)
}

func TestLoadFromYamlWithEnvOverrides_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromYamlWithEnvOverrides("/nonexistent/sntp.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFromYamlWithEnvOverrides_EnvFixesInvalidFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
logging:
  level: "chatty"
`)
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := LoadFromYamlWithEnvOverrides(path)

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}
