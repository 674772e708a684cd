package logger

import (
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Global logger instance. Stdout belongs to the time output, so the
	// zero configuration writes to stderr.
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	// Pre-compiled regex patterns for sensitive data detection
	passwordPattern   = regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token|api[_-]?key|auth)`)
	credentialPattern = regexp.MustCompile(`(?i)://([^:]+):([^@]+)@`)
)

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stderr, stdout, file
	FilePath   string // path to log file if output=file
	Component  string // component name for structured logging
	EnableFile bool   // enable file output
}

// InitLogger initializes the global logger with the provided configuration
func InitLogger(cfg Config) error {
	writer, err := openOutput(cfg)
	if err != nil {
		return err
	}
	return initWithWriter(cfg, writer)
}

// InitLoggerWithWriter initializes the global logger writing to w instead
// of the configured output
func InitLoggerWithWriter(cfg Config, w io.Writer) error {
	return initWithWriter(cfg, w)
}

func initWithWriter(cfg Config, writer io.Writer) error {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
			NoColor:    writer != os.Stderr && writer != os.Stdout,
		}
	}

	Logger = zerolog.New(writer).Level(level).With().Timestamp().Str("component", cfg.Component).Logger()
	log.Logger = Logger

	return nil
}

func openOutput(cfg Config) (io.Writer, error) {
	switch cfg.Output {
	case "stdout":
		return os.Stdout, nil
	case "file":
		if cfg.EnableFile && cfg.FilePath != "" {
			file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				return nil, err
			}
			return file, nil
		}
		return os.Stderr, nil
	default:
		return os.Stderr, nil
	}
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// sanitizeFields removes or redacts sensitive information from fields
func sanitizeFields(fields map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if passwordPattern.MatchString(key) {
			result[key] = "***REDACTED***"
			continue
		}

		if strValue, ok := value.(string); ok {
			result[key] = sanitizeString(strValue)
		} else {
			result[key] = value
		}
	}

	return result
}

// sanitizeString removes credentials embedded in URLs
func sanitizeString(s string) string {
	return credentialPattern.ReplaceAllString(s, "://$1:***@")
}

// Debug logs a debug message
func Debug(pkg, message string) {
	Logger.Debug().
		Str("package", pkg).
		Msg(message)
}

// Debugf logs a formatted debug message
func Debugf(pkg, format string, args ...interface{}) {
	Logger.Debug().
		Str("package", pkg).
		Msgf(format, args...)
}

// Info logs an info message
func Info(pkg, message string) {
	Logger.Info().
		Str("package", pkg).
		Msg(message)
}

// Warn logs a warning message
func Warn(pkg, message string) {
	Logger.Warn().
		Str("package", pkg).
		Msg(message)
}

// Error logs an error message
func Error(pkg, message string, err error) {
	Logger.Error().
		Str("package", pkg).
		Err(err).
		Msg(message)
}

// SafeDebug logs a debug message with sanitized fields
func SafeDebug(pkg, message string, fields map[string]interface{}) {
	event := Logger.Debug().Str("package", pkg)
	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// SafeInfo logs an info message with sanitized fields
func SafeInfo(pkg, message string, fields map[string]interface{}) {
	event := Logger.Info().Str("package", pkg)
	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// SafeWarn logs a warning message with sanitized fields
func SafeWarn(pkg, message string, fields map[string]interface{}) {
	event := Logger.Warn().Str("package", pkg)
	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// SafeError logs an error message with sanitized fields
func SafeError(pkg, message string, err error, fields map[string]interface{}) {
	event := Logger.Error().Str("package", pkg).Err(err)
	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// WithFields returns a child of the global logger carrying the given fields
func WithFields(pkg string, fields map[string]interface{}) zerolog.Logger {
	ctx := Logger.With().Str("package", pkg)
	for k, v := range sanitizeFields(fields) {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}

// SetQueryID tags every subsequent log line with the invocation's query id
func SetQueryID(id string) {
	Logger = Logger.With().Str("query_id", id).Logger()
	log.Logger = Logger
}

// Exchange logs one step of an SNTP exchange
func Exchange(step, server string, fields map[string]interface{}) {
	event := Logger.Debug().
		Str("package", "ntp").
		Str("step", step).
		Str("server", server)

	for k, v := range sanitizeFields(fields) {
		event = event.Interface(k, v)
	}

	event.Msg("SNTP exchange")
}

// Startup logs the invocation parameters
func Startup(version string, config interface{}) {
	Logger.Debug().
		Str("package", "main").
		Str("version", version).
		Interface("config", config).
		Msg("sntp starting")
}
