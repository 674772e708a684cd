package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/maximewewer/sntp/internal/config"
	"github.com/maximewewer/sntp/internal/format"
	"github.com/maximewewer/sntp/internal/ntp"
	"github.com/maximewewer/sntp/pkg/logger"
	"github.com/maximewewer/sntp/pkg/metrics"
)

var (
	// Build information
	version = "1.2.0"
)

var negativeNumber = regexp.MustCompile(`^-[0-9]+$`)

const usageText = `Usage: sntp [flags] HOST [PORT]

Query the time of an SNTP server and print it.

Arguments:
  HOST    server hostname or IP address
  PORT    server UDP port (default 123)

Flags:
`

// querierFactory builds the transport for one invocation
type querierFactory func(timeout time.Duration, port uint16) ntp.Querier

// app is one command line invocation
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	newQuerier querierFactory
}

// options holds the parsed command line
type options struct {
	format      string
	pure        bool
	utc         bool
	configFile  string
	timeout     time.Duration
	metricsFile string
	showVersion bool

	set  map[string]bool
	host string
	port string
}

func main() {
	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		newQuerier: func(timeout time.Duration, port uint16) ntp.Querier {
			return ntp.NewClient(timeout, port)
		},
	}
	os.Exit(a.run(os.Args[1:]))
}

// run executes the command and returns the process exit code
func (a *app) run(args []string) int {
	opts, err := a.parseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return a.fail(err)
	}

	if opts.showVersion {
		fmt.Fprintln(a.stdout, "sntp version", version)
		return 0
	}

	// Arguments are checked before any network activity
	if err := ntp.ValidateHost(opts.host); err != nil {
		return a.fail(err)
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return a.fail(err)
	}
	if err := applyFlags(cfg, opts); err != nil {
		return a.fail(err)
	}

	port := uint16(cfg.NTP.Port)
	if opts.port != "" {
		port, err = ntp.ParsePort(opts.port)
		if err != nil {
			return a.fail(err)
		}
	}

	if err := logger.InitLogger(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		Component:  "sntp",
		EnableFile: cfg.Logging.EnableFile,
	}); err != nil {
		return a.fail(fmt.Errorf("failed to initialize logger: %w", err))
	}

	logger.SetQueryID(uuid.NewString())
	logger.Startup(version, cfg)

	registry := metrics.NewRegistryWithConfig(cfg.Metrics.Namespace)
	if err := registry.Register(); err != nil {
		logger.Error("main", "Failed to register metrics", err)
	}
	m := registry.GetMetrics()
	m.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
	defer a.writeMetrics(registry, cfg.Metrics.Textfile)

	line, err := a.query(context.Background(), cfg, opts.host, port, m)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.stdout, line)
	return 0
}

// query performs the exchange, decodes the reply and renders the line to print
func (a *app) query(ctx context.Context, cfg *config.Config, host string, port uint16, m *metrics.SNTPMetrics) (string, error) {
	querier := a.newQuerier(cfg.NTP.Timeout, port)

	start := time.Now()
	resp, err := querier.Exchange(ctx, ntp.NormalizeHost(host))
	elapsed := time.Since(start)
	if err != nil {
		m.RecordFailure(resultLabel(err), elapsed)
		return "", err
	}

	serverTime, err := resp.Time()
	if err != nil {
		m.RecordFailure(resultLabel(err), elapsed)
		return "", err
	}
	m.RecordSuccess(elapsed, serverTime, time.Now())

	logger.SafeDebug("main", "Server time decoded", map[string]interface{}{
		"server":      resp.Server,
		"unix":        serverTime.Unix(),
		"round_trip":  elapsed.String(),
		"format":      cfg.Output.Format,
		"utc":         cfg.Output.UTC,
		"pure_output": cfg.Output.Pure,
	})

	renderer := format.Renderer{
		Format: cfg.Output.Format,
		Pure:   cfg.Output.Pure,
	}
	if cfg.Output.UTC {
		renderer.Location = time.UTC
	}

	line, err := renderer.Render(serverTime)
	if err != nil {
		m.RecordRenderFailure()
		return "", err
	}
	return line, nil
}

// parseArgs parses flags and positionals; flags may follow positionals
func (a *app) parseArgs(args []string) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("sntp", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.format, "f", "", "strftime `format` for the time (shorthand)")
	fs.StringVar(&opts.format, "format", "", "strftime `format` for the time, e.g. \"%Y-%m-%d %H:%M:%S\"")
	fs.BoolVar(&opts.pure, "p", false, "print only the time (shorthand)")
	fs.BoolVar(&opts.pure, "pure", false, "print only the time, without a label")
	fs.BoolVar(&opts.utc, "u", false, "print the time in UTC (shorthand)")
	fs.BoolVar(&opts.utc, "utc", false, "print the time in UTC instead of local time")
	fs.StringVar(&opts.configFile, "c", "", "path to configuration `file` (shorthand)")
	fs.StringVar(&opts.configFile, "config", "", "path to configuration `file`")
	fs.DurationVar(&opts.timeout, "t", 0, "response `timeout` (shorthand)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "response `timeout`, e.g. 2s (default 5s)")
	fs.BoolVar(&opts.showVersion, "v", false, "show version information (shorthand)")
	fs.BoolVar(&opts.showVersion, "version", false, "show version information")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this `path`")

	var positionals []string
	for {
		// A negative number after HOST is a bad PORT, not a flag
		if len(positionals) > 0 && len(args) > 0 && negativeNumber.MatchString(args[0]) {
			positionals = append(positionals, args[0])
			args = args[1:]
			continue
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		positionals = append(positionals, rest[0])
		args = rest[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		opts.set[canonicalFlag(f.Name)] = true
	})

	if opts.showVersion {
		return opts, nil
	}

	switch len(positionals) {
	case 0:
		fs.Usage()
		return nil, errors.New("missing server host")
	case 1:
		opts.host = positionals[0]
	case 2:
		opts.host, opts.port = positionals[0], positionals[1]
	default:
		return nil, fmt.Errorf("unexpected argument %q", positionals[2])
	}

	return opts, nil
}

// canonicalFlag maps a shorthand to its long name
func canonicalFlag(name string) string {
	switch name {
	case "f":
		return "format"
	case "p":
		return "pure"
	case "u":
		return "utc"
	case "c":
		return "config"
	case "t":
		return "timeout"
	case "v":
		return "version"
	default:
		return name
	}
}

// loadConfig loads configuration based on whether a config file is specified
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		// Priority: Environment Variables > YAML File > Defaults
		return config.LoadFromYamlWithEnvOverrides(configFile)
	}
	// Priority: Environment Variables > Defaults
	return config.LoadFromEnvVarsOnly()
}

// applyFlags puts explicitly given flags on top of the loaded configuration
func applyFlags(cfg *config.Config, opts *options) error {
	if opts.set["format"] {
		cfg.Output.Format = opts.format
	}
	if opts.set["pure"] {
		cfg.Output.Pure = opts.pure
	}
	if opts.set["utc"] {
		cfg.Output.UTC = opts.utc
	}
	if opts.set["metrics-file"] {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if opts.set["timeout"] {
		if err := ntp.ValidateTimeout(opts.timeout); err != nil {
			return &ntp.Error{Kind: ntp.ErrInvalidArgument, Detail: "timeout", Err: err}
		}
		cfg.NTP.Timeout = opts.timeout
	}
	return nil
}

// writeMetrics exports the registry when a textfile is configured
func (a *app) writeMetrics(registry *metrics.Registry, path string) {
	if path == "" {
		return
	}
	if err := registry.WriteTextfile(path); err != nil {
		logger.SafeError("main", "Failed to write metrics textfile", err, map[string]interface{}{
			"path": path,
		})
	}
}

// fail prints the single error line and returns the failure exit code
func (a *app) fail(err error) int {
	fmt.Fprintln(a.stdout, "Error: "+userMessage(err))
	return 1
}

// userMessage is the text shown after "Error: "
func userMessage(err error) string {
	var e *ntp.Error
	if errors.As(err, &e) && errors.Is(e.Kind, ntp.ErrInvalidArgument) {
		if e.Err != nil {
			return fmt.Sprintf("invalid %s argument: %v", e.Detail, e.Err)
		}
		return fmt.Sprintf("invalid %s argument", e.Detail)
	}
	return err.Error()
}

// resultLabel maps an exchange or decode error to a metrics result label
func resultLabel(err error) string {
	switch {
	case errors.Is(err, ntp.ErrTimeout):
		return metrics.ResultTimeout
	case errors.Is(err, ntp.ErrBind):
		return metrics.ResultBindFailed
	case errors.Is(err, ntp.ErrSendFailed):
		return metrics.ResultSendFailed
	case errors.Is(err, ntp.ErrShortResponse):
		return metrics.ResultShortResponse
	case errors.Is(err, ntp.ErrTimestampUnderflow):
		return metrics.ResultInvalidTimestamp
	default:
		return metrics.ResultReceiveFailed
	}
}
