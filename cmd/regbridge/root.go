package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/benithors/regbridge/internal/config"
	"github.com/benithors/regbridge/internal/host"
	"github.com/benithors/regbridge/internal/metrics"
	"github.com/benithors/regbridge/internal/registrar/spaceship"
)

type app struct {
	Version string

	// Global flags.
	VersionFlag bool
	ConfigPath  string
	Format      string
	JSON        bool
	NDJSON      bool
	Plain       bool
	Timeout     time.Duration
	BaseURL     string
	LogLevel    string
	LogFormat   string
	Quiet       bool
	Verbose     bool

	// Derived runtime state.
	cfg        config.Config
	outFormat  outputFormat
	logger     *log.Logger
	registry   *prometheus.Registry
	dispatcher *host.Dispatcher
}

func newRootCmd(ver string) *cobra.Command {
	a := &app{Version: ver}

	root := &cobra.Command{
		Use:           "regbridge",
		Short:         "Drive the Spaceship registrar through host-style operations",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SetFlagErrorFunc(usageErr)

	pf := root.PersistentFlags()
	pf.BoolVar(&a.VersionFlag, "version", false, "Print version and exit")
	pf.StringVar(&a.ConfigPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&a.Format, "format", "auto", "Output format: auto|table|ndjson|json|plain")
	pf.BoolVar(&a.JSON, "json", false, "Alias for --format json (single JSON array)")
	pf.BoolVar(&a.NDJSON, "ndjson", false, "Alias for --format ndjson (one JSON object per line)")
	pf.BoolVar(&a.NDJSON, "jsonl", false, "Alias for --format ndjson (one JSON object per line)")
	pf.BoolVar(&a.Plain, "plain", false, "Alias for --format plain (stable tab-separated)")
	pf.DurationVar(&a.Timeout, "timeout", 15*time.Second, "Per-request timeout for registrar calls (e.g. 15s)")
	pf.StringVar(&a.BaseURL, "base-url", spaceship.DefaultBaseURL, "Spaceship API base URL")
	pf.StringVar(&a.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	pf.StringVar(&a.LogFormat, "log-format", "text", "Log format: text|json")
	pf.BoolVarP(&a.Quiet, "quiet", "q", false, "Only log errors")
	pf.BoolVarP(&a.Verbose, "verbose", "v", false, "Verbose stderr output (debug logging)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if a.VersionFlag {
			fmt.Fprintf(os.Stdout, "regbridge %s (%s/%s)\n", a.Version, runtime.GOOS, runtime.GOARCH)
			return errExit0
		}
		if a.Quiet && a.Verbose {
			return usageErr(cmd, fmt.Errorf("flags are mutually exclusive: --quiet, --verbose"))
		}

		formatStr, err := a.resolveFormatFlags()
		if err != nil {
			return usageErr(cmd, err)
		}
		a.outFormat = resolveFormat(formatStr, os.Stdout)

		cfg, err := config.Load(a.ConfigPath)
		if err != nil {
			return usageErr(cmd, err)
		}
		a.applyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return usageErr(cmd, err)
		}
		a.cfg = cfg

		logger, err := cfg.NewLogger()
		if err != nil {
			return usageErr(cmd, err)
		}
		a.logger = logger

		a.registry = prometheus.NewRegistry()
		a.dispatcher = host.NewDispatcher(host.Options{
			Factory:  spaceship.NewFactory(cfg.SpaceshipOptions()),
			Defaults: cfg.Credentials(),
			Logger:   logger,
			Metrics:  metrics.New(a.registry),
		})
		return nil
	}

	root.AddCommand(newCallCmd(a))
	root.AddCommand(newSyncCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newMetaCmd(a))

	return root
}

func (a *app) resolveFormatFlags() (string, error) {
	formatStr := strings.ToLower(strings.TrimSpace(a.Format))
	if formatStr == "" {
		formatStr = "auto"
	}

	aliases := 0
	if a.JSON {
		aliases++
	}
	if a.NDJSON {
		aliases++
	}
	if a.Plain {
		aliases++
	}
	if aliases > 1 {
		return "", fmt.Errorf("flags are mutually exclusive: --json, --ndjson, --plain")
	}
	if formatStr != "auto" && aliases == 1 {
		return "", fmt.Errorf("do not combine --format with --json/--ndjson/--plain")
	}

	switch {
	case a.JSON:
		formatStr = "json"
	case a.NDJSON:
		formatStr = "ndjson"
	case a.Plain:
		formatStr = "plain"
	}
	return formatStr, nil
}

// applyFlags layers explicitly set flags over the loaded configuration.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = a.Timeout
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.BaseURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.LogFormat
	}
	switch {
	case a.Verbose:
		cfg.LogLevel = "debug"
	case a.Quiet:
		cfg.LogLevel = "error"
	}
}
