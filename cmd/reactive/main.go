package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/internal/config"
	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/logging"
	"github.com/vango-dev/reactive/pkg/observe"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// runtimeEnv is what every subcommand gets after the root pre-run: the
// validated config, the logger and the installed observers.
type runtimeEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	observer observe.Observer
}

type rootFlags struct {
	configDir string
	logLevel  string
	jsonLogs  bool
}

func newRootCmd(out io.Writer) (*cobra.Command, *runtimeEnv) {
	env := &runtimeEnv{}
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "reactive",
		Short: "Explore and inspect reactive value graphs",
		Long: `reactive drives the reactive cell library from the command line.

It runs demonstrations of generation-tracked cells shared between
goroutines, prints scope trees and serves a live inspector with
Prometheus metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup(out, flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			reactive.SetObserver(nil)
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVarP(&flags.configDir, "config", "c", ".", "Directory containing reactive.json")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (default from reactive.json)")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "Write logs as JSON")

	rootCmd.AddCommand(
		demoCmd(env),
		inspectCmd(env),
		treeCmd(env),
		versionCmd(),
	)
	return rootCmd, env
}

// setup loads configuration and installs logging and observers.
func (env *runtimeEnv) setup(out io.Writer, flags rootFlags) error {
	cfg, err := config.LoadOrDefault(flags.configDir)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.jsonLogs {
		cfg.LogFormat = "json"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return rerrors.New("E122").Wrap(err)
	}
	logger := logging.New(out, level, logging.Options{JSON: cfg.LogFormat == "json"})
	slog.SetDefault(logger)

	reactive.SetConfig(cfg.Runtime())

	observers := []observe.Observer{observe.NewLogger(logger)}
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector())
		observers = append(observers, observe.NewMetrics(
			observe.WithRegistry(registry),
			observe.WithNamespace(cfg.Metrics.Namespace),
		))
	}
	if cfg.Tracing.Enabled {
		minDuration, _ := cfg.TracingMinDuration()
		observers = append(observers, observe.NewTracer(observe.WithMinDuration(minDuration)))
	}
	obs := observe.Multi(observers...)
	reactive.SetObserver(obs)

	env.cfg = cfg
	env.logger = logger
	env.registry = registry
	env.observer = obs
	logger.Debug("configuration loaded", "path", cfg.Path(), "max_notify_rounds", cfg.MaxNotifyRounds)
	return nil
}

func main() {
	rootCmd, _ := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		rerrors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
