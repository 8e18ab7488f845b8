// Command probe runs a fixed battery of read-only checks against an Ethereum
// JSON-RPC endpoint and exits 0 only when every check passed.
//
// Usage examples:
//
//	probe                                   ← probe http://localhost:8545
//	probe --endpoint https://rpc.example    ← probe another node
//	probe --json --metrics-file probe.prom  ← also write a report and metrics
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmagro/eth-rpc-probe/internal/config"
	"github.com/dmagro/eth-rpc-probe/internal/env"
	"github.com/dmagro/eth-rpc-probe/internal/format"
	"github.com/dmagro/eth-rpc-probe/internal/metrics"
	"github.com/dmagro/eth-rpc-probe/internal/probe"
	"github.com/dmagro/eth-rpc-probe/internal/reports"
	"github.com/dmagro/eth-rpc-probe/internal/rpc"
)

type options struct {
	configPath  string
	envFile     string
	endpoint    string
	jsonOut     bool
	metricsFile string
	timings     bool
	verbose     bool
	noColor     bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit status. It is the only
// place a run's outcome becomes an exit code; faults outside the probe
// steps are recovered here and reported the same way as step failures.
func execute(args []string, stdout, stderr io.Writer) (code int) {
	var outcome probe.Outcome

	defer func() {
		if v := recover(); v != nil {
			outcome = probe.Outcome{Err: fmt.Errorf("%w: %v", probe.ErrUnclassified, v)}
		}
		if !outcome.Success() {
			format.Error(stderr, outcome.Err)
		}
		code = outcome.ExitCode()
	}()

	cmd := rootCmd(stdout, stderr, &outcome)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		outcome.Err = err
	}
	return
}

func rootCmd(stdout, stderr io.Writer, outcome *probe.Outcome) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe an Ethereum JSON-RPC endpoint",
		Long: `Run a fixed, ordered battery of read-only checks against a node:
chain id, latest block, mining status, peer count, accounts and balances.

The run stops at the first failure. Exit status is 0 only when every check passed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			*outcome = runProbe(cmd.Context(), cfg, opts, stdout, stderr)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file path (optional)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", env.DefaultFile, "Environment file loaded before the config")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", config.DefaultEndpoint, "JSON-RPC endpoint URL")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Write a JSON report to the reports directory")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus text-format RPC metrics to this path")
	cmd.Flags().BoolVar(&opts.timings, "timings", false, "Print a table of RPC call latencies after the run")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging to stderr")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

// loadConfig merges defaults, the optional config file and explicit flags,
// in that order of precedence.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	if err := env.Load(opts.envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("endpoint") || opts.configPath == "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	return cfg, nil
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runProbe(ctx context.Context, cfg *config.Config, opts options, stdout, stderr io.Writer) probe.Outcome {
	if opts.noColor {
		format.DisableColors()
	}

	logger := newLogger(opts.verbose)
	defer func() {
		_ = logger.Sync()
	}()

	rpcMetrics := metrics.NewRPCClient(cfg.Endpoint)
	recorder := &probe.Recorder{}

	connect := func() (probe.Transport, error) {
		return rpc.NewClient(cfg.Endpoint, cfg.Timeout,
			rpc.WithLogger(logger.Named("rpc")),
			rpc.WithObserver(rpcMetrics),
			rpc.WithObserver(recorder),
		), nil
	}

	outcome := probe.New(cfg.Endpoint, connect, stdout, probe.WithLogger(logger.Named("probe"))).Run(ctx)
	outcome.Report.Calls = recorder.Calls()

	if opts.timings {
		format.Timings(stdout, recorder.Timings())
	}

	if cfg.MetricsFile != "" {
		if err := rpcMetrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("failed to write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
			fmt.Fprintf(stderr, "Warning: failed to write metrics file: %v\n", err)
		}
	}

	if opts.jsonOut {
		path, err := reports.WriteJSON(cfg.ReportDir, "probe", outcome.Report)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: failed to write JSON report: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "JSON report written to: %s\n", path)
		}
	}

	return outcome
}
