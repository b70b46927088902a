package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"genoscope-hq/callisto/pkg/cli"
	"genoscope-hq/callisto/pkg/config"
	"genoscope-hq/callisto/pkg/corpus"
	"genoscope-hq/callisto/pkg/evidence/recorder"
	"genoscope-hq/callisto/pkg/evidence/retention"
	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
	"genoscope-hq/callisto/pkg/interpret"
	"genoscope-hq/callisto/pkg/telemetry/logging"
	"genoscope-hq/callisto/pkg/telemetry/metrics"
	"genoscope-hq/callisto/pkg/variant"
)

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Interpret samples from stdin against a watched corpus",
	Long: `Load the configured rule corpus and interpret samples read from
standard input, one sample of space-separated calls per line. Results
are written to standard output as JSON lines.

With corpus.watch enabled the corpus reloads when its files change on
disk; in-flight samples finish against the corpus they started with.
With evidence enabled every interpretation is recorded, and retention
pruning runs on its configured schedule.

Examples:
  # Interpret a batch of samples
  callisto run --config config.yaml < samples.txt

  # Validate config without reading samples
  callisto run --dry-run`,
	RunE: runInterpreter,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without reading samples")
}

// sampleOutput is the JSON line written per input sample.
type sampleOutput struct {
	Sample  string       `json:"sample"`
	Results []evalResult `json:"results"`
}

func runInterpreter(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx := cli.SetupSignalHandler()

	loader := corpus.NewLoader(cfg.Corpus.Extended, nil)
	c, err := loader.Load(cfg.Corpus.Path)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	engine := interpret.NewEngine(c)

	var interpretMetrics *metrics.InterpretMetrics
	if cfg.Telemetry.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		interpretMetrics = metrics.NewInterpretMetrics(cfg.Telemetry.Metrics, registry)
		engine.WithMetrics(interpretMetrics)
		startMetricsServer(ctx, cfg.Telemetry.Metrics.Listen, registry)
	}

	if cfg.Evidence.Enabled {
		store, err := openStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()

		rec := recorder.New(store, cfg.Evidence.Recorder)
		defer rec.Close()
		engine.WithRecorder(rec)

		scheduler, err := retention.NewScheduler(store, cfg.Evidence.Retention)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
	}

	if cfg.Corpus.Watch {
		watcher, err := corpus.NewWatcher(cfg.Corpus.Path, cfg.Corpus.Debounce, nil)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()
		go func() {
			_ = watcher.Watch(ctx, func() error {
				reloaded, err := loader.Load(cfg.Corpus.Path)
				if err != nil {
					if interpretMetrics != nil {
						interpretMetrics.RecordCorpusReload("error")
						var synErr *hcvrerr.SyntaxError
						if errors.As(err, &synErr) {
							interpretMetrics.RecordParseFailure()
						}
					}
					return err
				}
				engine.SetCorpus(reloaded)
				if interpretMetrics != nil {
					interpretMetrics.RecordCorpusReload("ok")
				}
				return nil
			})
		}()
	}

	return interpretStdin(ctx, engine)
}

// interpretStdin reads one sample per line and writes one JSON line per
// sample. It returns on EOF or when ctx is cancelled.
func interpretStdin(ctx context.Context, engine *interpret.Engine) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	encoder := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := interpretSample(encoder, engine, line); err != nil {
				return err
			}
		}
	}
}

func interpretSample(encoder *json.Encoder, engine *interpret.Engine, line string) error {
	calls, err := variant.ParseCalls(line)
	if err != nil {
		return encoder.Encode(sampleOutput{
			Sample:  line,
			Results: []evalResult{{Error: err.Error()}},
		})
	}

	out := sampleOutput{Sample: line}
	for _, interp := range engine.Interpret(calls) {
		out.Results = append(out.Results, toEvalResult(interp))
	}
	return encoder.Encode(out)
}

// startMetricsServer serves the Prometheus registry on /metrics until ctx is
// cancelled.
func startMetricsServer(ctx context.Context, listen string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics server listening", "address", listen)
}
