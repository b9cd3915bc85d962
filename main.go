package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
	"github.com/pthm-cable/plantcare/eval"
	"github.com/pthm-cable/plantcare/logging"
	"github.com/pthm-cable/plantcare/policy"
	"github.com/pthm-cable/plantcare/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	policyName := flag.String("policy", policy.NameThresholdRule, "Policy to run (fixed_schedule, threshold_rule, optimized, idle)")
	weather := flag.String("weather", "", "Weather scenario override (normal, hot_dry, cloudy)")
	seed := flag.Uint64("seed", 0, "Base seed; episode i uses seed+i (0 = use config)")
	episodes := flag.Int("episodes", 0, "Number of episodes (0 = use config)")
	workers := flag.Int("workers", -1, "Concurrent episodes (-1 = use config, 0 = GOMAXPROCS)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output daily stats and alerts via slog")
	logLevel := flag.String("log-level", "info", "Log level (error, warn, info, debug, trace)")
	logFormat := flag.String("log-format", "json", "Log format (json or text)")
	perf := flag.Bool("perf", false, "Time the control loop (runs episodes sequentially)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := logging.NewLogger(*logLevel, *logFormat, os.Stdout)
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg().Clone()
	if *weather != "" {
		cfg.Weather.Scenario = *weather
		if err := cfg.Refresh(); err != nil {
			slog.Error("invalid weather override", "error", err)
			os.Exit(1)
		}
	}

	runID := uuid.NewString()
	opts := []eval.Option{
		eval.WithRunID(runID),
		eval.WithLogger(logger),
		eval.WithEnvOptions(env.WithLogger(logger)),
	}
	if *seed != 0 {
		opts = append(opts, eval.WithBaseSeed(*seed))
	}
	if *episodes > 0 {
		opts = append(opts, eval.WithEpisodes(*episodes))
	}
	if *workers >= 0 {
		opts = append(opts, eval.WithWorkers(*workers))
	}
	var pc *telemetry.PerfCollector
	if *perf {
		pc = telemetry.NewPerfCollector(cfg.Derived.MaxSteps)
		opts = append(opts, eval.WithPerf(pc))
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting evaluation",
		"run_id", runID,
		"policy", *policyName,
		"scenario", cfg.Weather.Scenario,
		"max_steps", cfg.Derived.MaxSteps,
	)
	start := time.Now()

	ev := eval.New(cfg, opts...)
	report, err := ev.Evaluate(ctx, *policyName, eval.Named(*policyName, cfg))
	if err != nil {
		slog.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	if *logStats {
		eval.LogReport(report)
	}
	if err := eval.WriteReport(om, report); err != nil {
		slog.Error("failed to write output", "error", err)
	}
	if pc != nil {
		stats := pc.Stats()
		slog.Info("perf", "stats", stats)
		if err := om.WritePerf(stats, *policyName); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	slog.Info("evaluation complete",
		"summary", report.Summary,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"output_dir", om.Dir(),
	)
}
