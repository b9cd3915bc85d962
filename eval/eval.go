// Package eval runs policies over seeded batches of episodes and aggregates
// the results.
package eval

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
	"github.com/pthm-cable/plantcare/policy"
	"github.com/pthm-cable/plantcare/telemetry"
)

// Factory creates a policy for one episode. Each episode gets its own
// instance, so stateful policies do not leak across episodes.
type Factory func() (policy.Policy, error)

// Named returns a Factory for a policy known to policy.Lookup.
func Named(name string, cfg *config.Config) Factory {
	return func() (policy.Policy, error) { return policy.Lookup(name, cfg) }
}

// Report holds the per-episode results and summary of one policy.
type Report struct {
	Summary  Summary
	Episodes []EpisodeResult
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithEpisodes overrides evaluation.episodes.
func WithEpisodes(n int) Option {
	return func(ev *Evaluator) { ev.episodes = n }
}

// WithBaseSeed overrides evaluation.base_seed.
func WithBaseSeed(seed uint64) Option {
	return func(ev *Evaluator) { ev.baseSeed = seed }
}

// WithWorkers bounds the number of concurrent episodes. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(ev *Evaluator) { ev.workers = n }
}

// WithResetOptions applies per-episode starting overrides.
func WithResetOptions(opts env.ResetOptions) Option {
	return func(ev *Evaluator) { ev.reset = opts }
}

// WithEnvOptions passes options to every environment, e.g. env.WithWeather.
func WithEnvOptions(opts ...env.Option) Option {
	return func(ev *Evaluator) { ev.envOpts = append(ev.envOpts, opts...) }
}

// WithLogger installs a logger for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(ev *Evaluator) { ev.logger = l }
}

// WithRunID tags summaries with an identifier.
func WithRunID(id string) Option {
	return func(ev *Evaluator) { ev.runID = id }
}

// WithPerf times the control loop into pc. Timing forces sequential
// episodes since the collector is not synchronized.
func WithPerf(pc *telemetry.PerfCollector) Option {
	return func(ev *Evaluator) { ev.perf = pc }
}

// Evaluator runs batches of episodes. Episode i is seeded base_seed + i and
// runs on its own Env; only the read-only config is shared.
type Evaluator struct {
	cfg      *config.Config
	episodes int
	baseSeed uint64
	workers  int
	runID    string
	reset    env.ResetOptions
	envOpts  []env.Option
	logger   *slog.Logger
	perf     *telemetry.PerfCollector
}

// New creates an Evaluator for cfg.
func New(cfg *config.Config, opts ...Option) *Evaluator {
	ev := &Evaluator{
		cfg:      cfg,
		episodes: cfg.Evaluation.Episodes,
		baseSeed: cfg.Evaluation.BaseSeed,
		workers:  cfg.Evaluation.Workers,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.workers <= 0 {
		ev.workers = runtime.GOMAXPROCS(0)
	}
	if ev.perf != nil {
		ev.workers = 1
	}
	return ev
}

// Evaluate runs all episodes of one policy. Results are in episode order
// regardless of completion order.
func (ev *Evaluator) Evaluate(ctx context.Context, name string, factory Factory) (Report, error) {
	results := make([]EpisodeResult, ev.episodes)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ev.workers)
	for i := range ev.episodes {
		g.Go(func() error {
			p, err := factory()
			if err != nil {
				return fmt.Errorf("creating policy %s: %w", name, err)
			}
			r, err := ev.runEpisode(ctx, name, i, p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	summary := Summarize(name, results)
	summary.RunID = ev.runID
	ev.logger.Info("policy evaluated", "summary", summary)

	return Report{Summary: summary, Episodes: results}, nil
}

// Compare evaluates each named policy in turn.
func (ev *Evaluator) Compare(ctx context.Context, names []string) ([]Report, error) {
	reports := make([]Report, 0, len(names))
	for _, name := range names {
		r, err := ev.Evaluate(ctx, name, Named(name, ev.cfg))
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// runEpisode plays one episode to the end, collecting daily stats and
// alerts along the way.
func (ev *Evaluator) runEpisode(ctx context.Context, name string, episode int, p policy.Policy) (EpisodeResult, error) {
	e, err := env.New(ev.cfg, ev.envOpts...)
	if err != nil {
		return EpisodeResult{}, err
	}

	seed := ev.baseSeed + uint64(episode)
	collector := telemetry.NewCollector(ev.cfg.Telemetry.WindowHours, ev.cfg.Environment.TimestepHours)
	detector := telemetry.NewAlertDetector(ev.cfg)

	result := EpisodeResult{Policy: name, Episode: episode, Seed: seed}
	flush := func(step int) {
		day := collector.Flush(step)
		day.Policy, day.Episode, day.Seed = name, episode, seed
		result.Days = append(result.Days, day)
		result.Alerts = append(result.Alerts, detector.Check(day)...)
	}

	obs, info := e.Reset(seed, ev.reset)
	collector.Reset(obs)

	for {
		if err := ctx.Err(); err != nil {
			return EpisodeResult{}, err
		}

		ev.perf.StartStep()
		ev.perf.StartPhase(telemetry.PhasePolicy)
		a := p.Act(obs)
		ev.perf.StartPhase(telemetry.PhaseStep)
		res, err := e.Step(a)
		if err != nil {
			return EpisodeResult{}, fmt.Errorf("episode %d step %d: %w", episode, info.CurrentStep, err)
		}
		ev.perf.StartPhase(telemetry.PhaseTelemetry)
		collector.Record(res)
		if collector.ShouldFlush(res.Info.CurrentStep) {
			flush(res.Info.CurrentStep)
		}
		ev.perf.EndStep()

		obs, info = res.Observation, res.Info
		result.TotalReward += res.Reward
		if res.Done() {
			result.Terminated = res.Terminated
			result.Truncated = res.Truncated
			break
		}
	}
	if collector.Pending() {
		flush(info.CurrentStep)
	}

	result.AvgHealth = info.AvgHealth
	result.FinalHealth = obs.Health()
	result.TotalWater = info.TotalWaterUsed
	result.TotalEnergy = info.TotalEnergyUsed
	result.Violations = info.TotalViolations
	result.Steps = info.CurrentStep
	result.Efficiency = Efficiency(info.AvgHealth, info.TotalWaterUsed, info.TotalEnergyUsed)

	ev.logger.Debug("episode finished",
		"policy", name,
		"episode", episode,
		"seed", seed,
		"steps", result.Steps,
		"avg_health", result.AvgHealth,
		"terminated", result.Terminated,
	)
	return result, nil
}
