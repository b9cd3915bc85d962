package eval

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
	"github.com/pthm-cable/plantcare/policy"
	"github.com/pthm-cable/plantcare/telemetry"
)

func TestEfficiency(t *testing.T) {
	got := Efficiency(90, 1000, 20000)
	want := 90 / (1000 + 20 + 1e-6)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Efficiency = %v, want %v", got, want)
	}
	if e := Efficiency(50, 0, 0); e != 50/1e-6 {
		t.Errorf("Efficiency with no resources = %v", e)
	}
}

func TestSummarize(t *testing.T) {
	results := []EpisodeResult{
		{AvgHealth: 80, FinalHealth: 90, TotalWater: 100, TotalEnergy: 1000, Violations: 2, TotalReward: 5, Efficiency: 1, Truncated: true},
		{AvgHealth: 60, FinalHealth: 5, TotalWater: 300, TotalEnergy: 3000, Violations: 4, TotalReward: -5, Efficiency: 3, Terminated: true},
	}
	s := Summarize("optimized", results)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"avg health mean", s.AvgHealthMean, 70},
		{"avg health std", s.AvgHealthStd, 10},
		{"final health", s.FinalHealthMean, 47.5},
		{"water", s.WaterMean, 200},
		{"energy", s.EnergyMean, 2000},
		{"violations", s.ViolationsMean, 3},
		{"efficiency", s.EfficiencyMean, 2},
		{"reward", s.RewardMean, 0},
		{"survival", s.SurvivalRate, 0.5},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if s.Episodes != 2 || s.Policy != "optimized" {
		t.Errorf("summary header = %+v", s)
	}

	if empty := Summarize("idle", nil); empty.Episodes != 0 || empty.AvgHealthMean != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestEvaluateSeedsAndOrder(t *testing.T) {
	cfg := config.Default()
	ev := New(cfg, WithEpisodes(4), WithBaseSeed(100), WithWorkers(3), WithRunID("run-1"))

	rep, err := ev.Evaluate(context.Background(), policy.NameOptimized, Named(policy.NameOptimized, cfg))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(rep.Episodes) != 4 {
		t.Fatalf("got %d episodes, want 4", len(rep.Episodes))
	}
	for i, r := range rep.Episodes {
		if r.Episode != i || r.Seed != 100+uint64(i) {
			t.Errorf("result %d has episode %d seed %d", i, r.Episode, r.Seed)
		}
		if !r.Truncated || r.Steps != 720 {
			t.Errorf("episode %d: truncated=%v steps=%d, want a full episode", i, r.Truncated, r.Steps)
		}
		if len(r.Days) != 30 {
			t.Errorf("episode %d: %d day windows, want 30", i, len(r.Days))
		}
		if r.Days[29].EndStep != 720 || r.Days[0].Seed != r.Seed {
			t.Errorf("episode %d: last day %+v", i, r.Days[29])
		}
	}
	if rep.Summary.RunID != "run-1" || rep.Summary.Episodes != 4 {
		t.Errorf("summary = %+v", rep.Summary)
	}
}

// Results must not depend on how episodes are scheduled.
func TestEvaluateDeterministicAcrossWorkers(t *testing.T) {
	cfg := config.Default()
	run := func(workers int) Report {
		ev := New(cfg, WithEpisodes(3), WithWorkers(workers))
		rep, err := ev.Evaluate(context.Background(), policy.NameThresholdRule, Named(policy.NameThresholdRule, cfg))
		if err != nil {
			t.Fatal(err)
		}
		return rep
	}

	a, b := run(1), run(3)
	if a.Summary != b.Summary {
		t.Errorf("summaries differ:\n%+v\n%+v", a.Summary, b.Summary)
	}
	for i := range a.Episodes {
		if a.Episodes[i].TotalReward != b.Episodes[i].TotalReward {
			t.Errorf("episode %d reward %v vs %v", i, a.Episodes[i].TotalReward, b.Episodes[i].TotalReward)
		}
	}
}

func TestEvaluateMatchesManualRollout(t *testing.T) {
	cfg := config.Default()
	ev := New(cfg, WithEpisodes(1), WithBaseSeed(7))
	rep, err := ev.Evaluate(context.Background(), "fixed", Named(policy.NameFixedSchedule, cfg))
	if err != nil {
		t.Fatal(err)
	}

	e, err := env.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	p := policy.NewFixedSchedule(cfg.Baselines.FixedSchedule)
	obs, _ := e.Reset(7, env.ResetOptions{})
	var total float64
	var last env.StepResult
	for {
		last, err = e.Step(p.Act(obs))
		if err != nil {
			t.Fatal(err)
		}
		total += last.Reward
		obs = last.Observation
		if last.Done() {
			break
		}
	}

	got := rep.Episodes[0]
	if got.TotalReward != total || got.Steps != last.Info.CurrentStep || got.AvgHealth != last.Info.AvgHealth {
		t.Errorf("evaluator %+v differs from manual rollout (reward %v, steps %d)", got, total, last.Info.CurrentStep)
	}
	if got.Terminated != last.Terminated {
		t.Errorf("terminated = %v, want %v", got.Terminated, last.Terminated)
	}
}

func TestEvaluateFactoryError(t *testing.T) {
	boom := errors.New("boom")
	ev := New(config.Default(), WithEpisodes(2))
	_, err := ev.Evaluate(context.Background(), "broken", func() (policy.Policy, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := New(config.Default(), WithEpisodes(2))
	_, err := ev.Evaluate(ctx, policy.NameIdle, Named(policy.NameIdle, config.Default()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCompare(t *testing.T) {
	cfg := config.Default()
	pc := telemetry.NewPerfCollector(100)
	ev := New(cfg, WithEpisodes(2), WithPerf(pc))

	reports, err := ev.Compare(context.Background(), policy.Baselines())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(reports) != len(policy.Baselines()) {
		t.Fatalf("got %d reports", len(reports))
	}
	for i, name := range policy.Baselines() {
		if reports[i].Summary.Policy != name {
			t.Errorf("report %d is %q, want %q", i, reports[i].Summary.Policy, name)
		}
	}
	if pc.Stats().TotalSteps == 0 {
		t.Error("perf collector saw no steps")
	}

	if _, err := ev.Compare(context.Background(), []string{"nonexistent"}); err == nil {
		t.Error("Compare with unknown policy succeeded")
	}
}

// Idle plants wilt and the alert detector notices.
func TestEvaluateCollectsAlerts(t *testing.T) {
	cfg := config.Default()
	ev := New(cfg, WithEpisodes(1))
	rep, err := ev.Evaluate(context.Background(), policy.NameIdle, Named(policy.NameIdle, cfg))
	if err != nil {
		t.Fatal(err)
	}
	r := rep.Episodes[0]
	if !r.Terminated {
		t.Fatalf("idle plant survived %d steps", r.Steps)
	}
	var drought bool
	for _, a := range r.Alerts {
		if a.Type == telemetry.AlertDrought {
			drought = true
		}
		if a.Policy != policy.NameIdle {
			t.Errorf("alert without policy tag: %+v", a)
		}
	}
	if !drought {
		t.Errorf("no drought alert in %v", r.Alerts)
	}
	if last := r.Days[len(r.Days)-1]; last.EndStep != r.Steps {
		t.Errorf("last window ends at %d, episode at %d", last.EndStep, r.Steps)
	}
}
