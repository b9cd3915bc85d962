package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/eval"
	"github.com/pthm-cable/plantcare/policy"
)

// FitnessEvaluator scores threshold-rule parameters by running evaluation
// episodes. Lower fitness is better.
type FitnessEvaluator struct {
	params     *ParamVector
	episodes   int
	baseSeed   uint64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	bestSummary eval.Summary
	last        eval.Summary // summary from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, episodes int, baseSeed uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		episodes:    episodes,
		baseSeed:    baseSeed,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastSummary returns the summary of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() eval.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// BestSummary returns the summary of the best evaluation so far.
func (fe *FitnessEvaluator) BestSummary() eval.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSummary
}

// Evaluate computes fitness for raw parameter values: the negated mean
// episode reward. Every call uses the same seeds, so candidates are compared
// on identical weather.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) (float64, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	ev := eval.New(cfg, eval.WithEpisodes(fe.episodes), eval.WithBaseSeed(fe.baseSeed))
	report, err := ev.Evaluate(ctx, policy.NameThresholdRule, eval.Named(policy.NameThresholdRule, cfg))
	if err != nil {
		return math.Inf(1), err
	}
	fitness := -report.Summary.RewardMean

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestSummary = report.Summary
	}
	fe.last = report.Summary
	fe.mu.Unlock()

	return fitness, nil
}
