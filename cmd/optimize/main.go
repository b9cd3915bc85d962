package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/plantcare/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	episodes := flag.Int("episodes", 5, "Episodes per evaluation")
	baseSeed := flag.Uint64("seed", 1000, "Base seed for evaluation episodes")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	stepSize := flag.Float64("step-size", 0.3, "Initial CMA-ES step size in normalized units")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, *episodes, *baseSeed, baseCfg)

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	prog, err := newProgress(params, *maxEvals, logFile, os.Stdout)
	if err != nil {
		log.Fatalf("failed to write log header: %v", err)
	}

	// CMA-ES searches the unit cube; candidates are mapped back to raw
	// parameter ranges and clamped before use.
	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness, err := evaluator.Evaluate(ctx, values)
			if err != nil {
				if evalErr == nil {
					evalErr = err
				}
				return fitness
			}
			prog.record(fitness, values, evaluator.LastSummary())
			return fitness
		},
		Status: func() (optimize.Status, error) {
			if evalErr != nil {
				return optimize.Failure, evalErr
			}
			return optimize.NotTerminated, nil
		},
	}

	dim := params.Dim()
	popSize := *population
	if popSize == 0 {
		// Auto-size: 4 + floor(3*ln(n))
		popSize = 4 + int(3.0*math.Log(float64(dim)))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: *stepSize,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Episodes already run in parallel inside each evaluation
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Episodes per evaluation: %d, base seed: %d\n", *episodes, *baseSeed)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := prog.bestParams
	if best == nil {
		if result == nil {
			log.Fatal("no evaluations completed")
		}
		best = params.Clamp(params.Denormalize(result.X))
	}

	summary := evaluator.BestSummary()
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n",
		prog.count, formatDuration(time.Since(prog.start)))
	fmt.Printf("Best mean reward: %.2f (avg health %.1f, water %.0f ml, survival %.0f%%)\n",
		-prog.bestFitness, summary.AvgHealthMean, summary.WaterMean, 100*summary.SurvivalRate)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, best[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
