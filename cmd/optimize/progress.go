package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/pthm-cable/plantcare/eval"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// progress records every candidate to the CSV log, keeps the best one and
// prints a status line with an ETA.
type progress struct {
	params   *ParamVector
	maxEvals int
	csv      *csv.Writer
	status   io.Writer
	start    time.Time

	count       int
	bestFitness float64
	bestParams  []float64
}

func newProgress(params *ParamVector, maxEvals int, log, status io.Writer) (*progress, error) {
	p := &progress{
		params:      params,
		maxEvals:    maxEvals,
		csv:         csv.NewWriter(log),
		status:      status,
		start:       time.Now(),
		bestFitness: math.Inf(1),
	}

	header := []string{"eval", "fitness", "avg_health", "water_ml", "survival_rate"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := p.csv.Write(header); err != nil {
		return nil, err
	}
	p.csv.Flush()
	return p, p.csv.Error()
}

// record logs one evaluated candidate. values are the clamped raw
// parameters actually applied.
func (p *progress) record(fitness float64, values []float64, s eval.Summary) {
	p.count++
	if fitness < p.bestFitness {
		p.bestFitness = fitness
		p.bestParams = values
	}

	row := []string{
		strconv.Itoa(p.count),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(s.AvgHealthMean, 'f', 4, 64),
		strconv.FormatFloat(s.WaterMean, 'f', 1, 64),
		strconv.FormatFloat(s.SurvivalRate, 'f', 4, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	p.csv.Write(row)
	p.csv.Flush()

	elapsed := time.Since(p.start)
	remaining := time.Duration(p.maxEvals-p.count) * (elapsed / time.Duration(p.count))
	fmt.Fprintf(p.status, "Eval %d/%d: reward=%.2f health=%.1f survival=%.0f%% (best=%.2f) | elapsed: %s, ETA: %s\n",
		p.count, p.maxEvals, -fitness, s.AvgHealthMean, 100*s.SurvivalRate, -p.bestFitness,
		formatDuration(elapsed), formatDuration(max(remaining, 0)))
}
