package env

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/plantcare/systems"
)

// Info carries episode diagnostics alongside each observation.
type Info struct {
	TotalWaterUsed  float64 `json:"total_water_used"`
	TotalEnergyUsed float64 `json:"total_energy_used"`
	TotalViolations int     `json:"total_violations"`
	AvgHealth       float64 `json:"avg_health"`
	CurrentStep     int     `json:"current_step"`
}

// Info computes diagnostics for s.
func (s State) Info() Info {
	var avg float64
	if len(s.history) > 0 {
		avg = stat.Mean(s.history, nil)
	}
	return Info{
		TotalWaterUsed:  s.TotalWater,
		TotalEnergyUsed: s.TotalEnergy,
		TotalViolations: s.TotalViolations,
		AvgHealth:       avg,
		CurrentStep:     s.Step,
	}
}

// LogValue implements slog.LogValuer.
func (i Info) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("total_water_used", i.TotalWaterUsed),
		slog.Float64("total_energy_used", i.TotalEnergyUsed),
		slog.Int("total_violations", i.TotalViolations),
		slog.Float64("avg_health", i.AvgHealth),
		slog.Int("current_step", i.CurrentStep),
	)
}

// StepResult is the outcome of one transition.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info

	// Breakdown splits Reward into its weighted terms.
	Breakdown systems.Reward
	// LampOn and WaterML record the action as applied after normalization;
	// WaterClipped is set when the requested water amount was out of range.
	LampOn       bool
	WaterML      float64
	WaterClipped bool
}

// Done reports whether the episode ended on this step.
func (r StepResult) Done() bool {
	return r.Terminated || r.Truncated
}
