package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DayStats holds aggregated plant statistics for one telemetry window
// (a simulated day by default).
type DayStats struct {
	Policy  string `csv:"policy"`
	Episode int    `csv:"episode"`
	Seed    uint64 `csv:"seed"`
	Window  int    `csv:"window"`

	StartStep int     `csv:"start_step"`
	EndStep   int     `csv:"end_step"`
	SimHours  float64 `csv:"sim_hours"`

	// Soil
	MoistureMean float64 `csv:"moisture_mean"`
	MoistureMin  float64 `csv:"moisture_min"`
	MoistureP10  float64 `csv:"moisture_p10"`
	MoistureP50  float64 `csv:"moisture_p50"`
	MoistureP90  float64 `csv:"moisture_p90"`

	// Climate
	TempMean  float64 `csv:"temp_mean"`
	TempMin   float64 `csv:"temp_min"`
	TempMax   float64 `csv:"temp_max"`
	LightMean float64 `csv:"light_mean"`

	// Plant
	HealthStart float64 `csv:"health_start"`
	HealthEnd   float64 `csv:"health_end"`
	HealthMin   float64 `csv:"health_min"`

	// Actuation and cost
	WaterML    float64 `csv:"water_ml"`
	Waterings  int     `csv:"waterings"`
	LampHours  float64 `csv:"lamp_hours"`
	Energy     float64 `csv:"energy"`
	Violations int     `csv:"violations"`
	Reward     float64 `csv:"reward"`
}

// HealthDelta returns the net health change over the window.
func (s DayStats) HealthDelta() float64 {
	return s.HealthEnd - s.HealthStart
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution calculates mean and percentiles of values.
func Distribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s DayStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("policy", s.Policy),
		slog.Int("episode", s.Episode),
		slog.Int("window", s.Window),
		slog.Float64("sim_hours", s.SimHours),
		slog.Float64("moisture_mean", s.MoistureMean),
		slog.Float64("moisture_min", s.MoistureMin),
		slog.Float64("temp_mean", s.TempMean),
		slog.Float64("temp_max", s.TempMax),
		slog.Float64("light_mean", s.LightMean),
		slog.Float64("health_start", s.HealthStart),
		slog.Float64("health_end", s.HealthEnd),
		slog.Float64("water_ml", s.WaterML),
		slog.Float64("lamp_hours", s.LampHours),
		slog.Int("violations", s.Violations),
		slog.Float64("reward", s.Reward),
	)
}

// LogStats logs the window stats using slog.
func (s DayStats) LogStats() {
	slog.Info("day", "stats", s)
}
