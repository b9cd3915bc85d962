package eval

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/plantcare/telemetry"
)

// Energy is weighted against water at this rate when scoring efficiency.
const energyWeight = 0.001

// EpisodeResult holds the outcome of one evaluation episode.
type EpisodeResult struct {
	Policy      string  `csv:"policy"`
	Episode     int     `csv:"episode"`
	Seed        uint64  `csv:"seed"`
	AvgHealth   float64 `csv:"avg_health"`
	FinalHealth float64 `csv:"final_health"`
	TotalWater  float64 `csv:"total_water"`
	TotalEnergy float64 `csv:"total_energy"`
	Violations  int     `csv:"violations"`
	TotalReward float64 `csv:"total_reward"`
	Steps       int     `csv:"steps"`
	Terminated  bool    `csv:"terminated"`
	Truncated   bool    `csv:"truncated"`
	Efficiency  float64 `csv:"efficiency"`

	Days   []telemetry.DayStats `csv:"-"`
	Alerts []telemetry.Alert    `csv:"-"`
}

// Efficiency scores health per unit of resource spent.
func Efficiency(avgHealth, water, energy float64) float64 {
	return avgHealth / (water + energyWeight*energy + 1e-6)
}

// Summary aggregates the episodes of one policy.
type Summary struct {
	RunID           string  `csv:"run_id"`
	Policy          string  `csv:"policy"`
	Episodes        int     `csv:"episodes"`
	AvgHealthMean   float64 `csv:"avg_health_mean"`
	AvgHealthStd    float64 `csv:"avg_health_std"`
	FinalHealthMean float64 `csv:"final_health_mean"`
	WaterMean       float64 `csv:"total_water_mean"`
	EnergyMean      float64 `csv:"total_energy_mean"`
	ViolationsMean  float64 `csv:"violations_mean"`
	EfficiencyMean  float64 `csv:"efficiency_mean"`
	RewardMean      float64 `csv:"reward_mean"`
	SurvivalRate    float64 `csv:"survival_rate"`
}

// Summarize aggregates results. The health spread is the population
// standard deviation.
func Summarize(policy string, results []EpisodeResult) Summary {
	s := Summary{Policy: policy, Episodes: len(results)}
	if len(results) == 0 {
		return s
	}

	n := len(results)
	avgHealth := make([]float64, n)
	column := func(f func(EpisodeResult) float64) float64 {
		v := make([]float64, n)
		for i, r := range results {
			v[i] = f(r)
		}
		return stat.Mean(v, nil)
	}
	for i, r := range results {
		avgHealth[i] = r.AvgHealth
	}

	s.AvgHealthMean, s.AvgHealthStd = stat.PopMeanStdDev(avgHealth, nil)
	s.FinalHealthMean = column(func(r EpisodeResult) float64 { return r.FinalHealth })
	s.WaterMean = column(func(r EpisodeResult) float64 { return r.TotalWater })
	s.EnergyMean = column(func(r EpisodeResult) float64 { return r.TotalEnergy })
	s.ViolationsMean = column(func(r EpisodeResult) float64 { return float64(r.Violations) })
	s.EfficiencyMean = column(func(r EpisodeResult) float64 { return r.Efficiency })
	s.RewardMean = column(func(r EpisodeResult) float64 { return r.TotalReward })
	s.SurvivalRate = column(func(r EpisodeResult) float64 {
		if r.Terminated {
			return 0
		}
		return 1
	})
	return s
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("policy", s.Policy),
		slog.Int("episodes", s.Episodes),
		slog.Float64("avg_health_mean", s.AvgHealthMean),
		slog.Float64("avg_health_std", s.AvgHealthStd),
		slog.Float64("final_health_mean", s.FinalHealthMean),
		slog.Float64("total_water_mean", s.WaterMean),
		slog.Float64("total_energy_mean", s.EnergyMean),
		slog.Float64("violations_mean", s.ViolationsMean),
		slog.Float64("efficiency_mean", s.EfficiencyMean),
		slog.Float64("reward_mean", s.RewardMean),
		slog.Float64("survival_rate", s.SurvivalRate),
	)
}
