package systems

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/pthm-cable/plantcare/config"
)

// RewardModel scores one transition.
// R = alpha*dHealth - beta*water - gamma*energy - delta*violations
type RewardModel struct {
	Alpha, Beta, Gamma, Delta float64
	LampLux                   float64
	SafeMoisture              r1.Interval
	SafeTemp                  r1.Interval
}

// NewRewardModel creates a reward model from configuration.
func NewRewardModel(cfg *config.Config) RewardModel {
	return RewardModel{
		Alpha:        cfg.Reward.Alpha,
		Beta:         cfg.Reward.Beta,
		Gamma:        cfg.Reward.Gamma,
		Delta:        cfg.Reward.Delta,
		LampLux:      cfg.Lamp.Lux,
		SafeMoisture: cfg.Derived.SafeMoisture,
		SafeTemp:     cfg.Derived.SafeTemp,
	}
}

// Transition is the subset of a step the reward depends on.
type Transition struct {
	HealthBefore float64
	HealthAfter  float64
	WaterML      float64
	LampOn       bool
	Moisture     float64 // post-update
	Temperature  float64 // ambient; the lamp adds light only
	DT           float64
}

// Reward is a reward split into its terms. Total equals
// Alpha*HealthDelta - Beta*Water - Gamma*Energy - Delta*Violations.
type Reward struct {
	HealthDelta float64
	Water       float64
	Energy      float64
	Violations  int
	Total       float64
}

// LogValue implements slog.LogValuer.
func (r Reward) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("health_delta", r.HealthDelta),
		slog.Float64("water", r.Water),
		slog.Float64("energy", r.Energy),
		slog.Int("violations", r.Violations),
		slog.Float64("total", r.Total),
	)
}

// EnergyPenalty returns the lamp energy used over dt hours.
func (m RewardModel) EnergyPenalty(lampOn bool, dt float64) float64 {
	if !lampOn {
		return 0
	}
	return m.LampLux * dt
}

// Violations counts breached constraint bounds. Each of the four bounds is
// checked independently, so a single step scores between 0 and 4.
func (m RewardModel) Violations(moisture, temperature float64) int {
	n := 0
	if moisture < m.SafeMoisture.Min {
		n++
	}
	if moisture > m.SafeMoisture.Max {
		n++
	}
	if temperature < m.SafeTemp.Min {
		n++
	}
	if temperature > m.SafeTemp.Max {
		n++
	}
	return n
}

// Compute scores a transition.
func (m RewardModel) Compute(tr Transition) Reward {
	r := Reward{
		HealthDelta: tr.HealthAfter - tr.HealthBefore,
		Water:       tr.WaterML,
		Energy:      m.EnergyPenalty(tr.LampOn, tr.DT),
		Violations:  m.Violations(tr.Moisture, tr.Temperature),
	}
	r.Total = m.Alpha*r.HealthDelta -
		m.Beta*r.Water -
		m.Gamma*r.Energy -
		m.Delta*float64(r.Violations)
	return r
}
