package policy

import (
	"math"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
)

// Optimized is a hand-tuned heuristic that uses knowledge of the plant
// model. It keeps moisture just above the optimal minimum, where
// evaporation is slowest without incurring stress, and only supplements
// light during core daytime.
type Optimized struct {
	TargetMoisture float64
	MLPerUnit      float64 // ml per unit of moisture deficit
	DayStart       int     // inclusive
	DayEnd         int     // inclusive
	LightThreshold float64
}

// NewOptimized creates the heuristic policy from configuration.
func NewOptimized(cfg *config.Config) Optimized {
	o := cfg.Baselines.Optimized
	return Optimized{
		TargetMoisture: cfg.Plant.OptimalMoistureMin + o.MoistureMargin,
		MLPerUnit:      o.MLPerUnit,
		DayStart:       o.DayStart,
		DayEnd:         o.DayEnd,
		LightThreshold: o.LightThreshold,
	}
}

// Act implements Policy.
func (p Optimized) Act(obs env.Observation) env.Action {
	var a env.Action
	if m := obs.Moisture(); m < p.TargetMoisture {
		a.WaterML = math.Min(math.Max((p.TargetMoisture-m)*p.MLPerUnit, 0), env.MaxWaterML)
	}
	hour := obs.Hour()
	daytime := hour >= p.DayStart && hour <= p.DayEnd
	a.Lamp = env.LampOn(daytime && obs.Light() < p.LightThreshold)
	return a
}
