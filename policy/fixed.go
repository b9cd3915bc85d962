package policy

import (
	"slices"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
)

// FixedSchedule waters at fixed hours and runs the lamp in a fixed daily
// window, ignoring sensor readings.
type FixedSchedule struct {
	WaterTimes  []int
	WaterAmount float64
	LampOn      int // first lamp hour
	LampOff     int // first hour with the lamp off again
}

// NewFixedSchedule creates a schedule from configuration.
func NewFixedSchedule(cfg config.FixedScheduleConfig) FixedSchedule {
	fs := FixedSchedule{
		WaterTimes:  slices.Clone(cfg.WaterTimes),
		WaterAmount: cfg.WaterAmount,
	}
	if len(cfg.LampSchedule) == 2 {
		fs.LampOn, fs.LampOff = cfg.LampSchedule[0], cfg.LampSchedule[1]
	}
	return fs
}

// Act implements Policy.
func (p FixedSchedule) Act(obs env.Observation) env.Action {
	hour := obs.Hour()

	var a env.Action
	if slices.Contains(p.WaterTimes, hour) {
		a.WaterML = p.WaterAmount
	}
	a.Lamp = env.LampOn(hour >= p.LampOn && hour < p.LampOff)
	return a
}
