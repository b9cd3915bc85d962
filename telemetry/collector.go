package telemetry

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/plantcare/env"
)

// Collector accumulates steps within time windows and produces DayStats.
type Collector struct {
	windowSteps int
	dt          float64

	// Current window tracking
	windowStart int
	window      int
	healthStart float64

	// Samples for current window
	moisture []float64
	temp     []float64
	light    []float64
	health   []float64

	// Counters for current window
	water      float64
	waterings  int
	lampSteps  int
	energy     float64
	violations int
	reward     float64
}

// NewCollector creates a collector that flushes every windowHours of
// simulated time, given a step of timestepHours.
func NewCollector(windowHours, timestepHours int) *Collector {
	steps := 1
	if timestepHours > 0 {
		steps = max(windowHours/timestepHours, 1)
	}
	return &Collector{
		windowSteps: steps,
		dt:          float64(timestepHours),
	}
}

// Reset starts a new episode from its initial observation.
func (c *Collector) Reset(obs env.Observation) {
	c.windowStart = 0
	c.window = 0
	c.clear(obs.Health())
}

// Record adds one step's outcome to the current window.
func (c *Collector) Record(res env.StepResult) {
	obs := res.Observation
	c.moisture = append(c.moisture, obs.Moisture())
	c.temp = append(c.temp, obs.Temperature())
	c.light = append(c.light, obs.Light())
	c.health = append(c.health, obs.Health())

	c.water += res.WaterML
	if res.WaterML > env.WateringThreshold {
		c.waterings++
	}
	if res.LampOn {
		c.lampSteps++
	}
	c.energy += res.Breakdown.Energy
	c.violations += res.Breakdown.Violations
	c.reward += res.Reward
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int) bool {
	return currentStep-c.windowStart >= c.windowSteps
}

// Pending reports whether steps were recorded since the last flush.
func (c *Collector) Pending() bool {
	return len(c.health) > 0
}

// Flush produces a DayStats for the steps since the last flush and resets
// counters for the next window. The caller fills in Policy, Episode and Seed.
func (c *Collector) Flush(currentStep int) DayStats {
	stats := DayStats{
		Window:      c.window,
		StartStep:   c.windowStart,
		EndStep:     currentStep,
		SimHours:    float64(currentStep) * c.dt,
		HealthStart: c.healthStart,
		HealthEnd:   c.healthStart,
		HealthMin:   c.healthStart,
		WaterML:     c.water,
		Waterings:   c.waterings,
		LampHours:   float64(c.lampSteps) * c.dt,
		Energy:      c.energy,
		Violations:  c.violations,
		Reward:      c.reward,
	}

	if n := len(c.health); n > 0 {
		stats.MoistureMean, stats.MoistureP10, stats.MoistureP50, stats.MoistureP90 = Distribution(c.moisture)
		stats.MoistureMin = floats.Min(c.moisture)
		stats.TempMean = floats.Sum(c.temp) / float64(n)
		stats.TempMin = floats.Min(c.temp)
		stats.TempMax = floats.Max(c.temp)
		stats.LightMean = floats.Sum(c.light) / float64(n)
		stats.HealthEnd = c.health[n-1]
		stats.HealthMin = math.Min(c.healthStart, floats.Min(c.health))
	}

	// Reset for next window
	c.windowStart = currentStep
	c.window++
	c.clear(stats.HealthEnd)

	return stats
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() int {
	return c.windowSteps
}

func (c *Collector) clear(health float64) {
	c.healthStart = health
	c.moisture = c.moisture[:0]
	c.temp = c.temp[:0]
	c.light = c.light[:0]
	c.health = c.health[:0]
	c.water = 0
	c.waterings = 0
	c.lampSteps = 0
	c.energy = 0
	c.violations = 0
	c.reward = 0
}
