package env

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/plantcare/systems"
)

// Phase is the lifecycle position of an episode.
type Phase uint8

const (
	Uninitialized Phase = iota
	// Ready follows Reset; no step has been taken yet.
	Ready
	Stepping
	// Terminated means plant health fell below the failure threshold.
	Terminated
	// Truncated means the step limit was reached.
	Truncated
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	case Terminated:
		return "terminated"
	case Truncated:
		return "truncated"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Done reports whether the episode has ended.
func (p Phase) Done() bool {
	return p == Terminated || p == Truncated
}

// State is a complete episode snapshot. It is a value: copying a State forks
// the episode, including its random stream.
type State struct {
	Moisture        float64 // volumetric fraction [0, 1]
	Temperature     float64 // C, ambient
	Light           float64 // lux, ambient plus lamp
	Hour            int     // [0, 23]
	Health          float64 // [0, 100]
	HoursSinceWater float64 // capped at 24
	Step            int

	TotalWater      float64 // ml
	TotalEnergy     float64 // lux-hours
	TotalViolations int

	Scenario systems.Scenario

	phase   Phase
	history []float64
	rng     rand.PCG
}

// Phase returns the lifecycle phase.
func (s State) Phase() Phase { return s.phase }

// HealthHistory returns a copy of the health recorded after reset and after
// every step.
func (s State) HealthHistory() []float64 {
	return slices.Clone(s.history)
}

// Observation returns what a policy sees of s.
func (s State) Observation() Observation {
	return Observation{
		s.Moisture,
		s.Temperature,
		s.Light,
		float64(s.Hour),
		s.Health,
		s.HoursSinceWater,
	}
}

// Observation indices.
const (
	ObsMoisture = iota
	ObsTemperature
	ObsLight
	ObsHour
	ObsHealth
	ObsHoursSinceWater
	ObsSize
)

// Observation is the fixed-width sensor vector:
// (moisture, temperature, light, hour, health, hours since water).
type Observation [ObsSize]float64

func (o Observation) Moisture() float64        { return o[ObsMoisture] }
func (o Observation) Temperature() float64     { return o[ObsTemperature] }
func (o Observation) Light() float64           { return o[ObsLight] }
func (o Observation) Hour() int                { return int(o[ObsHour]) }
func (o Observation) Health() float64          { return o[ObsHealth] }
func (o Observation) HoursSinceWater() float64 { return o[ObsHoursSinceWater] }

// Vec returns the observation as a gonum vector for learning code.
func (o Observation) Vec() *mat.VecDense {
	data := make([]float64, ObsSize)
	copy(data, o[:])
	return mat.NewVecDense(ObsSize, data)
}

// Action limits.
const (
	MaxWaterML    = 100.0
	LampThreshold = 0.5
)

// Action is a raw actuator command. Water is clipped to [0, MaxWaterML]
// and the lamp is on when Lamp > LampThreshold; nothing is rejected.
type Action struct {
	WaterML float64
	Lamp    float64
}

// Normalize returns the applied water amount and lamp state, and whether
// the water amount had to be clipped. NaN water is applied as zero.
func (a Action) Normalize() (waterML float64, lampOn bool, clipped bool) {
	waterML = a.WaterML
	switch {
	case math.IsNaN(waterML):
		waterML, clipped = 0, true
	case waterML < 0:
		waterML, clipped = 0, true
	case waterML > MaxWaterML:
		waterML, clipped = MaxWaterML, true
	}
	return waterML, a.Lamp > LampThreshold, clipped
}

// LampOn is a convenience for building actions from a boolean.
func LampOn(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
