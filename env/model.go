package env

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/systems"
)

// Episode constants.
const (
	FailureHealth      = 10.0 // episode terminates below this health
	WateringThreshold  = 5.0  // ml; larger doses reset the hours-since-water clock
	MaxHoursSinceWater = 24.0
)

// Option configures a Model or Env.
type Option func(*options)

type options struct {
	weather systems.WeatherProvider
	logger  *slog.Logger
}

// WithWeather installs a weather provider that fully replaces the built-in
// ambient model.
func WithWeather(p systems.WeatherProvider) Option {
	return func(o *options) { o.weather = p }
}

// WithLogger installs a logger. Without one the Env is silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ResetOptions overrides per-episode starting conditions.
// Zero values fall back to configuration.
type ResetOptions struct {
	Scenario        systems.Scenario
	InitialMoisture *float64
	InitialHealth   *float64
}

// Model is the plant-care transition function. It holds no episode state
// and is safe for concurrent use.
type Model struct {
	cfg      *config.Config
	scenario systems.Scenario
	weather  systems.WeatherProvider

	soil   systems.SoilModel
	stress systems.StressModel
	reward systems.RewardModel
}

// NewModel builds a Model for cfg. cfg must come from config.Load (or have
// had Refresh called) and must not be modified afterwards.
func NewModel(cfg *config.Config, opts ...Option) (*Model, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return newModel(cfg, o)
}

func newModel(cfg *config.Config, o options) (*Model, error) {
	if cfg == nil {
		return nil, &config.ConfigurationError{Field: "(config)", Reason: "nil configuration"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Derived.MaxSteps == 0 {
		return nil, &config.ConfigurationError{Field: "environment", Reason: "derived values missing, call Refresh"}
	}
	scenario, err := systems.ParseScenario(cfg.Weather.Scenario)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "weather.scenario", Reason: "unknown scenario", Err: err}
	}

	if cfg.Derived.UnevenHorizon && o.logger != nil {
		o.logger.Warn("episode horizon is not a whole number of steps",
			"episode_days", cfg.Environment.EpisodeDays,
			"timestep_hours", cfg.Environment.TimestepHours,
			"max_steps", cfg.Derived.MaxSteps,
		)
	}

	weather := o.weather
	if weather == nil {
		weather = systems.DefaultWeather(cfg)
	}

	return &Model{
		cfg:      cfg,
		scenario: scenario,
		weather:  weather,
		soil:     systems.NewSoilModel(cfg.Soil),
		stress:   systems.NewStressModel(cfg),
		reward:   systems.NewRewardModel(cfg),
	}, nil
}

// Config returns the model's configuration.
func (m *Model) Config() *config.Config { return m.cfg }

// MaxSteps returns the truncation horizon.
func (m *Model) MaxSteps() int { return m.cfg.Derived.MaxSteps }

// WithWeather returns a copy of m using p, or the built-in model if p is nil.
func (m *Model) WithWeather(p systems.WeatherProvider) *Model {
	cp := *m
	if p == nil {
		p = systems.DefaultWeather(m.cfg)
	}
	cp.weather = p
	return &cp
}

// Reset starts a new episode seeded with seed. Ambient conditions for hour
// zero are sampled from the new random stream. Every seed, including 0, is
// a fixed stream; callers wanting an unpredictable episode pass a random
// seed such as rand.Uint64().
func (m *Model) Reset(seed uint64, opts ResetOptions) (State, Observation, Info) {
	s := State{
		Moisture: m.cfg.Soil.InitialMoisture,
		Health:   m.cfg.Plant.InitialHealth,
		Scenario: m.scenario,
		phase:    Ready,
		rng:      *rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
	if opts.Scenario != "" {
		s.Scenario = opts.Scenario
	}
	if opts.InitialMoisture != nil {
		s.Moisture = clamp(*opts.InitialMoisture, 0, 1)
	}
	if opts.InitialHealth != nil {
		s.Health = clamp(*opts.InitialHealth, 0, systems.MaxHealth)
	}

	c := m.weather.Conditions(0, s.Scenario, &s.rng)
	s.Temperature = c.Temperature
	s.Light = c.Light
	s.history = []float64{s.Health}

	return s, s.Observation(), s.Info()
}

// Step advances s by one timestep under action a and returns the successor
// state. s itself is never modified. Stepping a state that has not been
// reset or whose episode has ended returns ErrInvalidTransition.
func (m *Model) Step(s State, a Action) (State, StepResult, error) {
	if s.phase != Ready && s.phase != Stepping {
		return s, StepResult{}, fmt.Errorf("%w: step in phase %s", ErrInvalidTransition, s.phase)
	}

	dt := m.cfg.Derived.DT
	water, lampOn, clipped := a.Normalize()

	next := s
	amb := m.weather.Conditions(s.Hour, s.Scenario, &next.rng)
	next.Temperature = amb.Temperature
	next.Light = amb.Light
	if lampOn {
		next.Light += m.cfg.Lamp.Lux
	}

	next.Moisture = m.soil.Update(s.Moisture, water, next.Temperature, next.Light, dt)
	photo := systems.PhotosynthesisRate(next.Light, next.Moisture, next.Temperature)
	stress := m.stress.Stress(next.Moisture, next.Temperature)
	next.Health = systems.UpdateHealth(s.Health, photo, stress, dt)

	next.Step++
	next.Hour = (s.Hour + m.cfg.Environment.TimestepHours) % 24
	if water > WateringThreshold {
		next.HoursSinceWater = 0
	} else {
		next.HoursSinceWater = math.Min(s.HoursSinceWater+dt, MaxHoursSinceWater)
	}

	r := m.reward.Compute(systems.Transition{
		HealthBefore: s.Health,
		HealthAfter:  next.Health,
		WaterML:      water,
		LampOn:       lampOn,
		Moisture:     next.Moisture,
		Temperature:  next.Temperature,
		DT:           dt,
	})

	next.TotalWater += water
	next.TotalEnergy += r.Energy
	next.TotalViolations += r.Violations
	// Clip so the append never writes into an array shared with s.
	next.history = append(slices.Clip(s.history), next.Health)

	terminated := next.Health < FailureHealth
	truncated := next.Step >= m.cfg.Derived.MaxSteps
	switch {
	case terminated:
		next.phase = Terminated
	case truncated:
		next.phase = Truncated
	default:
		next.phase = Stepping
	}

	return next, StepResult{
		Observation:  next.Observation(),
		Reward:       r.Total,
		Terminated:   terminated,
		Truncated:    truncated,
		Info:         next.Info(),
		Breakdown:    r,
		LampOn:       lampOn,
		WaterML:      water,
		WaterClipped: clipped,
	}, nil
}

// clamp limits v to [lo, hi]; NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
