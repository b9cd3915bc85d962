// Package config provides configuration loading and access for the simulation.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r1"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
// A loaded Config is read-only and may be shared by any number of environments.
type Config struct {
	Soil        SoilConfig        `yaml:"soil"`
	Plant       PlantConfig       `yaml:"plant"`
	Environment EnvironmentConfig `yaml:"environment"`
	Weather     WeatherConfig     `yaml:"weather"`
	Lamp        LampConfig        `yaml:"lamp"`
	Reward      RewardConfig      `yaml:"reward"`
	Baselines   BaselinesConfig   `yaml:"baselines"`
	Evaluation  EvaluationConfig  `yaml:"evaluation"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SoilConfig holds pot and soil water balance parameters.
type SoilConfig struct {
	Capacity        float64 `yaml:"capacity"`         // Liters held at saturation
	EvaporationRate float64 `yaml:"evaporation_rate"` // Base fraction of moisture lost per hour
	TempEvapCoeff   float64 `yaml:"temp_evap_coeff"`  // Evaporation gain per degree above 20 C
	InitialMoisture float64 `yaml:"initial_moisture"`
}

// PlantConfig holds the plant's preferred ranges and starting health.
type PlantConfig struct {
	OptimalMoistureMin float64 `yaml:"optimal_moisture_min"`
	OptimalMoistureMax float64 `yaml:"optimal_moisture_max"`
	OptimalTempMin     float64 `yaml:"optimal_temp_min"`
	OptimalTempMax     float64 `yaml:"optimal_temp_max"`
	InitialHealth      float64 `yaml:"initial_health"`
}

// EnvironmentConfig holds the episode clock.
type EnvironmentConfig struct {
	TimestepHours int `yaml:"timestep_hours"`
	EpisodeDays   int `yaml:"episode_days"`
}

// WeatherConfig holds the diurnal ambient model parameters.
type WeatherConfig struct {
	Scenario         string  `yaml:"scenario"` // normal, hot_dry or cloudy
	TempMean         float64 `yaml:"temp_mean"`
	TempDayNightDiff float64 `yaml:"temp_day_night_diff"`
	LightMax         float64 `yaml:"light_max"` // Peak ambient lux at noon
}

// LampConfig holds supplemental lighting parameters.
type LampConfig struct {
	Lux float64 `yaml:"lux"` // Added light when on; doubles as energy per hour
}

// RewardConfig holds reward weights and safety constraints.
// R = alpha*dHealth - beta*water - gamma*energy - delta*violations
type RewardConfig struct {
	Alpha       float64           `yaml:"alpha"`
	Beta        float64           `yaml:"beta"`
	Gamma       float64           `yaml:"gamma"`
	Delta       float64           `yaml:"delta"`
	Constraints ConstraintsConfig `yaml:"constraints"`
}

// ConstraintsConfig holds the safe operating bounds counted as violations.
type ConstraintsConfig struct {
	MoistureMin float64 `yaml:"moisture_min"`
	MoistureMax float64 `yaml:"moisture_max"`
	TempMin     float64 `yaml:"temp_min"`
	TempMax     float64 `yaml:"temp_max"`
}

// BaselinesConfig holds parameters for the rule-based reference policies.
type BaselinesConfig struct {
	FixedSchedule FixedScheduleConfig `yaml:"fixed_schedule"`
	ThresholdRule ThresholdRuleConfig `yaml:"threshold_rule"`
	Optimized     OptimizedConfig     `yaml:"optimized"`
}

// FixedScheduleConfig waters at fixed hours and runs the lamp in a fixed window.
type FixedScheduleConfig struct {
	WaterTimes   []int   `yaml:"water_times"`
	WaterAmount  float64 `yaml:"water_amount"`
	LampSchedule []int   `yaml:"lamp_schedule"` // [on hour, off hour)
}

// ThresholdRuleConfig reacts to sensor readings.
type ThresholdRuleConfig struct {
	MoistureThreshold float64 `yaml:"moisture_threshold"`
	WaterAmount       float64 `yaml:"water_amount"`
	LightThreshold    float64 `yaml:"light_threshold"`
}

// OptimizedConfig holds the hand-tuned heuristic policy parameters.
type OptimizedConfig struct {
	MoistureMargin float64 `yaml:"moisture_margin"` // Target = optimal_moisture_min + margin
	MLPerUnit      float64 `yaml:"ml_per_unit"`     // ml of water per unit of moisture deficit
	DayStart       int     `yaml:"day_start"`
	DayEnd         int     `yaml:"day_end"`
	LightThreshold float64 `yaml:"light_threshold"`
}

// EvaluationConfig holds policy evaluation settings.
type EvaluationConfig struct {
	Episodes int    `yaml:"episodes"`
	BaseSeed uint64 `yaml:"base_seed"` // Episode i is seeded base_seed + i
	Workers  int    `yaml:"workers"`   // 0 = GOMAXPROCS
}

// TelemetryConfig holds windowed stats and alert thresholds.
type TelemetryConfig struct {
	WindowHours    int     `yaml:"window_hours"`
	WiltingDrop    float64 `yaml:"wilting_drop"`
	ThrivingHealth float64 `yaml:"thriving_health"`
	ThrivingDays   int     `yaml:"thriving_days"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT              float64     // Environment.TimestepHours as float64
	MaxSteps        int         // EpisodeDays*24 / TimestepHours
	StepsPerDay     int         // 24 / TimestepHours, at least 1
	StepsPerWindow  int         // Telemetry.WindowHours / TimestepHours, at least 1
	UnevenHorizon   bool        // true if the horizon is not a whole number of steps
	TempAmplitude   float64     // Weather.TempDayNightDiff / 2
	OptimalMoisture r1.Interval // Stress-free moisture range
	OptimalTemp     r1.Interval // Stress-free temperature range
	SafeMoisture    r1.Interval // Moisture range outside which violations count
	SafeTemp        r1.Interval // Temperature range outside which violations count
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. It panics if they do not parse,
// which can only happen if defaults.yaml itself is broken.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes layered over the embedded
// defaults. Fields missing from data keep their default values, so only
// malformed or out-of-range values produce a ConfigurationError. Unknown keys
// are rejected so typos fail loudly.
func Parse(data []byte) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// Decode into same struct - only overwrites fields present in file
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Field: "(document)", Reason: "malformed YAML", Err: err}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks every field the simulation depends on and returns a
// *ConfigurationError for the first one that is out of range.
func (c *Config) Validate() error {
	checks := []struct {
		ok     bool
		field  string
		reason string
	}{
		{c.Soil.Capacity > 0, "soil.capacity", "must be > 0"},
		{c.Soil.EvaporationRate >= 0, "soil.evaporation_rate", "must be >= 0"},
		{c.Soil.InitialMoisture >= 0 && c.Soil.InitialMoisture <= 1, "soil.initial_moisture", "must be in [0, 1]"},
		{c.Plant.OptimalMoistureMin > 0, "plant.optimal_moisture_min", "must be > 0"},
		{c.Plant.OptimalMoistureMax < 1, "plant.optimal_moisture_max", "must be < 1"},
		{c.Plant.OptimalMoistureMin < c.Plant.OptimalMoistureMax, "plant.optimal_moisture_min", "must be below optimal_moisture_max"},
		{c.Plant.OptimalTempMin > 0, "plant.optimal_temp_min", "must be > 0"},
		{c.Plant.OptimalTempMax < 40, "plant.optimal_temp_max", "must be < 40"},
		{c.Plant.OptimalTempMin < c.Plant.OptimalTempMax, "plant.optimal_temp_min", "must be below optimal_temp_max"},
		{c.Plant.InitialHealth >= 0 && c.Plant.InitialHealth <= 100, "plant.initial_health", "must be in [0, 100]"},
		{c.Environment.TimestepHours >= 1 && c.Environment.TimestepHours <= 24, "environment.timestep_hours", "must be in [1, 24]"},
		{c.Environment.EpisodeDays >= 1, "environment.episode_days", "must be >= 1"},
		{c.Weather.LightMax >= 0, "weather.light_max", "must be >= 0"},
		{c.Lamp.Lux >= 0, "lamp.lux", "must be >= 0"},
		{c.Reward.Constraints.MoistureMin <= c.Reward.Constraints.MoistureMax, "reward.constraints.moisture_min", "must not exceed moisture_max"},
		{c.Reward.Constraints.TempMin <= c.Reward.Constraints.TempMax, "reward.constraints.temp_min", "must not exceed temp_max"},
		{len(c.Baselines.FixedSchedule.LampSchedule) == 2, "baselines.fixed_schedule.lamp_schedule", "must be [on_hour, off_hour]"},
		{c.Evaluation.Episodes >= 1, "evaluation.episodes", "must be >= 1"},
		{c.Evaluation.Workers >= 0, "evaluation.workers", "must be >= 0"},
		{c.Telemetry.WindowHours >= 1, "telemetry.window_hours", "must be >= 1"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return &ConfigurationError{Field: chk.field, Reason: chk.reason}
		}
	}
	for _, h := range c.Baselines.FixedSchedule.WaterTimes {
		if h < 0 || h > 23 {
			return &ConfigurationError{Field: "baselines.fixed_schedule.water_times", Reason: fmt.Sprintf("hour %d not in [0, 23]", h)}
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	step := c.Environment.TimestepHours
	horizon := c.Environment.EpisodeDays * 24

	c.Derived.DT = float64(step)
	c.Derived.MaxSteps = horizon / step
	c.Derived.UnevenHorizon = horizon%step != 0
	c.Derived.StepsPerDay = max(24/step, 1)
	c.Derived.StepsPerWindow = max(c.Telemetry.WindowHours/step, 1)
	c.Derived.TempAmplitude = c.Weather.TempDayNightDiff / 2

	c.Derived.OptimalMoisture = r1.Interval{Min: c.Plant.OptimalMoistureMin, Max: c.Plant.OptimalMoistureMax}
	c.Derived.OptimalTemp = r1.Interval{Min: c.Plant.OptimalTempMin, Max: c.Plant.OptimalTempMax}
	c.Derived.SafeMoisture = r1.Interval{Min: c.Reward.Constraints.MoistureMin, Max: c.Reward.Constraints.MoistureMax}
	c.Derived.SafeTemp = r1.Interval{Min: c.Reward.Constraints.TempMin, Max: c.Reward.Constraints.TempMax}
}

// Clone returns a deep copy that can be modified without affecting c.
// Derived values are recomputed on the copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Baselines.FixedSchedule.WaterTimes = append([]int(nil), c.Baselines.FixedSchedule.WaterTimes...)
	cp.Baselines.FixedSchedule.LampSchedule = append([]int(nil), c.Baselines.FixedSchedule.LampSchedule...)
	cp.computeDerived()
	return &cp
}

// Refresh re-validates a config after programmatic edits (for example by the
// optimizer) and recomputes derived values.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
