package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/plantcare/config"
)

// Scenario names a weather modifier applied on top of the diurnal cycle.
type Scenario string

const (
	ScenarioNormal Scenario = "normal"
	ScenarioHotDry Scenario = "hot_dry"
	ScenarioCloudy Scenario = "cloudy"
)

// ParseScenario validates a scenario name. Empty means normal.
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(s) {
	case "", ScenarioNormal:
		return ScenarioNormal, nil
	case ScenarioHotDry, ScenarioCloudy:
		return Scenario(s), nil
	}
	return "", fmt.Errorf("unknown weather scenario %q", s)
}

// Noise levels of the built-in weather model.
const (
	TempNoiseSigma  = 1.0  // C
	LightNoiseSigma = 50.0 // lux
)

// Daylight window, inclusive.
const (
	Sunrise = 6
	Sunset  = 18
)

// Conditions holds ambient temperature and light, excluding actuators.
type Conditions struct {
	Temperature float64 // C
	Light       float64 // lux
}

// WeatherProvider supplies ambient conditions for an hour of the day.
// src is the episode's random stream; providers that do not need noise
// must ignore it.
type WeatherProvider interface {
	Conditions(hour int, scenario Scenario, src rand.Source) Conditions
}

// WeatherFunc adapts a plain function into a WeatherProvider. It fully
// replaces the built-in model, e.g. for replaying observed weather or for
// deterministic test fixtures.
type WeatherFunc func(hour int, scenario Scenario) (temperature, light float64)

// Conditions implements WeatherProvider.
func (f WeatherFunc) Conditions(hour int, scenario Scenario, _ rand.Source) Conditions {
	t, l := f(hour, scenario)
	return Conditions{Temperature: t, Light: l}
}

// AmbientModel derives temperature and light from the time of day.
// Temperature follows a sine wave peaking at 12:00 (zero crossing at 06:00);
// light is a half sine between sunrise and sunset.
type AmbientModel struct {
	TempMean      float64
	TempAmplitude float64 // half the day/night difference
	LightMax      float64
	TempNoise     float64
	LightNoise    float64
}

// NewAmbientModel builds the default weather model from configuration.
func NewAmbientModel(cfg *config.Config) AmbientModel {
	return AmbientModel{
		TempMean:      cfg.Weather.TempMean,
		TempAmplitude: cfg.Derived.TempAmplitude,
		LightMax:      cfg.Weather.LightMax,
		TempNoise:     TempNoiseSigma,
		LightNoise:    LightNoiseSigma,
	}
}

// Baseline returns the noise-free conditions with the scenario applied.
func (m AmbientModel) Baseline(hour int, scenario Scenario) Conditions {
	h := float64(hour)
	temp := m.TempMean + m.TempAmplitude*math.Sin(2*math.Pi*(h-6)/24)

	var light float64
	if hour >= Sunrise && hour <= Sunset {
		light = m.LightMax * math.Sin(math.Pi*(h-6)/12)
	}

	switch scenario {
	case ScenarioHotDry:
		temp += 5.0
		light *= 1.2
	case ScenarioCloudy:
		temp -= 2.0
		light *= 0.6
	}

	return Conditions{Temperature: temp, Light: light}
}

// Conditions implements WeatherProvider. Temperature noise is drawn before
// light noise so a seed always yields the same pair. A nil src disables noise.
func (m AmbientModel) Conditions(hour int, scenario Scenario, src rand.Source) Conditions {
	c := m.Baseline(hour, scenario)
	if src == nil {
		return c
	}

	c.Temperature += distuv.Normal{Mu: 0, Sigma: m.TempNoise, Src: src}.Rand()
	c.Light = math.Max(0, c.Light+distuv.Normal{Mu: 0, Sigma: m.LightNoise, Src: src}.Rand())
	return c
}

// DefaultWeather returns the built-in provider for cfg.
func DefaultWeather(cfg *config.Config) WeatherProvider {
	return NewAmbientModel(cfg)
}
