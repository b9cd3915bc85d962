package env

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/logging"
	"github.com/pthm-cable/plantcare/systems"
)

// Env threads a single episode's State through a Model. It is not safe for
// concurrent use; run one Env per goroutine.
type Env struct {
	model  *Model
	state  State
	logger *slog.Logger
}

// New creates an Env for cfg. It returns a *config.ConfigurationError if
// cfg is unusable.
func New(cfg *config.Config, opts ...Option) (*Env, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	m, err := newModel(cfg, o)
	if err != nil {
		return nil, err
	}
	return &Env{model: m, logger: o.logger}, nil
}

// Model returns the underlying transition function.
func (e *Env) Model() *Model { return e.model }

// State returns a copy of the current episode state.
func (e *Env) State() State { return e.state }

// SetWeatherProvider replaces the ambient model for subsequent steps.
// A nil provider restores the built-in model.
func (e *Env) SetWeatherProvider(p systems.WeatherProvider) {
	e.model = e.model.WithWeather(p)
}

// Reset starts a new episode. It is valid in any phase.
func (e *Env) Reset(seed uint64, opts ResetOptions) (Observation, Info) {
	s, obs, info := e.model.Reset(seed, opts)
	e.state = s
	if e.logger != nil {
		e.logger.Debug("episode reset",
			"seed", seed,
			"scenario", string(s.Scenario),
			"moisture", s.Moisture,
			"health", s.Health,
		)
	}
	return obs, info
}

// Step applies a to the current episode. On error the state is unchanged.
func (e *Env) Step(a Action) (StepResult, error) {
	next, res, err := e.model.Step(e.state, a)
	if err != nil {
		return StepResult{}, err
	}
	if e.logger != nil {
		e.logger.Log(context.Background(), logging.LevelTrace, "step",
			"step", next.Step,
			"hour", next.Hour,
			"moisture", next.Moisture,
			"health", next.Health,
			"reward", res.Breakdown,
		)
		if res.WaterClipped {
			e.logger.Debug("water amount clipped",
				"requested_ml", a.WaterML,
				"applied_ml", res.WaterML,
				"step", next.Step,
			)
		}
		switch {
		case res.Terminated:
			e.logger.Info("episode terminated", "health", next.Health, "info", res.Info)
		case res.Truncated:
			e.logger.Debug("episode truncated", "info", res.Info)
		}
	}
	e.state = next
	return res, nil
}
