// Package main provides CMA-ES tuning of the threshold-rule watering policy.
package main

import (
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/pthm-cable/plantcare/config"
)

// ParamSpec is one tunable threshold-rule field.
type ParamSpec struct {
	Name    string
	Path    string // dotted YAML path in config
	Bounds  r1.Interval
	Default float64

	get func(*config.ThresholdRuleConfig) *float64
}

// ParamVector maps between raw parameter values, the unit cube searched by
// CMA-ES, and config fields.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the threshold-rule parameter set.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{
			Name: "moisture_threshold", Path: "baselines.threshold_rule.moisture_threshold",
			Bounds: r1.Interval{Min: 0.2, Max: 0.7}, Default: 0.3,
			get: func(c *config.ThresholdRuleConfig) *float64 { return &c.MoistureThreshold },
		},
		{
			Name: "water_amount", Path: "baselines.threshold_rule.water_amount",
			Bounds: r1.Interval{Min: 5, Max: 100}, Default: 50,
			get: func(c *config.ThresholdRuleConfig) *float64 { return &c.WaterAmount },
		},
		{
			Name: "light_threshold", Path: "baselines.threshold_rule.light_threshold",
			Bounds: r1.Interval{Min: 0, Max: 800}, Default: 200,
			get: func(c *config.ThresholdRuleConfig) *float64 { return &c.LightThreshold },
		},
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default raw values.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(nil, func(s ParamSpec, _ float64) float64 { return s.Default })
}

// Normalize maps raw values onto [0,1] per parameter.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(raw, func(s ParamSpec, v float64) float64 {
		return (v - s.Bounds.Min) / (s.Bounds.Max - s.Bounds.Min)
	})
}

// Denormalize is the inverse of Normalize.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.each(unit, func(s ParamSpec, u float64) float64 {
		return s.Bounds.Min + u*(s.Bounds.Max-s.Bounds.Min)
	})
}

// Clamp limits raw values to their bounds.
func (pv *ParamVector) Clamp(raw []float64) []float64 {
	return pv.each(raw, func(s ParamSpec, v float64) float64 {
		return min(max(v, s.Bounds.Min), s.Bounds.Max)
	})
}

// ApplyToConfig writes clamped raw values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, raw []float64) {
	for i, v := range pv.Clamp(raw) {
		*pv.Specs[i].get(&cfg.Baselines.ThresholdRule) = v
	}
}

// ExtractFromConfig reads the current raw values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	tr := cfg.Baselines.ThresholdRule
	return pv.each(nil, func(s ParamSpec, _ float64) float64 { return *s.get(&tr) })
}

// each builds a new vector by applying f to every spec and the matching
// element of in (zero when in is nil).
func (pv *ParamVector) each(in []float64, f func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		var v float64
		if in != nil {
			v = in[i]
		}
		out[i] = f(s, v)
	}
	return out
}
