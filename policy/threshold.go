package policy

import (
	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
)

// ThresholdRule waters a fixed dose whenever moisture drops below a
// threshold and turns the lamp on whenever measured light is low.
type ThresholdRule struct {
	MoistureThreshold float64
	WaterAmount       float64
	LightThreshold    float64
}

// NewThresholdRule creates a threshold policy from configuration.
func NewThresholdRule(cfg config.ThresholdRuleConfig) ThresholdRule {
	return ThresholdRule{
		MoistureThreshold: cfg.MoistureThreshold,
		WaterAmount:       cfg.WaterAmount,
		LightThreshold:    cfg.LightThreshold,
	}
}

// Act implements Policy. The measured light includes the lamp, so the lamp
// tends to alternate at night.
func (p ThresholdRule) Act(obs env.Observation) env.Action {
	var a env.Action
	if obs.Moisture() < p.MoistureThreshold {
		a.WaterML = p.WaterAmount
	}
	a.Lamp = env.LampOn(obs.Light() < p.LightThreshold)
	return a
}
