// Package policy provides rule-based reference controllers for the plant
// environment.
package policy

import (
	"fmt"
	"slices"
	"sort"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
)

// Policy maps an observation to an action. Implementations in this package
// are stateless and safe for concurrent use.
type Policy interface {
	Act(obs env.Observation) env.Action
}

// Func adapts a function into a Policy.
type Func func(obs env.Observation) env.Action

// Act implements Policy.
func (f Func) Act(obs env.Observation) env.Action { return f(obs) }

// Policy names accepted by Lookup.
const (
	NameFixedSchedule = "fixed_schedule"
	NameThresholdRule = "threshold_rule"
	NameOptimized     = "optimized"
	NameIdle          = "idle"
)

var constructors = map[string]func(*config.Config) Policy{
	NameFixedSchedule: func(c *config.Config) Policy { return NewFixedSchedule(c.Baselines.FixedSchedule) },
	NameThresholdRule: func(c *config.Config) Policy { return NewThresholdRule(c.Baselines.ThresholdRule) },
	NameOptimized:     func(c *config.Config) Policy { return NewOptimized(c) },
	NameIdle:          func(*config.Config) Policy { return Constant{} },
}

// Lookup builds the named policy from cfg.
func Lookup(name string, cfg *config.Config) (Policy, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (available: %v)", name, Names())
	}
	return ctor(cfg), nil
}

// Names lists the policies Lookup accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Baselines lists the policies compared by default, in report order.
func Baselines() []string {
	return slices.Clone(baselineOrder)
}

var baselineOrder = []string{NameFixedSchedule, NameThresholdRule, NameOptimized}

// Constant always returns the same action.
type Constant env.Action

// Act implements Policy.
func (c Constant) Act(env.Observation) env.Action { return env.Action(c) }
