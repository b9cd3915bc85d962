package policy

import (
	"math"
	"testing"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/env"
)

func obsAt(moisture, light float64, hour int) env.Observation {
	return env.Observation{moisture, 22, light, float64(hour), 80, 0}
}

func TestFixedSchedule(t *testing.T) {
	p := NewFixedSchedule(config.Default().Baselines.FixedSchedule)

	tests := []struct {
		hour      int
		wantWater float64
		wantLamp  float64
	}{
		{5, 0, 0},
		{6, 0, 1},
		{8, 50, 1},
		{20, 50, 1},
		{21, 0, 1},
		{22, 0, 0},
	}
	for _, tt := range tests {
		a := p.Act(obsAt(0.5, 0, tt.hour))
		if a.WaterML != tt.wantWater || a.Lamp != tt.wantLamp {
			t.Errorf("hour %d: got %+v, want water %v lamp %v", tt.hour, a, tt.wantWater, tt.wantLamp)
		}
	}
}

func TestThresholdRule(t *testing.T) {
	p := NewThresholdRule(config.Default().Baselines.ThresholdRule)

	tests := []struct {
		name            string
		moisture, light float64
		want            env.Action
	}{
		{"dry and dark", 0.2, 50, env.Action{WaterML: 50, Lamp: 1}},
		{"at threshold", 0.3, 200, env.Action{}},
		{"dry and bright", 0.1, 800, env.Action{WaterML: 50}},
		{"moist and dim", 0.6, 199, env.Action{Lamp: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Act(obsAt(tt.moisture, tt.light, 12)); got != tt.want {
				t.Errorf("Act = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOptimized(t *testing.T) {
	p := NewOptimized(config.Default())
	if math.Abs(p.TargetMoisture-0.42) > 1e-12 {
		t.Fatalf("TargetMoisture = %v, want 0.42", p.TargetMoisture)
	}

	tests := []struct {
		name      string
		obs       env.Observation
		wantWater float64
		wantLamp  float64
	}{
		{"small deficit", obsAt(0.40, 500, 12), 8, 0},
		{"large deficit clipped", obsAt(0.05, 500, 12), 100, 0},
		{"above target", obsAt(0.5, 100, 12), 0, 1},
		{"dim morning", obsAt(0.5, 100, 7), 0, 0},
		{"dim evening edge", obsAt(0.5, 100, 18), 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := p.Act(tt.obs)
			if math.Abs(a.WaterML-tt.wantWater) > 1e-9 || a.Lamp != tt.wantLamp {
				t.Errorf("Act = %+v, want water %v lamp %v", a, tt.wantWater, tt.wantLamp)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	cfg := config.Default()
	for _, name := range Names() {
		p, err := Lookup(name, cfg)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if p == nil {
			t.Fatalf("Lookup(%q) returned nil", name)
		}
	}
	if _, err := Lookup("ppo", cfg); err == nil {
		t.Error("Lookup of unknown policy succeeded")
	}
	for _, name := range Baselines() {
		if _, err := Lookup(name, cfg); err != nil {
			t.Errorf("baseline %q not registered: %v", name, err)
		}
	}
}

// Baselines stay within the action range for a whole default episode. The
// sensor-driven ones keep the plant alive; the fixed schedule under-waters
// a 1 l pot and is allowed to lose it.
func TestBaselinesRunEpisode(t *testing.T) {
	cfg := config.Default()
	survives := map[string]bool{NameThresholdRule: true, NameOptimized: true}
	for _, name := range Baselines() {
		t.Run(name, func(t *testing.T) {
			p, _ := Lookup(name, cfg)
			e, err := env.New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			obs, _ := e.Reset(42, env.ResetOptions{})
			for {
				a := p.Act(obs)
				if a.WaterML < 0 || a.WaterML > env.MaxWaterML {
					t.Fatalf("water %v outside action range", a.WaterML)
				}
				res, err := e.Step(a)
				if err != nil {
					t.Fatal(err)
				}
				obs = res.Observation
				if res.Done() {
					if res.Terminated && survives[name] {
						t.Errorf("plant died at step %d", res.Info.CurrentStep)
					}
					return
				}
			}
		})
	}
}
