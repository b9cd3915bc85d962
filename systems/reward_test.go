package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/plantcare/config"
)

func TestViolationsAreIndependent(t *testing.T) {
	m := NewRewardModel(config.Default())

	tests := []struct {
		name           string
		moisture, temp float64
		want           int
	}{
		{"safe", 0.5, 22, 0},
		{"on bounds", 0.2, 35, 0},
		{"dry", 0.1, 22, 1},
		{"soaked", 0.95, 22, 1},
		{"cold", 0.5, 5, 1},
		{"dry and hot", 0.1, 36, 2},
		{"soaked and cold", 0.95, 9, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Violations(tt.moisture, tt.temp); got != tt.want {
				t.Errorf("Violations(%v, %v) = %d, want %d", tt.moisture, tt.temp, got, tt.want)
			}
		})
	}
}

func TestRewardDecomposition(t *testing.T) {
	m := NewRewardModel(config.Default())

	r := m.Compute(Transition{
		HealthBefore: 80,
		HealthAfter:  80.3,
		WaterML:      40,
		LampOn:       true,
		Moisture:     0.1,
		Temperature:  22,
		DT:           1,
	})

	if r.Energy != 500 {
		t.Errorf("Energy = %v, want 500", r.Energy)
	}
	if r.Violations != 1 {
		t.Errorf("Violations = %d, want 1", r.Violations)
	}
	want := 1.0*0.3 - 0.01*40 - 0.0001*500 - 0.5*1
	if math.Abs(r.Total-want) > 1e-9 {
		t.Errorf("Total = %v, want %v", r.Total, want)
	}
}

func TestEnergyPenaltyScalesWithTimestep(t *testing.T) {
	m := NewRewardModel(config.Default())
	if got := m.EnergyPenalty(true, 3); got != 1500 {
		t.Errorf("EnergyPenalty(true, 3) = %v, want 1500", got)
	}
	if got := m.EnergyPenalty(false, 3); got != 0 {
		t.Errorf("EnergyPenalty(false, 3) = %v, want 0", got)
	}
}
