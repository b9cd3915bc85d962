package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/plantcare/config"
)

// TestSoilAbsorption checks that 50 ml into a 1 l pot adds exactly 0.05.
func TestSoilAbsorption(t *testing.T) {
	m := NewSoilModel(config.Default().Soil)
	if got := m.Absorption(50); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("Absorption(50) = %v, want 0.05", got)
	}

	// Same step with evaporation: m' = m - rate*m*dt + 0.05
	moisture, temp, light := 0.4, 22.0, 0.0
	want := moisture - m.Rate(temp, light)*moisture + 0.05
	if got := m.Update(moisture, 50, temp, light, 1); math.Abs(got-want) > 1e-12 {
		t.Errorf("Update = %v, want %v", got, want)
	}
}

func TestSoilRate(t *testing.T) {
	m := SoilModel{CapacityLiters: 1, EvaporationRate: 0.02, TempEvapCoeff: 0.03}

	tests := []struct {
		name        string
		temp, light float64
		want        float64
	}{
		{"reference", 20, 0, 0.02},
		{"warm", 30, 0, 0.02 * 1.3},
		{"bright", 20, 1000, 0.02 * 1.5},
		{"warm and bright", 30, 1000, 0.02 * 1.3 * 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Rate(tt.temp, tt.light); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Rate(%v, %v) = %v, want %v", tt.temp, tt.light, got, tt.want)
			}
		})
	}
}

func TestSoilUpdateClamps(t *testing.T) {
	m := NewSoilModel(config.Default().Soil)

	if got := m.Update(0.98, 100, 20, 0, 1); got != 1 {
		t.Errorf("overflow: got %v, want 1", got)
	}
	hot := SoilModel{CapacityLiters: 1, EvaporationRate: 2, TempEvapCoeff: 0.03}
	if got := hot.Update(0.5, 0, 40, 1000, 24); got != 0 {
		t.Errorf("dry out: got %v, want 0", got)
	}
	if got := m.Update(0.5, math.NaN(), 20, 0, 1); got != 0 {
		t.Errorf("NaN water: got %v, want 0", got)
	}
}

func TestSoilDriesWithoutWater(t *testing.T) {
	m := NewSoilModel(config.Default().Soil)

	moisture := 0.5
	for range 48 {
		next := m.Update(moisture, 0, 25, 500, 1)
		if next > moisture {
			t.Fatalf("moisture rose without water: %v -> %v", moisture, next)
		}
		moisture = next
	}
	if moisture >= 0.5 {
		t.Errorf("moisture after 48h = %v, expected drying", moisture)
	}
}
