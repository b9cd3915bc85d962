package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/plantcare/config"
)

func TestStress(t *testing.T) {
	m := NewStressModel(config.Default())

	tests := []struct {
		name           string
		moisture, temp float64
		want           float64
	}{
		{"optimal", 0.5, 22, 0},
		{"range edges", 0.4, 28, 0},
		{"dry", 0.2, 22, 0.5},
		{"bone dry", 0, 22, 1},
		{"waterlogged", 0.85, 22, 0.5},
		{"cold", 0.5, 9, 0.5},
		{"hot", 0.5, 34, 0.5},
		{"past ceiling", 0.5, 52, 1},
		{"worse of two", 0.3, 31, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Stress(tt.moisture, tt.temp)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Stress(%v, %v) = %v, want %v", tt.moisture, tt.temp, got, tt.want)
			}
		})
	}
}

func TestUpdateHealth(t *testing.T) {
	tests := []struct {
		name             string
		health, p, s, dt float64
		want             float64
	}{
		{"idle decay", 80, 0, 0, 1, 79.95},
		{"growth", 80, 1, 0, 1, 80.45},
		{"stress", 80, 0, 1, 1, 78.95},
		{"multi hour", 50, 0.5, 0.2, 4, 50 + 1 - 0.8 - 0.2},
		{"ceiling", 99.9, 1, 0, 1, 100},
		{"floor", 0.5, 0, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateHealth(tt.health, tt.p, tt.s, tt.dt)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("UpdateHealth = %v, want %v", got, tt.want)
			}
		})
	}
}
