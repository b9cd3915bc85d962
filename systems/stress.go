package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/pthm-cable/plantcare/config"
)

// TempCeiling is the temperature at which heat stress saturates.
const TempCeiling = 40.0

// StressModel scores how far conditions sit outside the plant's optimum.
type StressModel struct {
	OptimalMoisture r1.Interval
	OptimalTemp     r1.Interval
}

// NewStressModel creates a stress model from the derived optimal ranges.
func NewStressModel(cfg *config.Config) StressModel {
	return StressModel{
		OptimalMoisture: cfg.Derived.OptimalMoisture,
		OptimalTemp:     cfg.Derived.OptimalTemp,
	}
}

// Moisture returns drought or waterlogging stress in [0, 1].
func (m StressModel) Moisture(moisture float64) float64 {
	lo, hi := m.OptimalMoisture.Min, m.OptimalMoisture.Max
	switch {
	case moisture < lo:
		return (lo - moisture) / lo
	case moisture > hi:
		return (moisture - hi) / (1 - hi)
	}
	return 0
}

// Temperature returns cold or heat stress in [0, 1].
func (m StressModel) Temperature(temperature float64) float64 {
	lo, hi := m.OptimalTemp.Min, m.OptimalTemp.Max
	switch {
	case temperature < lo:
		return (lo - temperature) / lo
	case temperature > hi:
		return (temperature - hi) / (TempCeiling - hi)
	}
	return 0
}

// Stress combines moisture and temperature stress, taking the worse of the two.
func (m StressModel) Stress(moisture, temperature float64) float64 {
	return clamp01(math.Max(m.Moisture(moisture), m.Temperature(temperature)))
}
