package systems

import "github.com/pthm-cable/plantcare/config"

// Evaporation gain per lux of light.
const lightEvapCoeff = 0.0005

// SoilModel tracks the pot's volumetric water fraction.
type SoilModel struct {
	CapacityLiters  float64
	EvaporationRate float64
	TempEvapCoeff   float64
}

// NewSoilModel creates a soil model from configuration.
func NewSoilModel(cfg config.SoilConfig) SoilModel {
	return SoilModel{
		CapacityLiters:  cfg.Capacity,
		EvaporationRate: cfg.EvaporationRate,
		TempEvapCoeff:   cfg.TempEvapCoeff,
	}
}

// Rate returns the fractional evaporation rate per hour at the given
// temperature (C) and light (lux). Warmer and brighter means faster drying.
func (m SoilModel) Rate(temperature, light float64) float64 {
	return m.EvaporationRate * (1 + m.TempEvapCoeff*(temperature-20)) * (1 + lightEvapCoeff*light)
}

// Absorption returns the moisture fraction gained from waterML millilitres.
func (m SoilModel) Absorption(waterML float64) float64 {
	return waterML / (m.CapacityLiters * 1000)
}

// Update advances moisture by dt hours. Evaporation scales with the current
// moisture, watering is added instantly and the result is clamped to [0, 1].
func (m SoilModel) Update(moisture, waterML, temperature, light, dt float64) float64 {
	evaporation := m.Rate(temperature, light) * moisture * dt
	return clamp01(moisture - evaporation + m.Absorption(waterML))
}
