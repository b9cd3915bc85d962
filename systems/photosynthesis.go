package systems

import "math"

// Photosynthesis response constants.
const (
	LightHalfSaturation = 300.0 // lux at which the light factor is 0.5
	WaterStressOnset    = 0.3   // moisture below which water limits photosynthesis
	PhotoOptimalTemp    = 23.0  // C
	PhotoTempWidth      = 0.01  // Gaussian width of the temperature response
)

// PhotosynthesisRate returns the normalized photosynthetic rate in [0, 1].
// It is the product of a saturating light response, a linear water
// limitation below WaterStressOnset and a Gaussian temperature response.
func PhotosynthesisRate(light, moisture, temperature float64) float64 {
	lightFactor := light / (LightHalfSaturation + light)

	waterFactor := 1.0
	if moisture <= WaterStressOnset {
		waterFactor = moisture / WaterStressOnset
	}

	dt := temperature - PhotoOptimalTemp
	tempFactor := math.Exp(-PhotoTempWidth * dt * dt)

	return clamp01(lightFactor * waterFactor * tempFactor)
}
