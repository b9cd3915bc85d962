package systems

// Health dynamics per hour.
const (
	HealthGrowthRate = 0.5  // health gained per unit of photosynthesis
	HealthStressRate = 1.0  // health lost per unit of stress
	HealthDecay      = 0.05 // baseline senescence
	MaxHealth        = 100.0
)

// UpdateHealth advances plant health by dt hours and clamps it to [0, 100].
func UpdateHealth(health, photosynthesis, stress, dt float64) float64 {
	growth := HealthGrowthRate * photosynthesis * dt
	damage := HealthStressRate * stress * dt
	decay := HealthDecay * dt
	return clamp(health+growth-damage-decay, 0, MaxHealth)
}
