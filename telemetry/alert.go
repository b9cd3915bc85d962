package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/pthm-cable/plantcare/config"
)

// AlertType identifies the type of alert.
type AlertType string

const (
	AlertWilting    AlertType = "wilting"
	AlertDrought    AlertType = "drought"
	AlertHeatStress AlertType = "heat_stress"
	AlertRecovery   AlertType = "recovery"
	AlertThriving   AlertType = "thriving"
)

// Alert represents an automatically triggered care alert.
type Alert struct {
	Policy      string    `csv:"policy"`
	Episode     int       `csv:"episode"`
	Type        AlertType `csv:"type"`
	Window      int       `csv:"window"`
	Step        int       `csv:"step"`
	Description string    `csv:"description"`
}

// LogAlert logs the alert using slog.
func (a Alert) LogAlert() {
	slog.Info("alert",
		"type", string(a.Type),
		"policy", a.Policy,
		"episode", a.Episode,
		"window", a.Window,
		"description", a.Description,
	)
}

// AlertDetector detects notable days in an episode.
type AlertDetector struct {
	// Rolling history (circular buffer)
	history     []DayStats
	historySize int
	historyIdx  int
	historyFull bool

	wiltingDrop    float64
	thrivingHealth float64
	thrivingDays   int
	safeMoisture   r1.Interval
	safeTemp       r1.Interval

	// State tracking
	wilted        bool // last alerting window was a wilting one
	thrivingFired bool // thriving already reported for the current streak
}

// NewAlertDetector creates a detector from the telemetry thresholds and
// reward constraints in cfg.
func NewAlertDetector(cfg *config.Config) *AlertDetector {
	days := max(cfg.Telemetry.ThrivingDays, 1)
	return &AlertDetector{
		history:        make([]DayStats, days),
		historySize:    days,
		wiltingDrop:    cfg.Telemetry.WiltingDrop,
		thrivingHealth: cfg.Telemetry.ThrivingHealth,
		thrivingDays:   days,
		safeMoisture:   cfg.Derived.SafeMoisture,
		safeTemp:       cfg.Derived.SafeTemp,
	}
}

// Reset clears history between episodes.
func (ad *AlertDetector) Reset() {
	clear(ad.history)
	ad.historyIdx = 0
	ad.historyFull = false
	ad.wilted = false
	ad.thrivingFired = false
}

// Check analyzes the latest stats and returns any triggered alerts.
func (ad *AlertDetector) Check(stats DayStats) []Alert {
	var alerts []Alert

	if a := ad.checkWilting(stats); a != nil {
		alerts = append(alerts, *a)
	}
	if a := ad.checkDrought(stats); a != nil {
		alerts = append(alerts, *a)
	}
	if a := ad.checkHeatStress(stats); a != nil {
		alerts = append(alerts, *a)
	}

	ad.addToHistory(stats)

	if a := ad.checkThriving(stats); a != nil {
		alerts = append(alerts, *a)
	}

	for i := range alerts {
		alerts[i].Policy = stats.Policy
		alerts[i].Episode = stats.Episode
		alerts[i].Window = stats.Window
		alerts[i].Step = stats.EndStep
	}
	return alerts
}

func (ad *AlertDetector) addToHistory(stats DayStats) {
	ad.history[ad.historyIdx] = stats
	ad.historyIdx = (ad.historyIdx + 1) % ad.historySize
	if ad.historyIdx == 0 {
		ad.historyFull = true
	}
}

func (ad *AlertDetector) getHistory() []DayStats {
	if ad.historyFull {
		return ad.history
	}
	return ad.history[:ad.historyIdx]
}

// checkWilting also emits recovery, since the two share state.
func (ad *AlertDetector) checkWilting(stats DayStats) *Alert {
	drop := -stats.HealthDelta()
	if ad.wiltingDrop > 0 && drop >= ad.wiltingDrop {
		ad.wilted = true
		return &Alert{
			Type:        AlertWilting,
			Description: fmt.Sprintf("Health fell %.1f from %.1f to %.1f", drop, stats.HealthStart, stats.HealthEnd),
		}
	}
	if ad.wilted && stats.HealthDelta() > 0 {
		ad.wilted = false
		return &Alert{
			Type:        AlertRecovery,
			Description: fmt.Sprintf("Health recovered %.1f to %.1f", stats.HealthDelta(), stats.HealthEnd),
		}
	}
	return nil
}

func (ad *AlertDetector) checkDrought(stats DayStats) *Alert {
	if stats.MoistureMin >= ad.safeMoisture.Min {
		return nil
	}
	return &Alert{
		Type:        AlertDrought,
		Description: fmt.Sprintf("Moisture reached %.3f, below safe minimum %.2f", stats.MoistureMin, ad.safeMoisture.Min),
	}
}

func (ad *AlertDetector) checkHeatStress(stats DayStats) *Alert {
	if stats.TempMax <= ad.safeTemp.Max {
		return nil
	}
	return &Alert{
		Type:        AlertHeatStress,
		Description: fmt.Sprintf("Temperature peaked at %.1f C, above safe maximum %.1f", stats.TempMax, ad.safeTemp.Max),
	}
}

// checkThriving fires once per streak of thrivingDays windows whose
// health never dropped below the thriving threshold.
func (ad *AlertDetector) checkThriving(stats DayStats) *Alert {
	if stats.HealthMin < ad.thrivingHealth {
		ad.thrivingFired = false
		return nil
	}
	history := ad.getHistory()
	if len(history) < ad.thrivingDays || ad.thrivingFired {
		return nil
	}
	for _, h := range history {
		if h.HealthMin < ad.thrivingHealth {
			return nil
		}
	}
	ad.thrivingFired = true
	return &Alert{
		Type:        AlertThriving,
		Description: fmt.Sprintf("Health above %.0f for %d consecutive windows", ad.thrivingHealth, ad.thrivingDays),
	}
}
