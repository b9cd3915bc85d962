package telemetry

import (
	"testing"

	"github.com/pthm-cable/plantcare/config"
)

func hasAlert(alerts []Alert, typ AlertType) bool {
	for _, a := range alerts {
		if a.Type == typ {
			return true
		}
	}
	return false
}

func calmDay(window int, health float64) DayStats {
	return DayStats{
		Window:      window,
		EndStep:     (window + 1) * 24,
		HealthStart: health,
		HealthEnd:   health,
		HealthMin:   health,
		MoistureMin: 0.45,
		TempMax:     26,
	}
}

func TestAlertDetector_WiltingAndRecovery(t *testing.T) {
	ad := NewAlertDetector(config.Default())

	day := calmDay(0, 70)
	day.HealthStart, day.HealthEnd, day.HealthMin = 70, 62, 62
	alerts := ad.Check(day)
	if !hasAlert(alerts, AlertWilting) {
		t.Fatalf("expected wilting alert, got %v", alerts)
	}
	if alerts[0].Window != 0 || alerts[0].Step != 24 {
		t.Errorf("alert position = window %d step %d", alerts[0].Window, alerts[0].Step)
	}

	day = calmDay(1, 62)
	day.HealthEnd = 61
	if alerts := ad.Check(day); hasAlert(alerts, AlertRecovery) {
		t.Error("recovery reported while health still falling")
	}

	day = calmDay(2, 61)
	day.HealthEnd = 64
	if alerts := ad.Check(day); !hasAlert(alerts, AlertRecovery) {
		t.Errorf("expected recovery alert, got %v", alerts)
	}

	day = calmDay(3, 64)
	day.HealthEnd = 66
	if alerts := ad.Check(day); hasAlert(alerts, AlertRecovery) {
		t.Error("recovery reported twice")
	}
}

func TestAlertDetector_DroughtAndHeat(t *testing.T) {
	ad := NewAlertDetector(config.Default())

	day := calmDay(0, 60)
	day.MoistureMin = 0.15
	day.TempMax = 36
	alerts := ad.Check(day)
	if !hasAlert(alerts, AlertDrought) {
		t.Error("expected drought alert")
	}
	if !hasAlert(alerts, AlertHeatStress) {
		t.Error("expected heat_stress alert")
	}

	if alerts := ad.Check(calmDay(1, 60)); len(alerts) != 0 {
		t.Errorf("calm day raised %v", alerts)
	}
}

func TestAlertDetector_ThrivingOncePerStreak(t *testing.T) {
	ad := NewAlertDetector(config.Default())

	var fired []int
	for i := range 6 {
		if hasAlert(ad.Check(calmDay(i, 90)), AlertThriving) {
			fired = append(fired, i)
		}
	}
	if len(fired) != 1 || fired[0] != 2 {
		t.Fatalf("thriving fired at windows %v, want [2]", fired)
	}

	// Break the streak, then rebuild it.
	ad.Check(calmDay(6, 70))
	fired = fired[:0]
	for i := 7; i < 10; i++ {
		if hasAlert(ad.Check(calmDay(i, 90)), AlertThriving) {
			fired = append(fired, i)
		}
	}
	if len(fired) != 1 || fired[0] != 9 {
		t.Errorf("thriving after reset fired at %v, want [9]", fired)
	}
}

func TestAlertDetector_Reset(t *testing.T) {
	ad := NewAlertDetector(config.Default())
	ad.Check(calmDay(0, 90))
	ad.Check(calmDay(1, 90))
	ad.Reset()
	if hasAlert(ad.Check(calmDay(0, 90)), AlertThriving) {
		t.Error("history survived Reset")
	}
}
