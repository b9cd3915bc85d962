package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhasePolicy)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseStep)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}
	if stats.TotalSteps != 5 {
		t.Errorf("TotalSteps = %d, want 5", stats.TotalSteps)
	}
	if _, ok := stats.PhaseAvg[PhasePolicy]; !ok {
		t.Error("expected policy phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseStep]; !ok {
		t.Error("expected env_step phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.EndStep()
	}
	stats := pc.Stats()
	if stats.TotalSteps != 10 {
		t.Errorf("TotalSteps = %d, want 10", stats.TotalSteps)
	}
	if stats.MaxStepDuration < stats.MinStepDuration {
		t.Error("max below min")
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgStepDuration != 0 || stats.PhasePct == nil {
		t.Errorf("empty stats = %+v", stats)
	}
	if csv := stats.ToCSV("empty"); csv.Label != "empty" {
		t.Errorf("label = %q", csv.Label)
	}
}

func TestPerfCollector_NilIsNoop(t *testing.T) {
	var pc *PerfCollector
	pc.StartStep()
	pc.StartPhase(PhasePolicy)
	pc.EndStep()
}
