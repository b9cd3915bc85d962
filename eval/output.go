package eval

import (
	"github.com/pthm-cable/plantcare/telemetry"
)

// WriteReport appends one policy's episodes, windows, alerts and summary to
// om. A nil om discards everything.
func WriteReport(om *telemetry.OutputManager, r Report) error {
	if om == nil {
		return nil
	}
	if err := om.WriteEpisodes(r.Episodes); err != nil {
		return err
	}
	for _, ep := range r.Episodes {
		if err := om.WriteDays(ep.Days); err != nil {
			return err
		}
		if err := om.WriteAlerts(ep.Alerts); err != nil {
			return err
		}
	}
	return om.WriteSummary([]Summary{r.Summary})
}

// LogReport emits every window and alert of r through slog.
func LogReport(r Report) {
	for _, ep := range r.Episodes {
		for _, d := range ep.Days {
			d.LogStats()
		}
		for _, a := range ep.Alerts {
			a.LogAlert()
		}
	}
}
