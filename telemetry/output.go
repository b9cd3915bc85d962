package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/plantcare/config"
)

// Output file names.
const (
	EpisodesFile = "episodes.csv"
	DaysFile     = "days.csv"
	AlertsFile   = "alerts.csv"
	SummaryFile  = "summary.csv"
	PerfFile     = "perf.csv"
	ConfigFile   = "config.yaml"
)

// csvFile appends gocsv records to a file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured experiment output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir string

	episodes *csvFile
	days     *csvFile
	alerts   *csvFile
	summary  *csvFile
	perf     *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{EpisodesFile, &om.episodes},
		{DaysFile, &om.days},
		{AlertsFile, &om.alerts},
		{SummaryFile, &om.summary},
		{PerfFile, &om.perf},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		*file.dst = &csvFile{f: f}
	}

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteEpisodes appends rows to episodes.csv. records must be a slice of
// structs with csv tags.
func (om *OutputManager) WriteEpisodes(records any) error {
	if om == nil {
		return nil
	}
	if err := om.episodes.write(records); err != nil {
		return fmt.Errorf("writing episodes: %w", err)
	}
	return nil
}

// WriteDays appends window stats to days.csv.
func (om *OutputManager) WriteDays(stats []DayStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	if err := om.days.write(stats); err != nil {
		return fmt.Errorf("writing days: %w", err)
	}
	return nil
}

// WriteAlerts appends alerts to alerts.csv.
func (om *OutputManager) WriteAlerts(alerts []Alert) error {
	if om == nil || len(alerts) == 0 {
		return nil
	}
	if err := om.alerts.write(alerts); err != nil {
		return fmt.Errorf("writing alerts: %w", err)
	}
	return nil
}

// WriteSummary appends rows to summary.csv. records must be a slice of
// structs with csv tags.
func (om *OutputManager) WriteSummary(records any) error {
	if om == nil {
		return nil
	}
	if err := om.summary.write(records); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, label string) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(label)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.episodes, om.days, om.alerts, om.summary, om.perf} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
