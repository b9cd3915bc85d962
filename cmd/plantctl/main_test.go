package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/plantcare/config"
	"github.com/pthm-cable/plantcare/telemetry"
)

// runCmd executes plantctl with args and returns stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("plantctl %v: %v", args, err)
	}
	return out.String()
}

// shortConfig writes a three-day config so comparisons stay fast.
func shortConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("environment:\n  episode_days: 3\nevaluation:\n  episodes: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCmd(t *testing.T) {
	out := runCmd(t, "version")
	if !strings.Contains(out, version) {
		t.Errorf("version output = %q", out)
	}

	var v map[string]string
	if err := json.Unmarshal([]byte(runCmd(t, "version", "--json")), &v); err != nil {
		t.Fatal(err)
	}
	if v["version"] != version {
		t.Errorf("json version = %q", v["version"])
	}
}

func TestConfigCmd(t *testing.T) {
	out := runCmd(t, "config", "--config", shortConfig(t))
	cfg, err := config.Parse([]byte(out))
	if err != nil {
		t.Fatalf("printed config does not parse: %v", err)
	}
	if cfg.Environment.EpisodeDays != 3 || cfg.Soil.Capacity != 1.0 {
		t.Errorf("printed config = %+v", cfg.Environment)
	}
}

func TestCompareAndHistory(t *testing.T) {
	cfgPath := shortConfig(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "results.db")
	outDir := filepath.Join(dir, "out")

	out := runCmd(t, "compare", "--config", cfgPath, "--db", db, "--output-dir", outDir)
	for _, name := range []string{"fixed_schedule", "threshold_rule", "optimized"} {
		if !strings.Contains(out, name) {
			t.Errorf("compare table missing %s:\n%s", name, out)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, telemetry.SummaryFile)); err != nil {
		t.Errorf("summary not written: %v", err)
	}

	var recs []struct {
		Summary struct {
			RunID  string
			Policy string
		}
	}
	if err := json.Unmarshal([]byte(runCmd(t, "history", "--db", db, "--json")), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("history returned %d records, want 3", len(recs))
	}
	runID := recs[0].Summary.RunID

	out = runCmd(t, "history", "--db", db, "--run", runID)
	if !strings.Contains(out, shortID(runID)) || !strings.Contains(out, "optimized") {
		t.Errorf("history table:\n%s", out)
	}
}

func TestCompareSelectedPolicies(t *testing.T) {
	var got struct {
		Scenario  string
		Summaries []struct{ Policy string }
	}
	out := runCmd(t, "compare", "idle", "threshold_rule", "--config", shortConfig(t), "--weather", "cloudy", "--json")
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Scenario != "cloudy" || len(got.Summaries) != 2 || got.Summaries[0].Policy != "idle" {
		t.Errorf("compare json = %+v", got)
	}
}

func TestCompareUnknownPolicy(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"compare", "sprinkler", "--config", shortConfig(t)})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}
