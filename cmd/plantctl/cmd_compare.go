package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/plantcare/eval"
	"github.com/pthm-cable/plantcare/logging"
	"github.com/pthm-cable/plantcare/policy"
	"github.com/pthm-cable/plantcare/results"
	"github.com/pthm-cable/plantcare/telemetry"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [policy...]",
		Short: "Evaluate policies side by side",
		Long: `Evaluate policies over the same seeded episodes and print a
comparison table. With no arguments the three baselines are compared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			logLevel, _ := cmd.Flags().GetString("log-level")
			episodes, _ := cmd.Flags().GetInt("episodes")
			seed, _ := cmd.Flags().GetUint64("seed")
			weather, _ := cmd.Flags().GetString("weather")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			dbPath, _ := cmd.Flags().GetString("db")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if weather != "" {
				cfg.Weather.Scenario = weather
				if err := cfg.Refresh(); err != nil {
					return err
				}
			}

			names := args
			if len(names) == 0 {
				names = policy.Baselines()
			}

			runID := uuid.NewString()
			logger := logging.NewLogger(logLevel, "text", cmd.ErrOrStderr())
			opts := []eval.Option{eval.WithRunID(runID), eval.WithLogger(logger)}
			if episodes > 0 {
				opts = append(opts, eval.WithEpisodes(episodes))
			}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, eval.WithBaseSeed(seed))
			}

			reports, err := eval.New(cfg, opts...).Compare(cmd.Context(), names)
			if err != nil {
				return err
			}

			om, err := telemetry.NewOutputManager(outputDir)
			if err != nil {
				return err
			}
			defer om.Close()
			if err := om.WriteConfig(cfg); err != nil {
				return err
			}
			for _, r := range reports {
				if err := eval.WriteReport(om, r); err != nil {
					return err
				}
			}

			if dbPath != "" {
				store, err := results.Open(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				for _, r := range reports {
					if err := store.Save(cmd.Context(), runID, r.Summary); err != nil {
						return err
					}
				}
			}

			summaries := make([]eval.Summary, len(reports))
			for i, r := range reports {
				summaries[i] = r.Summary
			}
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"run_id":    runID,
					"scenario":  cfg.Weather.Scenario,
					"summaries": summaries,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (scenario %s, %d episodes)\n\n",
				runID, cfg.Weather.Scenario, summaries[0].Episodes)
			return writeSummaryTable(cmd.OutOrStdout(), summaries)
		},
	}

	cmd.Flags().Int("episodes", 0, "Episodes per policy (0 = use config)")
	cmd.Flags().Uint64("seed", 0, "Base seed (default from config)")
	cmd.Flags().String("weather", "", "Weather scenario override (normal, hot_dry, cloudy)")
	cmd.Flags().String("output-dir", "", "Directory for CSV output")
	cmd.Flags().String("db", "", "Results ledger database to record the run in")

	return cmd
}

// writeSummaryTable prints one row per policy.
func writeSummaryTable(w io.Writer, summaries []eval.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POLICY\tAVG HEALTH\tFINAL\tWATER (ml)\tENERGY\tVIOLATIONS\tEFFICIENCY\tREWARD\tSURVIVAL")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%.1f ± %.1f\t%.1f\t%.0f\t%.0f\t%.1f\t%.3f\t%.2f\t%.0f%%\n",
			s.Policy, s.AvgHealthMean, s.AvgHealthStd, s.FinalHealthMean,
			s.WaterMean, s.EnergyMean, s.ViolationsMean, s.EfficiencyMean,
			s.RewardMean, 100*s.SurvivalRate)
	}
	return tw.Flush()
}
