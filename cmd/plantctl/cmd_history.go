package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/plantcare/results"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past comparisons from the results ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			dbPath, _ := cmd.Flags().GetString("db")
			limit, _ := cmd.Flags().GetInt("limit")
			runID, _ := cmd.Flags().GetString("run")

			store, err := results.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var recs []results.Record
			if runID != "" {
				recs, err = store.Run(cmd.Context(), runID)
			} else {
				recs, err = store.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tRUN\tPOLICY\tEPISODES\tAVG HEALTH\tREWARD\tSURVIVAL")
			for _, r := range recs {
				s := r.Summary
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%.2f\t%.0f%%\n",
					r.CreatedAt.Local().Format(time.DateTime), shortID(s.RunID), s.Policy,
					s.Episodes, s.AvgHealthMean, s.RewardMean, 100*s.SurvivalRate)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("db", "plantcare.db", "Results ledger database")
	cmd.Flags().Int("limit", 20, "Maximum records to show (0 = all)")
	cmd.Flags().String("run", "", "Show only this run ID")

	return cmd
}

// shortID trims a UUID to its first group for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
