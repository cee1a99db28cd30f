package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/proctor/internal/exam"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show test statistics",
	Long:  "Show one user's statistics, or with --all the totals across every user.",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && !cmd.Flags().Changed("user") {
			return fmt.Errorf("pass --user ID or --all")
		}

		e, err := bootstrap(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if all {
			agg, err := e.svc.AggregateStats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Users: %d\nAttempts: %d\nAverage score: %.1f%%\n", agg.Users, agg.Attempts, agg.AveragePercent)
			for _, t := range agg.PerTest {
				fmt.Fprintf(out, "  %s: %d attempts, %.1f%%\n", t.TestName, t.Attempts, t.AveragePercent)
			}
			return nil
		}

		id, _ := cmd.Flags().GetInt64("user")
		sum, err := e.svc.RequestStats(ctx, id)
		if err != nil {
			return err
		}
		if sum.TotalTests == 0 {
			fmt.Fprintf(out, "User %d has not completed any tests.\n", id)
			return nil
		}
		fmt.Fprintf(out, "Tests taken: %d\nAverage score: %.1f%%\nRecent:\n", sum.TotalTests, sum.AveragePercent)
		for _, r := range sum.Recent {
			fmt.Fprintf(out, "  %s: %s\n", r.TestName, exam.FormatPercent(r.Percentage))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int64("user", 0, "User ID")
	statsCmd.Flags().Bool("all", false, "Show totals across every user")
}
