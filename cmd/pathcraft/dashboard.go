package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show overall progress",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	stats, err := client.Dashboard(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(stats)
	}

	fmt.Printf("Goals:  %d total, %d active, %d completed\n",
		stats.TotalGoals, stats.ActiveGoals, stats.CompletedGoals)
	fmt.Printf("Tasks:  %d total, %d completed, %d in progress, %d pending (%.0f%% done)\n",
		stats.TotalTasks, stats.CompletedTasks, stats.InProgressTasks, stats.PendingTasks,
		stats.CompletionRate)
	fmt.Printf("Today:  %d/%d done\n", stats.TodayCompleted, stats.TodayTasks)
	return nil
}
