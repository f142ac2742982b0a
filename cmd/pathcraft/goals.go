package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Manage learning goals",
	RunE:  runGoalsList,
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all goals",
	Args:  cobra.NoArgs,
	RunE:  runGoalsList,
}

var goalsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsAdd,
}

var (
	goalsAddWeeks       int
	goalsAddDescription string
)

var goalsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a goal and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsRm,
}

var goalsRmForce bool

var goalsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a goal's name, description, or duration",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsUpdate,
}

var (
	goalsUpdateName        string
	goalsUpdateDescription string
	goalsUpdateWeeks       int
)

var goalsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Download a goal's schedule as an .ics file",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsExport,
}

var goalsExportOut string

func init() {
	goalsAddCmd.Flags().IntVar(&goalsAddWeeks, "weeks", 12, "plan duration in weeks")
	goalsAddCmd.Flags().StringVar(&goalsAddDescription, "description", "", "what you want to learn")
	goalsRmCmd.Flags().BoolVarP(&goalsRmForce, "force", "f", false, "skip the confirmation prompt")
	goalsUpdateCmd.Flags().StringVar(&goalsUpdateName, "name", "", "new name")
	goalsUpdateCmd.Flags().StringVar(&goalsUpdateDescription, "description", "", "new description")
	goalsUpdateCmd.Flags().IntVar(&goalsUpdateWeeks, "weeks", 0, "new duration in weeks")
	goalsExportCmd.Flags().StringVarP(&goalsExportOut, "output", "o", "", "output file (defaults to the server's name)")

	rootCmd.AddCommand(goalsCmd)
	goalsCmd.AddCommand(goalsListCmd, goalsAddCmd, goalsRmCmd, goalsUpdateCmd, goalsExportCmd)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func runGoalsList(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	goals, err := client.Goals(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(goals)
	}

	if len(goals) == 0 {
		fmt.Println("No goals yet. Run 'pathcraft goals add <name>' to create one.")
		return nil
	}
	for _, g := range goals {
		fmt.Printf("%4d  %-10s %2dw  %s\n", g.ID, g.Status, g.Weeks, g.Name)
	}
	return nil
}

func runGoalsAdd(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	goal, err := client.CreateGoal(cmd.Context(), api.GoalCreate{
		Name:        args[0],
		Description: goalsAddDescription,
		Weeks:       goalsAddWeeks,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(goal)
	}
	fmt.Printf("Created goal %d: %s (%d weeks)\n", goal.ID, goal.Name, goal.Weeks)
	return nil
}

// confirmDeletion asks for an explicit yes before a destructive call.
// Anything other than y/yes (including EOF) declines.
func confirmDeletion(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func runGoalsRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	if !goalsRmForce {
		goal, err := client.Goal(cmd.Context(), id)
		if err != nil {
			return err
		}
		prompt := fmt.Sprintf("Delete '%s' and all of its tasks?", goal.Name)
		if !confirmDeletion(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := client.DeleteGoal(cmd.Context(), id); err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]int64{"deleted": id})
	}
	fmt.Printf("Deleted goal %d\n", id)
	return nil
}

func runGoalsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	current, err := client.Goal(cmd.Context(), id)
	if err != nil {
		return err
	}

	in := api.GoalCreate{
		Name:        current.Name,
		Description: current.Description,
		Weeks:       current.Weeks,
	}
	if goalsUpdateName != "" {
		in.Name = goalsUpdateName
	}
	if cmd.Flags().Changed("description") {
		in.Description = goalsUpdateDescription
	}
	if goalsUpdateWeeks > 0 {
		in.Weeks = goalsUpdateWeeks
	}

	goal, err := client.UpdateGoal(cmd.Context(), id, in)
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(goal)
	}
	fmt.Printf("Updated goal %d: %s\n", goal.ID, goal.Name)
	return nil
}

func runGoalsExport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	data, name, err := client.CalendarExport(cmd.Context(), id)
	if err != nil {
		return err
	}
	if goalsExportOut != "" {
		name = goalsExportOut
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]string{"path": name})
	}
	fmt.Printf("Exported %s\n", name)
	return nil
}
