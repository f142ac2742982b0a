package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/lifecycle"
	"github.com/hanzalatafzeel/path-craft/pkg/session"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks <goal-id>",
	Short: "List a goal's weekly tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasks,
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List tasks scheduled for today",
	Args:  cobra.NoArgs,
	RunE:  runToday,
}

var subtasksCmd = &cobra.Command{
	Use:   "subtasks <task-id>",
	Short: "List a task's subtasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubtasks,
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Change a task's status",
}

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Change a subtask's status",
}

func init() {
	rootCmd.AddCommand(tasksCmd, todayCmd, subtasksCmd, taskCmd, subtaskCmd)

	for _, a := range []lifecycle.Action{lifecycle.ActionStart, lifecycle.ActionPause, lifecycle.ActionComplete} {
		taskCmd.AddCommand(newTaskActionCmd(a))
		subtaskCmd.AddCommand(newSubTaskActionCmd(a))
	}
}

func newTaskActionCmd(action lifecycle.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <task-id>",
		Short: actionShort(action, "task"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, err := authedClient()
			if err != nil {
				return err
			}

			s := session.New(client)
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := s.ApplyTaskAction(cmd.Context(), id, action); err != nil {
				return err
			}

			for _, t := range s.AllTasks() {
				if t.ID == id {
					if flagJSON {
						return outputJSON(t)
					}
					fmt.Printf("%s → %s\n", t.Title, t.Status)
					return nil
				}
			}
			return nil
		},
	}
}

func newSubTaskActionCmd(action lifecycle.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <task-id> <subtask-id>",
		Short: actionShort(action, "subtask"),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			subID, err := parseID(args[1])
			if err != nil {
				return err
			}

			client, err := authedClient()
			if err != nil {
				return err
			}

			s := session.New(client)
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			if _, err := s.EnsureSubTasks(cmd.Context(), taskID); err != nil {
				return err
			}
			if err := s.ApplySubTaskAction(cmd.Context(), subID, action); err != nil {
				return err
			}

			subs, _ := s.SubTasks(taskID)
			for _, st := range subs {
				if st.ID == subID {
					if flagJSON {
						return outputJSON(st)
					}
					fmt.Printf("%s → %s\n", st.Description, st.Status)
					return nil
				}
			}
			return nil
		},
	}
}

func actionShort(action lifecycle.Action, noun string) string {
	switch action {
	case lifecycle.ActionStart:
		return "Start working on a " + noun
	case lifecycle.ActionPause:
		return "Pause a " + noun + " back to pending"
	default:
		return "Mark a " + noun + " as completed"
	}
}

func statusGlyph(s api.Status) string {
	switch s {
	case api.StatusCompleted:
		return "✓"
	case api.StatusInProgress:
		return "◐"
	case api.StatusCancelled:
		return "✗"
	default:
		return "○"
	}
}

func runTasks(cmd *cobra.Command, args []string) error {
	goalID, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	tasks, err := client.GoalTasks(cmd.Context(), goalID)
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(tasks)
	}

	for _, t := range tasks {
		date := ""
		if !t.ScheduledDate.IsZero() {
			date = t.ScheduledDate.Format("Jan 02")
		}
		fmt.Printf("%4d  %s W%-2d %-7s %s\n", t.ID, statusGlyph(t.Status), t.WeekNumber, date, t.Title)
	}
	return nil
}

func runToday(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	tasks, err := client.TodayTasks(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println("Nothing scheduled for today.")
		return nil
	}
	for _, t := range tasks {
		fmt.Printf("%4d  %s %s\n", t.ID, statusGlyph(t.Status), t.Title)
	}
	return nil
}

func runSubtasks(cmd *cobra.Command, args []string) error {
	taskID, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	subs, err := client.TaskSubTasks(cmd.Context(), taskID)
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(subs)
	}

	for _, st := range subs {
		fmt.Printf("%4d  %s %s\n", st.ID, statusGlyph(st.Status), st.Description)
	}
	return nil
}
