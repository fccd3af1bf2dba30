package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/sprint/internal/board"
	"github.com/joescharf/sprint/internal/output"
)

var (
	iterStart string
	iterEnd   string
	iterGoal  string
)

var iterationCmd = &cobra.Command{
	Use:     "iteration",
	Aliases: []string{"iter", "sprint"},
	Short:   "Manage iterations (sprints)",
	Long:    "Create, list, and inspect time-boxed iterations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationListRun()
	},
}

var iterationCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new iteration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationCreateRun(args[0])
	},
}

var iterationListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List iterations ordered by start date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationListRun()
	},
}

var iterationShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show iteration summary and issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationShowRun(args[0])
	},
}

var iterationCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the iteration containing today",
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationNavRun(func(b *board.Board) (*board.Iteration, error) { return b.Current() })
	},
}

var iterationNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next upcoming iteration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationNavRun(func(b *board.Board) (*board.Iteration, error) { return b.Next() })
	},
}

var iterationPreviousCmd = &cobra.Command{
	Use:     "previous",
	Aliases: []string{"prev"},
	Short:   "Show the most recently completed iteration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationNavRun(func(b *board.Board) (*board.Iteration, error) { return b.Previous() })
	},
}

var iterationDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an iteration (its issues move to the backlog)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterationDeleteRun(args[0])
	},
}

func init() {
	iterationCreateCmd.Flags().StringVar(&iterStart, "start", "", "Start date, YYYY-MM-DD (required)")
	iterationCreateCmd.Flags().StringVar(&iterEnd, "end", "", "End date, YYYY-MM-DD (required)")
	iterationCreateCmd.Flags().StringVar(&iterGoal, "goal", "", "Iteration goal")
	_ = iterationCreateCmd.MarkFlagRequired("start")
	_ = iterationCreateCmd.MarkFlagRequired("end")

	iterationCmd.AddCommand(iterationCreateCmd)
	iterationCmd.AddCommand(iterationListCmd)
	iterationCmd.AddCommand(iterationShowCmd)
	iterationCmd.AddCommand(iterationCurrentCmd)
	iterationCmd.AddCommand(iterationNextCmd)
	iterationCmd.AddCommand(iterationPreviousCmd)
	iterationCmd.AddCommand(iterationDeleteCmd)
	rootCmd.AddCommand(iterationCmd)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func iterationCreateRun(name string) error {
	start, err := parseDate(iterStart)
	if err != nil {
		return err
	}
	end, err := parseDate(iterEnd)
	if err != nil {
		return err
	}

	b, err := loadBoard()
	if err != nil {
		return err
	}
	it, err := b.CreateIteration(name, start, end, iterGoal)
	if err != nil {
		return err
	}
	if err := saveBoard(b); err != nil {
		return err
	}

	ui.Success("Created iteration %s (%s to %s)", output.Cyan(it.Name),
		it.StartDate.Format("2006-01-02"), it.EndDate.Format("2006-01-02"))
	return nil
}

func iterationListRun() error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	iterations := b.ListIterations()
	if len(iterations) == 0 {
		ui.Info("No iterations yet. Create one with: sprint iteration create <name> --start ... --end ...")
		return nil
	}

	table := ui.Table([]string{"NAME", "START", "END", "ISSUES", "POINTS", "DONE", "PROGRESS"})
	for _, it := range iterations {
		s := it.Summary()
		table.Append([]string{
			it.Name,
			it.StartDate.Format("2006-01-02"),
			it.EndDate.Format("2006-01-02"),
			fmt.Sprintf("%d", s.TotalIssues),
			fmt.Sprintf("%d", s.TotalPoints),
			fmt.Sprintf("%d", s.CompletedPoints),
			output.PercentColor(s.CompletionPercent),
		})
	}
	return table.Render()
}

func iterationShowRun(name string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	it, err := b.GetIteration(name)
	if err != nil {
		return err
	}

	s := it.Summary()
	ui.Info("%s  (%s to %s, %d days left)", output.Cyan(it.Name),
		it.StartDate.Format("2006-01-02"), it.EndDate.Format("2006-01-02"), s.DaysRemaining)
	if it.Goal != "" {
		ui.Info("Goal: %s", it.Goal)
	}
	ui.Info("Issues: %d total, %d open, %d closed, %d blocked", s.TotalIssues, s.OpenIssues, s.ClosedIssues, s.BlockedIssues)
	ui.Info("Points: %d/%d complete (%s)", s.CompletedPoints, s.TotalPoints, output.PercentColor(s.CompletionPercent))

	issues := it.Issues()
	if len(issues) == 0 {
		return nil
	}
	fmt.Fprintln(ui.Out)
	for _, issue := range issues {
		fmt.Fprintln(ui.Out, output.IssueLine(issue))
	}
	return nil
}

func iterationNavRun(nav func(*board.Board) (*board.Iteration, error)) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	it, err := nav(b)
	if err != nil {
		return err
	}
	return iterationShowRun(it.Name)
}

func iterationDeleteRun(name string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	if err := b.DeleteIteration(name); err != nil {
		return err
	}
	if err := saveBoard(b); err != nil {
		return err
	}
	ui.Success("Deleted iteration %s", name)
	return nil
}
