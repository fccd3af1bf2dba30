package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/joescharf/sprint/internal/query"
)

var workloadCmd = &cobra.Command{
	Use:   "workload [iteration]",
	Short: "Show per-assignee workload",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iteration := ""
		if len(args) > 0 {
			iteration = args[0]
		}
		return workloadRun(iteration)
	},
}

func init() {
	rootCmd.AddCommand(workloadCmd)
}

func workloadRun(iteration string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}

	workloads, err := b.TeamWorkload(iteration)
	if err != nil {
		return err
	}
	if len(workloads) == 0 {
		ui.Info("No issues found.")
		return nil
	}

	// Named assignees alphabetically, unassigned last.
	names := make([]string, 0, len(workloads))
	for name := range workloads {
		if name != query.UnassignedKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := workloads[query.UnassignedKey]; ok {
		names = append(names, query.UnassignedKey)
	}

	table := ui.Table([]string{"ASSIGNEE", "TOTAL", "OPEN", "IN PROGRESS", "BLOCKED", "DONE", "POINTS"})
	for _, name := range names {
		w := workloads[name]
		table.Append([]string{
			name,
			fmt.Sprintf("%d", w.Total),
			fmt.Sprintf("%d", w.Open),
			fmt.Sprintf("%d", w.InProgress),
			fmt.Sprintf("%d", w.Blocked),
			fmt.Sprintf("%d", w.Done),
			fmt.Sprintf("%d", w.Points),
		})
	}
	table.Render()
	return nil
}
