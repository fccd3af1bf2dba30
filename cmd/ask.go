package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/sprint/internal/nlq"
	"github.com/joescharf/sprint/internal/output"
)

var askIteration string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a plain-English question about issues",
	Long: `Ask answers natural-language questions against the board, for example:

  sprint ask "What is Alice working on?"
  sprint ask "How many bugs are left?"
  sprint ask "Show me critical issues in the current sprint"

With --iteration the question is scoped to that iteration's issues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return askRun(strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().StringVar(&askIteration, "iteration", "", "Scope the question to one iteration")
	rootCmd.AddCommand(askCmd)
}

func askRun(question string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}

	var result nlq.Result
	if askIteration != "" {
		it, err := b.GetIteration(askIteration)
		if err != nil {
			return err
		}
		result, err = it.Ask(question)
		if err != nil {
			return err
		}
	} else {
		result, err = b.Ask(question)
		if err != nil {
			return err
		}
	}

	renderAskResult(result)
	return nil
}

func renderAskResult(result nlq.Result) {
	switch result.Kind {
	case nlq.KindCount:
		fmt.Fprintln(ui.Out, result.Count)
	case nlq.KindStats:
		s := result.Stats
		ui.Info("%d issues: %d open, %d closed, %d blocked", s.Total, s.Open, s.Closed, s.Blocked)
		ui.Info("%d points total: %d open, %d closed", s.Points, s.OpenPoints, s.ClosedPoints)
	case nlq.KindValue:
		fmt.Fprintf(ui.Out, "%.1f\n", result.Value)
	default:
		if len(result.Issues) == 0 {
			ui.Info("No matching issues.")
			return
		}
		for _, i := range result.Issues {
			fmt.Fprintln(ui.Out, output.IssueLine(i))
		}
	}
}
