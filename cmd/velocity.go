package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/sprint/internal/models"
)

var velocityLast int

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Show velocity history, average, and trend",
	Long:  "Velocity reports completed points per finished iteration over a rolling window.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return velocityRun()
	},
}

func init() {
	velocityCmd.Flags().IntVar(&velocityLast, "last", 0, "Number of completed iterations to include (default: velocity.window config)")
	rootCmd.AddCommand(velocityCmd)
}

func velocityRun() error {
	b, err := loadBoard()
	if err != nil {
		return err
	}

	window := velocityLast
	if window <= 0 {
		window = viper.GetInt("velocity.window")
	}

	history, err := b.VelocityHistory(window)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		ui.Info("No completed iterations yet.")
		return nil
	}

	table := ui.Table([]string{"ITERATION", "POINTS"})
	for _, entry := range history {
		table.Append([]string{entry.Iteration, fmt.Sprintf("%d", entry.Points)})
	}
	table.Render()

	avg, err := b.AverageVelocity(window)
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			ui.Info("No completed iterations yet.")
			return nil
		}
		return err
	}
	ui.Info("Average velocity: %.1f points over last %d iterations", avg, len(history))

	trend, err := b.VelocityTrend(window)
	if err != nil {
		return err
	}
	ui.Info("Trend: %s", trend)
	return nil
}
