package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joescharf/sprint/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board as a JSON snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON board snapshot, replacing the current board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importRun(args[0])
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func exportRun() error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	data, err := store.MarshalBoard(b)
	if err != nil {
		return err
	}

	if exportOut == "" {
		fmt.Fprintln(ui.Out, string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	ui.Success("Exported board to %s", exportOut)
	return nil
}

func importRun(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	b, err := store.UnmarshalBoard(data)
	if err != nil {
		return err
	}

	if err := saveBoard(b); err != nil {
		return err
	}
	ui.Success("Imported %d iterations and %d issues from %s",
		len(b.Iterations()), len(b.AllIssues()), path)
	return nil
}
