package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/sprint/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients query and update the board natively. Configure with:

  {
    "mcpServers": {
      "sprint": { "command": "sprint", "args": ["mcp"] }
    }
  }

Available tools: sprint_ask, sprint_create_iteration, sprint_list_iterations,
sprint_query_issues, sprint_create_issue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	srv := mcp.NewServer(s)
	return srv.ServeStdio(context.Background())
}
