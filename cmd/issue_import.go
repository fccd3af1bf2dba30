package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/sprint/internal/llm"
	"github.com/joescharf/sprint/internal/models"
)

var (
	importIteration string
	importAuthor    string
	importDryRun    bool
)

var issueImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import issues from a markdown file",
	Long: `Import issues from a markdown file using an LLM to extract structured data.

The markdown file should contain work items as numbered or bulleted lists.
Extracted issues land in the iteration given by --iteration, or unscheduled.

Requires ANTHROPIC_API_KEY environment variable or anthropic.api_key in config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueImportRun(args[0])
	},
}

func init() {
	issueImportCmd.Flags().StringVar(&importIteration, "iteration", "", "Put all imported issues in this iteration")
	issueImportCmd.Flags().StringVar(&importAuthor, "author", "", "Record this author on imported issues")
	issueImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview extracted issues without creating them")
	issueCmd.AddCommand(issueImportCmd)
}

func issueImportRun(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("file is empty: %s", file)
	}

	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY not set (set env var or anthropic.api_key in config)")
	}
	model := viper.GetString("anthropic.model")

	b, err := loadBoard()
	if err != nil {
		return err
	}

	iterName := importIteration
	if iterName != "" {
		it, err := b.GetIteration(iterName)
		if err != nil {
			return err
		}
		iterName = it.Name
	}

	iterations := make([]string, 0, len(b.Iterations()))
	for _, it := range b.Iterations() {
		iterations = append(iterations, it.Name)
	}

	ui.Info("Extracting issues with LLM (%s)...", model)
	client := llm.NewClient(apiKey, model)
	extracted, err := client.ExtractIssues(context.Background(), content, iterations)
	if err != nil {
		return fmt.Errorf("extract issues: %w", err)
	}
	if len(extracted) == 0 {
		ui.Info("No issues extracted from file.")
		return nil
	}

	table := ui.Table([]string{"#", "TITLE", "TYPE", "PRIORITY", "ASSIGNEE", "PTS"})
	for i, e := range extracted {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			e.Title,
			e.Type,
			e.Priority,
			e.Assignee,
			fmt.Sprintf("%d", e.StoryPoints),
		})
	}
	table.Render()

	if importDryRun || dryRun {
		ui.DryRunMsg("Would create %d issues", len(extracted))
		return nil
	}

	now := time.Now().UTC()
	created := 0
	for _, e := range extracted {
		itype, err := models.ParseType(e.Type)
		if err != nil {
			itype = models.IssueType(classifyIssueType(e.Title))
		}
		priority, err := models.ParsePriority(e.Priority)
		if err != nil {
			priority = models.IssuePriorityMedium
		}

		issue := &models.Issue{
			ID:          models.NewID(),
			Title:       e.Title,
			Description: e.Description,
			Status:      models.IssueStatusTodo,
			Type:        itype,
			Priority:    priority,
			Assignee:    e.Assignee,
			Author:      importAuthor,
			Iteration:   iterName,
			Labels:      e.Labels,
			StoryPoints: e.StoryPoints,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := b.AddIssue(issue); err != nil {
			ui.Warning("Skipped %q: %v", e.Title, err)
			continue
		}
		created++
	}

	if err := saveBoard(b); err != nil {
		return err
	}
	ui.Success("Imported %d of %d issues", created, len(extracted))
	return nil
}
