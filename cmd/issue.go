package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/sprint/internal/models"
	"github.com/joescharf/sprint/internal/output"
	"github.com/joescharf/sprint/internal/query"
)

var (
	issueID        string
	issueTitle     string
	issueDesc      string
	issueType      string
	issuePriority  string
	issueStatus    string
	issueAssignee  string
	issueAuthor    string
	issueIteration string
	issueLabels    []string
	issuePoints    int
	issueLimit     int
	issueOpen      bool
	issueBlocked   bool
)

// Update gets its own flag variables: pflag writes each registration's
// default into the bound variable at registration time, so sharing a
// variable between commands whose defaults differ would leave the last
// default in place for both.
var (
	updateTitle    string
	updateStatus   string
	updatePriority string
	updateAssignee string
	updatePoints   int
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage and query issues",
	Long:  "Track bugs, stories, tasks, spikes, and epics across iterations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun()
	},
}

var issueAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new issue",
	Long:  "Add a new issue. Type and priority default to keyword classification of the title.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueAddRun()
	},
}

var issueListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List issues with optional filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun()
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show issue details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(args[0])
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <issue-id>",
	Short: "Update an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueUpdateRun(cmd, args[0])
	},
}

var issueCloseCmd = &cobra.Command{
	Use:   "close <issue-id>",
	Short: "Close an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueCloseRun(args[0])
	},
}

var issueMoveCmd = &cobra.Command{
	Use:   "move <issue-id> <iteration>",
	Short: "Move an issue to another iteration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueMoveRun(args[0], args[1])
	},
}

func init() {
	issueAddCmd.Flags().StringVar(&issueID, "id", "", "Issue id (default: generated)")
	issueAddCmd.Flags().StringVar(&issueTitle, "title", "", "Issue title (required)")
	issueAddCmd.Flags().StringVar(&issueDesc, "desc", "", "Issue description")
	issueAddCmd.Flags().StringVar(&issueType, "type", "", "Type: bug, story, task, spike, epic (default: classified from title)")
	issueAddCmd.Flags().StringVar(&issuePriority, "priority", "", "Priority: low, medium, high, critical (default: classified from title)")
	issueAddCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Assignee name")
	issueAddCmd.Flags().StringVar(&issueAuthor, "author", "", "Author name")
	issueAddCmd.Flags().StringVar(&issueIteration, "iteration", "", "Iteration to attach to")
	issueAddCmd.Flags().StringSliceVar(&issueLabels, "label", nil, "Label (repeatable)")
	issueAddCmd.Flags().IntVar(&issuePoints, "points", 0, "Story point estimate")
	_ = issueAddCmd.MarkFlagRequired("title")

	issueListCmd.Flags().StringVar(&issueStatus, "status", "", "Filter by status: todo, in_progress, blocked, done, closed")
	issueListCmd.Flags().StringVar(&issueType, "type", "", "Filter by type")
	issueListCmd.Flags().StringVar(&issuePriority, "priority", "", "Filter by priority")
	issueListCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Filter by assignee")
	issueListCmd.Flags().StringVar(&issueAuthor, "author", "", "Filter by author")
	issueListCmd.Flags().StringVar(&issueIteration, "iteration", "", "Filter by iteration")
	issueListCmd.Flags().StringSliceVar(&issueLabels, "label", nil, "Filter by label (any of, repeatable)")
	issueListCmd.Flags().BoolVar(&issueOpen, "open", false, "Only open issues")
	issueListCmd.Flags().BoolVar(&issueBlocked, "blocked", false, "Only blocked issues")
	issueListCmd.Flags().IntVar(&issueLimit, "limit", 0, "Maximum number of results (0 = all)")

	issueUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	issueUpdateCmd.Flags().StringVar(&updateStatus, "status", "", "New status")
	issueUpdateCmd.Flags().StringVar(&updatePriority, "priority", "", "New priority")
	issueUpdateCmd.Flags().StringVar(&updateAssignee, "assignee", "", "New assignee (empty clears)")
	issueUpdateCmd.Flags().IntVar(&updatePoints, "points", 0, "New story point estimate")

	issueCmd.AddCommand(issueAddCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueCloseCmd)
	issueCmd.AddCommand(issueMoveCmd)
	rootCmd.AddCommand(issueCmd)
}

func issueAddRun() error {
	typeStr := issueType
	if typeStr == "" {
		typeStr = classifyIssueType(issueTitle)
		ui.VerboseLog("classified type: %s", typeStr)
	}
	priorityStr := issuePriority
	if priorityStr == "" {
		priorityStr = classifyIssuePriority(issueTitle)
		ui.VerboseLog("classified priority: %s", priorityStr)
	}

	itype, err := models.ParseType(typeStr)
	if err != nil {
		return err
	}
	priority, err := models.ParsePriority(priorityStr)
	if err != nil {
		return err
	}

	b, err := loadBoard()
	if err != nil {
		return err
	}

	iterName := issueIteration
	if iterName != "" {
		it, err := b.GetIteration(iterName)
		if err != nil {
			return err
		}
		iterName = it.Name
	}

	id := issueID
	if id == "" {
		id = models.NewID()
	}

	now := time.Now().UTC()
	issue := &models.Issue{
		ID:          id,
		Title:       issueTitle,
		Description: issueDesc,
		Status:      models.IssueStatusTodo,
		Type:        itype,
		Priority:    priority,
		Assignee:    issueAssignee,
		Author:      issueAuthor,
		Iteration:   iterName,
		Labels:      issueLabels,
		StoryPoints: issuePoints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.AddIssue(issue); err != nil {
		return err
	}
	if err := saveBoard(b); err != nil {
		return err
	}

	ui.Success("Added %s issue %s: %s", itype, output.Cyan(issue.ID), issue.Title)
	return nil
}

// buildListQuery translates the list flags into one query.
func buildListQuery(q *query.Query) (*query.Query, error) {
	if issueStatus != "" {
		status, err := models.ParseStatus(issueStatus)
		if err != nil {
			return nil, err
		}
		q = q.Status(status)
	}
	if issueType != "" {
		t, err := models.ParseType(issueType)
		if err != nil {
			return nil, err
		}
		q = q.Type(t)
	}
	if issuePriority != "" {
		p, err := models.ParsePriority(issuePriority)
		if err != nil {
			return nil, err
		}
		q = q.Priority(p)
	}
	if issueAssignee != "" {
		q = q.Assignee(issueAssignee)
	}
	if issueAuthor != "" {
		q = q.Author(issueAuthor)
	}
	if issueIteration != "" {
		q = q.Iteration(issueIteration)
	}
	if len(issueLabels) > 0 {
		q = q.Labels(issueLabels...)
	}
	if issueOpen {
		q = q.IsOpen()
	}
	if issueBlocked {
		q = q.IsBlocked()
	}
	if issueLimit > 0 {
		q = q.Limit(issueLimit)
	}
	return q, nil
}

func issueListRun() error {
	b, err := loadBoard()
	if err != nil {
		return err
	}

	q, err := buildListQuery(b.Query())
	if err != nil {
		return err
	}
	issues, err := q.ByPriority().Execute()
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		ui.Info("No issues found.")
		return nil
	}

	table := ui.Table([]string{"ID", "TITLE", "STATUS", "TYPE", "PRI", "PTS", "ASSIGNEE", "ITERATION"})
	for _, i := range issues {
		table.Append([]string{
			i.ID,
			i.Title,
			output.StatusColor(i.Status),
			string(i.Type),
			output.PriorityColor(i.Priority),
			fmt.Sprintf("%d", i.StoryPoints),
			i.Assignee,
			i.Iteration,
		})
	}
	table.Render()

	// Stats over the filtered set, unaffected by --limit.
	stats, err := q.Stats()
	if err != nil {
		return err
	}
	ui.Info("%d issues: %d open, %d closed, %d blocked, %d points",
		stats.Total, stats.Open, stats.Closed, stats.Blocked, stats.Points)
	return nil
}

func issueShowRun(id string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	issue, err := b.GetIssue(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out, output.IssueLine(issue))
	if issue.Description != "" {
		fmt.Fprintln(ui.Out, issue.Description)
	}
	ui.Info("Status: %s  Type: %s  Priority: %s", output.StatusColor(issue.Status), issue.Type, output.PriorityColor(issue.Priority))
	if issue.Author != "" {
		ui.Info("Author: %s", issue.Author)
	}
	if issue.Iteration != "" {
		ui.Info("Iteration: %s", issue.Iteration)
	}
	if len(issue.Labels) > 0 {
		ui.Info("Labels: %v", issue.Labels)
	}
	ui.Info("Created: %s  Updated: %s", issue.CreatedAt.Format("2006-01-02"), issue.UpdatedAt.Format("2006-01-02"))
	if issue.ClosedAt != nil {
		ui.Info("Closed: %s", issue.ClosedAt.Format("2006-01-02"))
	}
	return nil
}

func issueUpdateRun(cmd *cobra.Command, id string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	issue, err := b.GetIssue(id)
	if err != nil {
		return err
	}

	// Gate on Changed rather than on zero values so that explicit
	// empties go through: --assignee "" clears the assignee.
	flags := cmd.Flags()
	changed := false
	if flags.Changed("title") {
		issue.Title = updateTitle
		changed = true
	}
	if flags.Changed("status") {
		status, err := models.ParseStatus(updateStatus)
		if err != nil {
			return err
		}
		issue.Status = status
		if issue.IsClosed() && issue.ClosedAt == nil {
			now := time.Now().UTC()
			issue.ClosedAt = &now
		}
		if issue.IsOpen() {
			issue.ClosedAt = nil
		}
		changed = true
	}
	if flags.Changed("priority") {
		p, err := models.ParsePriority(updatePriority)
		if err != nil {
			return err
		}
		issue.Priority = p
		changed = true
	}
	if flags.Changed("assignee") {
		issue.Assignee = updateAssignee
		changed = true
	}
	if flags.Changed("points") {
		if updatePoints < 0 {
			return fmt.Errorf("%w: story points must be >= 0, got %d", models.ErrInvalidArgument, updatePoints)
		}
		issue.StoryPoints = updatePoints
		changed = true
	}
	if !changed {
		ui.Warning("Nothing to update.")
		return nil
	}

	issue.UpdatedAt = time.Now().UTC()
	if err := saveBoard(b); err != nil {
		return err
	}
	ui.Success("Updated %s", output.Cyan(issue.ID))
	return nil
}

func issueCloseRun(id string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	issue, err := b.GetIssue(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	issue.Status = models.IssueStatusClosed
	issue.ClosedAt = &now
	issue.UpdatedAt = now
	if err := saveBoard(b); err != nil {
		return err
	}
	ui.Success("Closed %s: %s", output.Cyan(issue.ID), issue.Title)
	return nil
}

func issueMoveRun(id, iteration string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	if err := b.MoveIssue(id, iteration); err != nil {
		return err
	}
	issue, err := b.GetIssue(id)
	if err != nil {
		return err
	}
	if err := saveBoard(b); err != nil {
		return err
	}
	ui.Success("Moved %s to %s", output.Cyan(id), issue.Iteration)
	return nil
}
