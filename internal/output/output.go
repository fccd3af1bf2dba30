package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/joescharf/sprint/internal/models"
)

// UI provides colored output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	magenta       = color.New(color.FgHiMagenta).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// StatusColor returns the string colored by issue status.
func StatusColor(status models.IssueStatus) string {
	s := string(status)
	switch status {
	case models.IssueStatusTodo:
		return s
	case models.IssueStatusInProgress:
		return yellow(s)
	case models.IssueStatusBlocked:
		return red(s)
	case models.IssueStatusDone:
		return green(s)
	case models.IssueStatusClosed:
		return cyan(s)
	default:
		return s
	}
}

// StatusIcon returns the single-rune marker for an issue status.
func StatusIcon(status models.IssueStatus) string {
	switch status {
	case models.IssueStatusTodo:
		return "○"
	case models.IssueStatusInProgress:
		return "◐"
	case models.IssueStatusBlocked:
		return "⊘"
	case models.IssueStatusDone:
		return "●"
	case models.IssueStatusClosed:
		return "✕"
	default:
		return "?"
	}
}

// PriorityColor returns the string colored by priority severity.
func PriorityColor(p models.IssuePriority) string {
	s := string(p)
	switch p {
	case models.IssuePriorityCritical:
		return magenta(s)
	case models.IssuePriorityHigh:
		return red(s)
	case models.IssuePriorityMedium:
		return yellow(s)
	default:
		return s
	}
}

// PercentColor returns a completion percentage colored by progress.
func PercentColor(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	switch {
	case pct >= 80:
		return green(s)
	case pct >= 40:
		return yellow(s)
	default:
		return red(s)
	}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// IssueLine formats one issue the way lists and ask answers print it:
// icon, id, title, assignee, points.
func IssueLine(i *models.Issue) string {
	line := fmt.Sprintf("%s %s: %s", StatusIcon(i.Status), Cyan(i.ID), i.Title)
	if i.Assignee != "" {
		line += fmt.Sprintf(" @%s", i.Assignee)
	}
	if i.StoryPoints > 0 {
		line += fmt.Sprintf(" (%dpts)", i.StoryPoints)
	}
	return line
}
