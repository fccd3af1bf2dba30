package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joescharf/sprint/internal/board"
	"github.com/joescharf/sprint/internal/models"
)

// JSON snapshot of a whole board, used by export/import. Field names follow
// the data model exactly so snapshots stay portable and diffable; absent
// assignee/author/iteration/closed_at serialize as null.

type issueSnapshot struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	Assignee    *string    `json:"assignee"`
	Author      *string    `json:"author"`
	Iteration   *string    `json:"iteration"`
	Labels      []string   `json:"labels"`
	StoryPoints int        `json:"story_points"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at"`
}

type iterationSnapshot struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Goal      string `json:"goal,omitempty"`
}

type boardSnapshot struct {
	Iterations []iterationSnapshot `json:"iterations"`
	Issues     []issueSnapshot     `json:"issues"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// MarshalBoard serializes a board to an indented JSON snapshot.
func MarshalBoard(b *board.Board) ([]byte, error) {
	snap := boardSnapshot{
		Iterations: make([]iterationSnapshot, 0, len(b.Iterations())),
		Issues:     make([]issueSnapshot, 0, len(b.AllIssues())),
	}
	for _, it := range b.Iterations() {
		snap.Iterations = append(snap.Iterations, iterationSnapshot{
			Name:      it.Name,
			StartDate: it.StartDate.UTC().Format(dateOnly),
			EndDate:   it.EndDate.UTC().Format(dateOnly),
			Goal:      it.Goal,
		})
	}
	for _, issue := range b.AllIssues() {
		labels := issue.Labels
		if labels == nil {
			labels = []string{}
		}
		snap.Issues = append(snap.Issues, issueSnapshot{
			ID:          issue.ID,
			Title:       issue.Title,
			Description: issue.Description,
			Status:      string(issue.Status),
			Type:        string(issue.Type),
			Priority:    string(issue.Priority),
			Assignee:    strPtr(issue.Assignee),
			Author:      strPtr(issue.Author),
			Iteration:   strPtr(issue.Iteration),
			Labels:      labels,
			StoryPoints: issue.StoryPoints,
			CreatedAt:   issue.CreatedAt.UTC(),
			UpdatedAt:   issue.UpdatedAt.UTC(),
			ClosedAt:    issue.ClosedAt,
		})
	}
	return json.MarshalIndent(snap, "", "  ")
}

// UnmarshalBoard reconstructs a board from a JSON snapshot. Invalid enum
// values or date ranges in the snapshot surface as ErrInvalidArgument.
func UnmarshalBoard(data []byte) (*board.Board, error) {
	var snap boardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse board snapshot: %w", err)
	}

	b := board.New()
	for _, is := range snap.Iterations {
		start, err := time.ParseInLocation(dateOnly, is.StartDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: bad start date for %q: %v", models.ErrInvalidArgument, is.Name, err)
		}
		end, err := time.ParseInLocation(dateOnly, is.EndDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: bad end date for %q: %v", models.ErrInvalidArgument, is.Name, err)
		}
		if _, err := b.CreateIteration(is.Name, start, end, is.Goal); err != nil {
			return nil, err
		}
	}

	for _, is := range snap.Issues {
		var labels []string
		if len(is.Labels) > 0 {
			labels = is.Labels
		}
		issue := &models.Issue{
			ID:          is.ID,
			Title:       is.Title,
			Description: is.Description,
			Status:      models.IssueStatus(is.Status),
			Type:        models.IssueType(is.Type),
			Priority:    models.IssuePriority(is.Priority),
			Assignee:    strVal(is.Assignee),
			Author:      strVal(is.Author),
			Iteration:   strVal(is.Iteration),
			Labels:      labels,
			StoryPoints: is.StoryPoints,
			CreatedAt:   is.CreatedAt,
			UpdatedAt:   is.UpdatedAt,
			ClosedAt:    is.ClosedAt,
		}
		if err := b.AddIssue(issue); err != nil {
			return nil, err
		}
	}
	return b, nil
}
