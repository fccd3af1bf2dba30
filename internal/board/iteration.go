// Package board holds the iteration and board aggregates. Iterations own
// their issues; boards own their iterations. All canned queries are thin
// wrappers over the query package, applied to the full collection and
// executed immediately.
package board

import (
	"math"
	"time"

	"github.com/joescharf/sprint/internal/models"
	"github.com/joescharf/sprint/internal/nlq"
	"github.com/joescharf/sprint/internal/query"
)

// timeNow is swapped in tests to pin "today".
var timeNow = time.Now

// today returns the current date at midnight UTC.
func today() time.Time {
	y, m, d := timeNow().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Iteration is a named, dated time box containing issues in insertion
// order. Create iterations through Board.CreateIteration so name and date
// invariants hold.
type Iteration struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Goal      string

	issues []*models.Issue
}

// Issues returns the iteration's issues in insertion order. The returned
// slice is a copy; the issues themselves are shared.
func (it *Iteration) Issues() []*models.Issue {
	out := make([]*models.Issue, len(it.issues))
	copy(out, it.issues)
	return out
}

// AddIssue attaches an issue to this iteration and sets its back-reference.
func (it *Iteration) AddIssue(issue *models.Issue) {
	issue.Iteration = it.Name
	it.issues = append(it.issues, issue)
}

// RemoveIssue detaches an issue by id. Returns false when the id is not in
// this iteration.
func (it *Iteration) RemoveIssue(id string) bool {
	for n, issue := range it.issues {
		if issue.ID == id {
			it.issues = append(it.issues[:n], it.issues[n+1:]...)
			return true
		}
	}
	return false
}

// Query starts a fresh query over this iteration's issues.
func (it *Iteration) Query() *query.Query {
	return query.New(it.issues)
}

// run executes a single-filter canned query. None of the canned filters can
// fail, so the error is discarded.
func run(q *query.Query) []*models.Issue {
	out, _ := q.Execute()
	return out
}

// ---------------------------------------------------------------------------
// Status queries
// ---------------------------------------------------------------------------

// Open returns issues that are not done or closed.
func (it *Iteration) Open() []*models.Issue { return run(it.Query().IsOpen()) }

// Closed returns done and closed issues.
func (it *Iteration) Closed() []*models.Issue { return run(it.Query().IsClosed()) }

// Done returns successfully completed issues.
func (it *Iteration) Done() []*models.Issue {
	return run(it.Query().Status(models.IssueStatusDone))
}

// Blocked returns blocked issues.
func (it *Iteration) Blocked() []*models.Issue { return run(it.Query().IsBlocked()) }

// InProgress returns issues currently being worked on.
func (it *Iteration) InProgress() []*models.Issue {
	return run(it.Query().Status(models.IssueStatusInProgress))
}

// Todo returns issues not yet started.
func (it *Iteration) Todo() []*models.Issue {
	return run(it.Query().Status(models.IssueStatusTodo))
}

// ---------------------------------------------------------------------------
// People queries
// ---------------------------------------------------------------------------

// ByAssignee returns issues assigned to the named person.
func (it *Iteration) ByAssignee(name string) []*models.Issue {
	return run(it.Query().Assignee(name))
}

// ByAuthor returns issues created by the named person.
func (it *Iteration) ByAuthor(name string) []*models.Issue {
	return run(it.Query().Author(name))
}

// Unassigned returns issues with no assignee.
func (it *Iteration) Unassigned() []*models.Issue { return run(it.Query().Unassigned()) }

// ---------------------------------------------------------------------------
// Type, label, and priority queries
// ---------------------------------------------------------------------------

// Bugs returns all bugs.
func (it *Iteration) Bugs() []*models.Issue { return run(it.Query().Bugs()) }

// Stories returns all user stories.
func (it *Iteration) Stories() []*models.Issue { return run(it.Query().Stories()) }

// Tasks returns all tasks.
func (it *Iteration) Tasks() []*models.Issue { return run(it.Query().Tasks()) }

// Spikes returns all spikes.
func (it *Iteration) Spikes() []*models.Issue {
	return run(it.Query().Type(models.IssueTypeSpike))
}

// ByType returns issues of one type.
func (it *Iteration) ByType(t models.IssueType) []*models.Issue {
	return run(it.Query().Type(t))
}

// ByLabel returns issues carrying a label.
func (it *Iteration) ByLabel(label string) []*models.Issue {
	return run(it.Query().Label(label))
}

// Critical returns critical priority issues.
func (it *Iteration) Critical() []*models.Issue { return run(it.Query().Critical()) }

// HighPriority returns critical and high priority issues. The union is one
// filter, not two chained ones, so it stays a single canned query.
func (it *Iteration) HighPriority() []*models.Issue { return run(it.Query().HighPriority()) }

// ByPriority returns issues of one priority.
func (it *Iteration) ByPriority(p models.IssuePriority) []*models.Issue {
	return run(it.Query().Priority(p))
}

// ---------------------------------------------------------------------------
// Statistics
// ---------------------------------------------------------------------------

// TotalPoints sums story points over all issues.
func (it *Iteration) TotalPoints() int {
	total := 0
	for _, i := range it.issues {
		total += i.StoryPoints
	}
	return total
}

// CompletedPoints sums story points over closed issues.
func (it *Iteration) CompletedPoints() int {
	total := 0
	for _, i := range it.issues {
		if i.IsClosed() {
			total += i.StoryPoints
		}
	}
	return total
}

// RemainingPoints sums story points over open issues.
func (it *Iteration) RemainingPoints() int {
	return it.TotalPoints() - it.CompletedPoints()
}

// CompletionPercent is the share of points completed, in [0,100].
// Zero total points means 0, not NaN.
func (it *Iteration) CompletionPercent() float64 {
	total := it.TotalPoints()
	if total == 0 {
		return 0
	}
	return float64(it.CompletedPoints()) / float64(total) * 100
}

// Velocity is the completed story points of this iteration.
func (it *Iteration) Velocity() int { return it.CompletedPoints() }

// DaysRemaining counts days until the iteration ends, never negative.
func (it *Iteration) DaysRemaining() int {
	d := int(it.EndDate.Sub(today()).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// DaysElapsed counts days since the iteration started, never negative.
func (it *Iteration) DaysElapsed() int {
	d := int(today().Sub(it.StartDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// TotalDays is the iteration length in days.
func (it *Iteration) TotalDays() int {
	return int(it.EndDate.Sub(it.StartDate).Hours() / 24)
}

// Contains reports whether the date falls inside [start, end].
func (it *Iteration) Contains(day time.Time) bool {
	return !day.Before(it.StartDate) && !day.After(it.EndDate)
}

// Completed reports whether the iteration ended before today.
func (it *Iteration) Completed() bool {
	return it.EndDate.Before(today())
}

// ---------------------------------------------------------------------------
// Groupings
// ---------------------------------------------------------------------------

// GroupByAssignee partitions all issues by assignee. Unassigned issues land
// under query.UnassignedKey.
func (it *Iteration) GroupByAssignee() map[string][]*models.Issue {
	groups, _ := it.Query().GroupByAssignee()
	return groups
}

// GroupByStatus partitions all issues by status.
func (it *Iteration) GroupByStatus() map[string][]*models.Issue {
	groups, _ := it.Query().GroupByStatus()
	return groups
}

// GroupByType partitions all issues by type.
func (it *Iteration) GroupByType() map[string][]*models.Issue {
	groups, _ := it.Query().GroupByType()
	return groups
}

// GroupByPriority partitions all issues by priority.
func (it *Iteration) GroupByPriority() map[string][]*models.Issue {
	groups, _ := it.Query().GroupBy(func(i *models.Issue) string { return string(i.Priority) })
	return groups
}

// GroupByLabel partitions by label; multi-labeled issues appear in every
// matching group, unlabeled ones under "unlabeled".
func (it *Iteration) GroupByLabel() map[string][]*models.Issue {
	groups := make(map[string][]*models.Issue)
	for _, issue := range it.issues {
		if len(issue.Labels) == 0 {
			groups["unlabeled"] = append(groups["unlabeled"], issue)
			continue
		}
		for _, l := range issue.Labels {
			groups[l] = append(groups[l], issue)
		}
	}
	return groups
}

// ---------------------------------------------------------------------------
// Summary and natural language
// ---------------------------------------------------------------------------

// Summary is a point-in-time snapshot of iteration health.
type Summary struct {
	Name              string    `json:"name"`
	Goal              string    `json:"goal"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	DaysRemaining     int       `json:"days_remaining"`
	TotalIssues       int       `json:"total_issues"`
	OpenIssues        int       `json:"open_issues"`
	ClosedIssues      int       `json:"closed_issues"`
	BlockedIssues     int       `json:"blocked_issues"`
	TotalPoints       int       `json:"total_points"`
	CompletedPoints   int       `json:"completed_points"`
	RemainingPoints   int       `json:"remaining_points"`
	CompletionPercent float64   `json:"completion_percent"`
	Velocity          int       `json:"velocity"`
}

// Summary computes the iteration's summary statistics.
func (it *Iteration) Summary() Summary {
	stats, _ := it.Query().Stats()
	return Summary{
		Name:              it.Name,
		Goal:              it.Goal,
		StartDate:         it.StartDate,
		EndDate:           it.EndDate,
		DaysRemaining:     it.DaysRemaining(),
		TotalIssues:       stats.Total,
		OpenIssues:        stats.Open,
		ClosedIssues:      stats.Closed,
		BlockedIssues:     stats.Blocked,
		TotalPoints:       it.TotalPoints(),
		CompletedPoints:   it.CompletedPoints(),
		RemainingPoints:   it.RemainingPoints(),
		CompletionPercent: math.Round(it.CompletionPercent()*10) / 10,
		Velocity:          it.Velocity(),
	}
}

// Ask answers a natural-language question scoped to this iteration.
func (it *Iteration) Ask(question string) (nlq.Result, error) {
	return nlq.Ask(question, it.issues)
}
