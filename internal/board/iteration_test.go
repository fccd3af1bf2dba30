package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sprint/internal/models"
	"github.com/joescharf/sprint/internal/query"
)

// pinToday fixes the clock for date-dependent logic and restores it after
// the test.
func pinToday(t *testing.T, day time.Time) {
	t.Helper()
	timeNow = func() time.Time { return day }
	t.Cleanup(func() { timeNow = time.Now })
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newIssue(id string, status models.IssueStatus, points int) *models.Issue {
	return &models.Issue{
		ID:          id,
		Title:       "issue " + id,
		Status:      status,
		Type:        models.IssueTypeTask,
		Priority:    models.IssuePriorityMedium,
		StoryPoints: points,
	}
}

func testIteration(t *testing.T) *Iteration {
	t.Helper()
	b := New()
	it, err := b.CreateIteration("Sprint 1", date(2026, 3, 10), date(2026, 3, 23), "Ship search")
	require.NoError(t, err)
	return it
}

func TestAddRemoveIssues(t *testing.T) {
	it := testIteration(t)

	a := newIssue("A", models.IssueStatusTodo, 3)
	it.AddIssue(a)
	it.AddIssue(newIssue("B", models.IssueStatusDone, 5))

	assert.Equal(t, "Sprint 1", a.Iteration)
	assert.Len(t, it.Issues(), 2)

	assert.True(t, it.RemoveIssue("A"))
	assert.False(t, it.RemoveIssue("A"))
	assert.Len(t, it.Issues(), 1)
}

func TestIssuesReturnsCopy(t *testing.T) {
	it := testIteration(t)
	it.AddIssue(newIssue("A", models.IssueStatusTodo, 1))

	got := it.Issues()
	got[0] = nil
	assert.NotNil(t, it.Issues()[0])
}

func TestCannedStatusQueries(t *testing.T) {
	it := testIteration(t)
	it.AddIssue(newIssue("A", models.IssueStatusTodo, 1))
	it.AddIssue(newIssue("B", models.IssueStatusInProgress, 2))
	it.AddIssue(newIssue("C", models.IssueStatusBlocked, 3))
	it.AddIssue(newIssue("D", models.IssueStatusDone, 4))
	it.AddIssue(newIssue("E", models.IssueStatusClosed, 5))

	assert.Len(t, it.Open(), 3)
	assert.Len(t, it.Closed(), 2)
	assert.Len(t, it.Done(), 1)
	assert.Len(t, it.Blocked(), 1)
	assert.Len(t, it.InProgress(), 1)
	assert.Len(t, it.Todo(), 1)
}

func TestCannedPeopleAndTypeQueries(t *testing.T) {
	it := testIteration(t)

	bug := newIssue("A", models.IssueStatusTodo, 1)
	bug.Type = models.IssueTypeBug
	bug.Assignee = "Alice"
	bug.Priority = models.IssuePriorityCritical
	bug.Labels = []string{"backend"}
	it.AddIssue(bug)

	story := newIssue("B", models.IssueStatusTodo, 2)
	story.Type = models.IssueTypeStory
	story.Assignee = "Bob"
	story.Author = "Alice"
	story.Priority = models.IssuePriorityHigh
	it.AddIssue(story)

	spike := newIssue("C", models.IssueStatusTodo, 3)
	spike.Type = models.IssueTypeSpike
	it.AddIssue(spike)

	assert.Len(t, it.ByAssignee("alice"), 1)
	assert.Len(t, it.ByAuthor("alice"), 1)
	assert.Len(t, it.Unassigned(), 1)
	assert.Len(t, it.Bugs(), 1)
	assert.Len(t, it.Stories(), 1)
	assert.Empty(t, it.Tasks())
	assert.Len(t, it.Spikes(), 1)
	assert.Len(t, it.ByType(models.IssueTypeSpike), 1)
	assert.Len(t, it.ByLabel("backend"), 1)
	assert.Len(t, it.Critical(), 1)
	assert.Len(t, it.HighPriority(), 2)
	assert.Len(t, it.ByPriority(models.IssuePriorityHigh), 1)
}

func TestPointArithmetic(t *testing.T) {
	it := testIteration(t)
	it.AddIssue(newIssue("A", models.IssueStatusDone, 5))
	it.AddIssue(newIssue("B", models.IssueStatusTodo, 3))

	assert.Equal(t, 8, it.TotalPoints())
	assert.Equal(t, 5, it.CompletedPoints())
	assert.Equal(t, 3, it.RemainingPoints())
	assert.InDelta(t, 62.5, it.CompletionPercent(), 0.001)
	assert.Equal(t, 5, it.Velocity())
}

func TestCompletionPercentEmptyIteration(t *testing.T) {
	it := testIteration(t)
	assert.Equal(t, 0.0, it.CompletionPercent())
}

func TestClosedCountsTowardCompleted(t *testing.T) {
	it := testIteration(t)
	it.AddIssue(newIssue("A", models.IssueStatusClosed, 2))
	it.AddIssue(newIssue("B", models.IssueStatusDone, 3))

	assert.Equal(t, 5, it.CompletedPoints())
}

func TestDayArithmetic(t *testing.T) {
	pinToday(t, date(2026, 3, 15))
	it := testIteration(t) // Mar 10 - Mar 23

	assert.Equal(t, 8, it.DaysRemaining())
	assert.Equal(t, 5, it.DaysElapsed())
	assert.Equal(t, 13, it.TotalDays())
	assert.False(t, it.Completed())

	assert.True(t, it.Contains(date(2026, 3, 10)))
	assert.True(t, it.Contains(date(2026, 3, 23)))
	assert.False(t, it.Contains(date(2026, 3, 24)))
}

func TestDaysNeverNegative(t *testing.T) {
	pinToday(t, date(2026, 5, 1))
	it := testIteration(t) // ended Mar 23

	assert.Equal(t, 0, it.DaysRemaining())
	assert.True(t, it.Completed())

	pinToday(t, date(2026, 1, 1))
	assert.Equal(t, 0, it.DaysElapsed())
}

func TestGroupings(t *testing.T) {
	it := testIteration(t)

	a := newIssue("A", models.IssueStatusTodo, 1)
	a.Assignee = "Alice"
	a.Labels = []string{"backend", "auth"}
	it.AddIssue(a)

	b := newIssue("B", models.IssueStatusDone, 2)
	b.Labels = []string{"backend"}
	it.AddIssue(b)

	c := newIssue("C", models.IssueStatusTodo, 3)
	it.AddIssue(c)

	byAssignee := it.GroupByAssignee()
	assert.Len(t, byAssignee["Alice"], 1)
	assert.Len(t, byAssignee[query.UnassignedKey], 2)

	byStatus := it.GroupByStatus()
	assert.Len(t, byStatus["todo"], 2)
	assert.Len(t, byStatus["done"], 1)

	byLabel := it.GroupByLabel()
	assert.Len(t, byLabel["backend"], 2)
	assert.Len(t, byLabel["auth"], 1)
	assert.Len(t, byLabel["unlabeled"], 1)

	byPriority := it.GroupByPriority()
	assert.Len(t, byPriority["medium"], 3)
}

func TestSummary(t *testing.T) {
	pinToday(t, date(2026, 3, 15))
	it := testIteration(t)
	it.AddIssue(newIssue("A", models.IssueStatusDone, 5))
	it.AddIssue(newIssue("B", models.IssueStatusTodo, 3))
	blocked := newIssue("C", models.IssueStatusBlocked, 1)
	it.AddIssue(blocked)

	s := it.Summary()
	assert.Equal(t, "Sprint 1", s.Name)
	assert.Equal(t, "Ship search", s.Goal)
	assert.Equal(t, 8, s.DaysRemaining)
	assert.Equal(t, 3, s.TotalIssues)
	assert.Equal(t, 2, s.OpenIssues)
	assert.Equal(t, 1, s.ClosedIssues)
	assert.Equal(t, 1, s.BlockedIssues)
	assert.Equal(t, 9, s.TotalPoints)
	assert.Equal(t, 5, s.CompletedPoints)
	assert.Equal(t, 4, s.RemainingPoints)
	// 5/9 rounds to one decimal place.
	assert.Equal(t, 55.6, s.CompletionPercent)
	assert.Equal(t, 5, s.Velocity)
}

func TestIterationAsk(t *testing.T) {
	it := testIteration(t)
	bug := newIssue("A", models.IssueStatusTodo, 1)
	bug.Type = models.IssueTypeBug
	it.AddIssue(bug)
	it.AddIssue(newIssue("B", models.IssueStatusDone, 2))

	result, err := it.Ask("how many open bugs")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}
