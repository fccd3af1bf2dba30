package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sprint/internal/board"
	"github.com/joescharf/sprint/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fullBoard builds a board exercising every persisted field, including
// nullable ones in both states.
func fullBoard(t *testing.T) *board.Board {
	t.Helper()
	b := board.New()

	_, err := b.CreateIteration("Sprint 1", day(2026, 3, 1), day(2026, 3, 14), "Ship search")
	require.NoError(t, err)
	_, err = b.CreateIteration("Sprint 2", day(2026, 3, 15), day(2026, 3, 28), "")
	require.NoError(t, err)

	closedAt := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	require.NoError(t, b.AddIssue(&models.Issue{
		ID:          "I-1",
		Title:       "Fix login bug",
		Description: "Token refresh drops the session",
		Status:      models.IssueStatusClosed,
		Type:        models.IssueTypeBug,
		Priority:    models.IssuePriorityHigh,
		Assignee:    "Alice",
		Author:      "Bob",
		Iteration:   "Sprint 1",
		Labels:      []string{"backend", "auth"},
		StoryPoints: 3,
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC),
		ClosedAt:    &closedAt,
	}))

	// Backlog issue with every nullable field empty.
	require.NoError(t, b.AddIssue(&models.Issue{
		ID:        "I-2",
		Title:     "Untriaged report",
		Status:    models.IssueStatusTodo,
		Type:      models.IssueTypeTask,
		Priority:  models.IssuePriorityMedium,
		CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}))

	return b
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestLoadBoard_FreshDatabase(t *testing.T) {
	s := newTestStore(t)

	b, err := s.LoadBoard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, b.Iterations())
	assert.Empty(t, b.AllIssues())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBoard(ctx, fullBoard(t)))

	loaded, err := s.LoadBoard(ctx)
	require.NoError(t, err)

	iterations := loaded.Iterations()
	require.Len(t, iterations, 2)
	assert.Equal(t, "Sprint 1", iterations[0].Name)
	assert.Equal(t, day(2026, 3, 1), iterations[0].StartDate)
	assert.Equal(t, day(2026, 3, 14), iterations[0].EndDate)
	assert.Equal(t, "Ship search", iterations[0].Goal)
	assert.Equal(t, "Sprint 2", iterations[1].Name)
	assert.Empty(t, iterations[1].Goal)

	issues := loaded.AllIssues()
	require.Len(t, issues, 2)

	i1 := issues[0]
	assert.Equal(t, "I-1", i1.ID)
	assert.Equal(t, "Fix login bug", i1.Title)
	assert.Equal(t, "Token refresh drops the session", i1.Description)
	assert.Equal(t, models.IssueStatusClosed, i1.Status)
	assert.Equal(t, models.IssueTypeBug, i1.Type)
	assert.Equal(t, models.IssuePriorityHigh, i1.Priority)
	assert.Equal(t, "Alice", i1.Assignee)
	assert.Equal(t, "Bob", i1.Author)
	assert.Equal(t, "Sprint 1", i1.Iteration)
	assert.Equal(t, []string{"backend", "auth"}, i1.Labels)
	assert.Equal(t, 3, i1.StoryPoints)
	assert.True(t, i1.CreatedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, i1.UpdatedAt.Equal(time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)))
	require.NotNil(t, i1.ClosedAt)
	assert.True(t, i1.ClosedAt.Equal(time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)))

	i2 := issues[1]
	assert.Empty(t, i2.Assignee)
	assert.Empty(t, i2.Author)
	assert.Empty(t, i2.Iteration)
	assert.Empty(t, i2.Labels)
	assert.Nil(t, i2.ClosedAt)

	// Issues reattach to their iterations after loading.
	s1, err := loaded.GetIteration("Sprint 1")
	require.NoError(t, err)
	assert.Len(t, s1.Issues(), 1)
}

func TestSaveBoard_ReplacesPreviousState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBoard(ctx, fullBoard(t)))

	// Save a smaller board; the old contents must be gone.
	small := board.New()
	require.NoError(t, small.AddIssue(&models.Issue{
		ID:       "only",
		Title:    "The one issue",
		Status:   models.IssueStatusTodo,
		Type:     models.IssueTypeTask,
		Priority: models.IssuePriorityLow,
	}))
	require.NoError(t, s.SaveBoard(ctx, small))

	loaded, err := s.LoadBoard(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Iterations())
	require.Len(t, loaded.AllIssues(), 1)
	assert.Equal(t, "only", loaded.AllIssues()[0].ID)
}

func TestSaveLoad_PreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := board.New()
	for _, id := range []string{"z", "a", "m"} {
		require.NoError(t, b.AddIssue(&models.Issue{
			ID:       id,
			Title:    id,
			Status:   models.IssueStatusTodo,
			Type:     models.IssueTypeTask,
			Priority: models.IssuePriorityMedium,
		}))
	}
	require.NoError(t, s.SaveBoard(ctx, b))

	loaded, err := s.LoadBoard(ctx)
	require.NoError(t, err)
	var got []string
	for _, i := range loaded.AllIssues() {
		got = append(got, i.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, got)
}
