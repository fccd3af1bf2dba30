package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected IssueStatus
		wantErr  bool
	}{
		{"todo", IssueStatusTodo, false},
		{"in_progress", IssueStatusInProgress, false},
		{"blocked", IssueStatusBlocked, false},
		{"done", IssueStatusDone, false},
		{"closed", IssueStatusClosed, false},
		{"TODO", IssueStatusTodo, false},
		{"  done  ", IssueStatusDone, false},
		{"open", "", true},
		{"", "", true},
		{"in progress", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseType(t *testing.T) {
	for _, valid := range []string{"bug", "story", "task", "spike", "epic"} {
		got, err := ParseType(valid)
		require.NoError(t, err)
		assert.Equal(t, IssueType(valid), got)
	}

	_, err := ParseType("feature")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParsePriority(t *testing.T) {
	for _, valid := range []string{"low", "medium", "high", "critical"} {
		got, err := ParsePriority(valid)
		require.NoError(t, err)
		assert.Equal(t, IssuePriority(valid), got)
	}

	_, err := ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityRank(IssuePriorityCritical), PriorityRank(IssuePriorityHigh))
	assert.Less(t, PriorityRank(IssuePriorityHigh), PriorityRank(IssuePriorityMedium))
	assert.Less(t, PriorityRank(IssuePriorityMedium), PriorityRank(IssuePriorityLow))
	assert.Less(t, PriorityRank(IssuePriorityLow), PriorityRank(IssuePriority("bogus")))
}

func TestIssueValidate(t *testing.T) {
	valid := func() *Issue {
		return &Issue{
			ID:       "ISSUE-1",
			Title:    "A thing",
			Status:   IssueStatusTodo,
			Type:     IssueTypeTask,
			Priority: IssuePriorityMedium,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Issue)
	}{
		{"missing id", func(i *Issue) { i.ID = "" }},
		{"bad status", func(i *Issue) { i.Status = "open" }},
		{"bad type", func(i *Issue) { i.Type = "feature" }},
		{"bad priority", func(i *Issue) { i.Priority = "urgent" }},
		{"negative points", func(i *Issue) { i.StoryPoints = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := valid()
			tt.mutate(i)
			assert.ErrorIs(t, i.Validate(), ErrInvalidArgument)
		})
	}
}

func TestIssueStatePredicates(t *testing.T) {
	tests := []struct {
		status  IssueStatus
		open    bool
		blocked bool
	}{
		{IssueStatusTodo, true, false},
		{IssueStatusInProgress, true, false},
		{IssueStatusBlocked, true, true},
		{IssueStatusDone, false, false},
		{IssueStatusClosed, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			i := &Issue{Status: tt.status}
			assert.Equal(t, tt.open, i.IsOpen())
			assert.Equal(t, !tt.open, i.IsClosed())
			assert.Equal(t, tt.blocked, i.IsBlocked())
		})
	}
}

func TestHasLabel(t *testing.T) {
	i := &Issue{Labels: []string{"backend", "Urgent"}}
	assert.True(t, i.HasLabel("backend"))
	assert.True(t, i.HasLabel("URGENT"))
	assert.False(t, i.HasLabel("frontend"))

	empty := &Issue{}
	assert.False(t, empty.HasLabel("backend"))
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
