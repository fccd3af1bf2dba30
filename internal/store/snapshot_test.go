package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sprint/internal/models"
)

func TestMarshalBoardShape(t *testing.T) {
	data, err := MarshalBoard(fullBoard(t))
	require.NoError(t, err)

	// Decode generically to pin the wire shape.
	var raw struct {
		Iterations []map[string]any `json:"iterations"`
		Issues     []map[string]any `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))

	require.Len(t, raw.Iterations, 2)
	assert.Equal(t, "Sprint 1", raw.Iterations[0]["name"])
	assert.Equal(t, "2026-03-01", raw.Iterations[0]["start_date"])
	assert.Equal(t, "2026-03-14", raw.Iterations[0]["end_date"])
	assert.Equal(t, "Ship search", raw.Iterations[0]["goal"])

	require.Len(t, raw.Issues, 2)
	first := raw.Issues[0]
	assert.Equal(t, "I-1", first["id"])
	assert.Equal(t, "closed", first["status"])
	assert.Equal(t, "bug", first["type"])
	assert.Equal(t, "high", first["priority"])
	assert.Equal(t, "Alice", first["assignee"])
	assert.Equal(t, float64(3), first["story_points"])

	// Absent nullables serialize as explicit null, not omitted.
	second := raw.Issues[1]
	for _, key := range []string{"assignee", "author", "iteration", "closed_at"} {
		val, ok := second[key]
		require.True(t, ok, "key %s must be present", key)
		assert.Nil(t, val)
	}
	assert.Equal(t, []any{}, second["labels"])
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := fullBoard(t)

	data, err := MarshalBoard(original)
	require.NoError(t, err)

	restored, err := UnmarshalBoard(data)
	require.NoError(t, err)

	require.Len(t, restored.Iterations(), 2)
	require.Len(t, restored.AllIssues(), 2)

	i1, err := restored.GetIssue("I-1")
	require.NoError(t, err)
	assert.Equal(t, "Fix login bug", i1.Title)
	assert.Equal(t, models.IssueStatusClosed, i1.Status)
	assert.Equal(t, []string{"backend", "auth"}, i1.Labels)
	require.NotNil(t, i1.ClosedAt)

	i2, err := restored.GetIssue("I-2")
	require.NoError(t, err)
	assert.Empty(t, i2.Assignee)
	assert.Nil(t, i2.ClosedAt)
	assert.Nil(t, i2.Labels)

	// Issues reattach to iterations.
	s1, err := restored.GetIteration("Sprint 1")
	require.NoError(t, err)
	assert.Len(t, s1.Issues(), 1)
}

func TestUnmarshalBoardErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"bad start date", `{"iterations":[{"name":"S1","start_date":"03/01/2026","end_date":"2026-03-14"}],"issues":[]}`},
		{"end before start", `{"iterations":[{"name":"S1","start_date":"2026-03-14","end_date":"2026-03-01"}],"issues":[]}`},
		{"bad enum", `{"iterations":[],"issues":[{"id":"x","title":"t","status":"open","type":"task","priority":"medium","labels":[]}]}`},
		{"duplicate id", `{"iterations":[],"issues":[
			{"id":"x","title":"a","status":"todo","type":"task","priority":"medium","labels":[]},
			{"id":"x","title":"b","status":"todo","type":"task","priority":"medium","labels":[]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalBoard([]byte(tt.data))
			require.Error(t, err)
			if tt.name != "not json" {
				assert.ErrorIs(t, err, models.ErrInvalidArgument)
			}
		})
	}
}
